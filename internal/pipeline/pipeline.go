// Package pipeline orchestrates one diagnosis run: enrich the lead from
// its website, the Places peer sample, and the ad library, then hand
// the assembled signal bag to the decision layer and persist the
// result.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/diagnosis-cli/internal/config"
	"github.com/sells-group/diagnosis-cli/internal/decision"
	"github.com/sells-group/diagnosis-cli/internal/model"
	"github.com/sells-group/diagnosis-cli/internal/servicedepth"
	"github.com/sells-group/diagnosis-cli/internal/store"
	"github.com/sells-group/diagnosis-cli/pkg/metaads"
	"github.com/sells-group/diagnosis-cli/pkg/places"
)

// Crawler is the website enrichment dependency. Satisfied by
// servicedepth.Crawler.
type Crawler interface {
	Enrich(ctx context.Context, lead *model.Lead) error
}

// Pipeline wires the enrichment collaborators to the decision core.
// Nil clients degrade gracefully: their signals stay unmeasured and
// the decision layer treats them as Unknown.
type Pipeline struct {
	cfg     *config.Config
	store   store.Store
	crawler Crawler
	places  places.Client
	metaads metaads.Client
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, crawler Crawler, placesClient places.Client, adsClient metaads.Client) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		crawler: crawler,
		places:  placesClient,
		metaads: adsClient,
	}
}

// NewDefault builds a Pipeline from configuration alone, constructing
// the real collaborators. Clients without credentials are left nil.
func NewDefault(cfg *config.Config, st store.Store) *Pipeline {
	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesClient = places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
	}
	var adsClient metaads.Client
	if cfg.MetaAds.Token != "" {
		adsClient = metaads.NewClient(cfg.MetaAds.Token, metaads.WithBaseURL(cfg.MetaAds.BaseURL))
	}
	return New(cfg, st, servicedepth.New(cfg.Crawl), placesClient, adsClient)
}

// Diagnose runs the full flow for one lead: create the run record,
// enrich, evaluate, persist. Enrichment failures are soft; the
// decision layer is built to reason over missing signals.
func (p *Pipeline) Diagnose(ctx context.Context, lead model.Lead) (*model.Run, error) {
	log := zap.L().With(zap.String("lead", lead.Name), zap.String("place_id", lead.PlaceID))
	log.Info("pipeline: starting diagnosis")

	run, err := p.store.CreateRun(ctx, lead)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		log.Warn("pipeline: failed to update status", zap.Error(err))
	}

	p.enrich(ctx, log, &lead)

	d := decision.Evaluate(lead)

	if err := p.store.CompleteRun(ctx, run.ID, d); err != nil {
		return run, eris.Wrap(err, "pipeline: save decision")
	}

	run.Lead = lead
	run.Status = model.RunStatusComplete
	run.Decision = d

	log.Info("pipeline: diagnosis complete",
		zap.String("run_id", run.ID),
		zap.String("bottleneck", string(d.RootBottleneck.Bottleneck)),
		zap.Int("sales_value_score", d.SalesValueScore),
	)
	return run, nil
}

// DiagnoseBatch runs every lead with bounded concurrency. Individual
// failures are recorded on their runs and do not stop the batch; the
// returned runs are in input order with nil entries for leads whose
// run could not even be created.
func (p *Pipeline) DiagnoseBatch(ctx context.Context, leads []model.Lead) ([]*model.Run, error) {
	runs := make([]*model.Run, len(leads))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Batch.MaxConcurrentLeads)

	for i, lead := range leads {
		g.Go(func() error {
			run, err := p.Diagnose(gCtx, lead)
			if err != nil {
				zap.L().Error("pipeline: lead failed",
					zap.String("lead", lead.Name),
					zap.Error(err),
				)
				if run != nil {
					_ = p.store.FailRun(gCtx, run.ID, err.Error())
				}
				runs[i] = run
				return nil
			}
			runs[i] = run
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return runs, eris.Wrap(err, "pipeline: batch")
	}
	return runs, nil
}

// enrich gathers the three signal sources in parallel. Each source
// logs and moves on when it cannot deliver.
func (p *Pipeline) enrich(ctx context.Context, log *zap.Logger, lead *model.Lead) {
	// The peer sample must land before the crawl in one respect only:
	// PlaceDetails can supply a missing website URL. Run it first,
	// then the crawl and ad lookup in parallel.
	p.samplePeers(ctx, log, lead)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if p.crawler == nil {
			return nil
		}
		if err := p.crawler.Enrich(gCtx, lead); err != nil {
			log.Warn("pipeline: website crawl failed", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		p.detectPaidAds(gCtx, log, lead)
		return nil
	})

	_ = g.Wait()
}

// samplePeers fills the competitive sample and backfills review stats
// from Places. Without a place ID or a client the sample stays empty.
func (p *Pipeline) samplePeers(ctx context.Context, log *zap.Logger, lead *model.Lead) {
	if p.places == nil || lead.PlaceID == "" {
		return
	}

	details, err := p.places.PlaceDetails(ctx, lead.PlaceID)
	if err != nil {
		log.Warn("pipeline: place details failed", zap.Error(err))
		return
	}

	if lead.Website == "" {
		lead.Website = details.WebsiteURI
	}
	if lead.Rating == nil && details.Rating > 0 {
		lead.Rating = &details.Rating
	}
	if lead.ReviewCount == nil && details.UserRatingCount > 0 {
		lead.ReviewCount = &details.UserRatingCount
	}

	if details.Location == nil {
		log.Warn("pipeline: place has no location, skipping peer sample")
		return
	}

	maxPeers := p.cfg.Places.MaxPeers
	resp, err := p.places.NearbySearch(ctx, places.NearbySearchRequest{
		IncludedTypes: []string{"dentist"},
		// one extra so excluding the lead itself still fills the cap
		MaxResultCount: maxPeers + 1,
		LocationRestriction: places.LocationRestriction{
			Circle: places.Circle{
				Center: *details.Location,
				Radius: p.cfg.Places.RadiusMeters,
			},
		},
	})
	if err != nil {
		log.Warn("pipeline: nearby search failed", zap.Error(err))
		return
	}

	for _, place := range resp.Places {
		if place.ID == lead.PlaceID {
			continue
		}
		if len(lead.Peers) >= maxPeers {
			break
		}
		lead.Peers = append(lead.Peers, model.Peer{
			PlaceID:     place.ID,
			Name:        place.DisplayName.Text,
			Rating:      place.Rating,
			ReviewCount: place.UserRatingCount,
		})
	}

	log.Debug("pipeline: peer sample complete", zap.Int("peers", len(lead.Peers)))
}

// detectPaidAds checks the ad library. Finding active ads is a
// measured positive; finding nothing stays unmeasured, since the
// library cannot prove a negative.
func (p *Pipeline) detectPaidAds(ctx context.Context, log *zap.Logger, lead *model.Lead) {
	if p.metaads == nil || lead.RunsPaidAds != nil {
		return
	}

	resp, err := p.metaads.SearchAds(ctx, metaads.AdSearchRequest{
		SearchTerms: lead.Name,
		ActiveOnly:  true,
		Limit:       5,
	})
	if err != nil {
		log.Warn("pipeline: ad library search failed", zap.Error(err))
		return
	}

	if len(resp.Data) > 0 {
		yes := true
		lead.RunsPaidAds = &yes
		log.Debug("pipeline: active ads found", zap.Int("ads", len(resp.Data)))
	}
}
