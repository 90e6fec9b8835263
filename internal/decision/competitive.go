package decision

import (
	"math"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Market density thresholds. The peer sample is capped at five
// records, so tiers come from fixed cut points rather than
// percentiles.
const (
	densityHighMinPeers   = 5
	densityHighMinReviews = 80.0
	densityModMinPeers    = 3
	densityModMinReviews  = 40.0
)

// positioningTolerance is the symmetric relative-difference band
// around the sample average inside which the lead counts as InLine.
const positioningTolerance = 0.15

// snapshotConfidence terms: a floor plus a fixed increment per peer
// sampled.
const (
	snapshotConfidenceFloor   = 0.4
	snapshotConfidencePerPeer = 0.15
)

// BuildCompetitiveSnapshot positions the lead against its peer
// sample. An empty sample yields a zero snapshot with Unknown
// positioning and zero confidence rather than an error.
func BuildCompetitiveSnapshot(lead model.Lead) model.CompetitiveSnapshot {
	snap := model.CompetitiveSnapshot{
		ReviewPositioning:  model.PositionUnknown,
		MarketDensityScore: model.TierLow,
		LeadReviewCount:    lead.ReviewCountOrZero(),
	}
	if len(lead.Peers) == 0 {
		return snap
	}

	peers := lead.Peers
	if len(peers) > 5 {
		peers = peers[:5]
	}
	snap.DentistsSampled = len(peers)

	var reviewSum int
	var ratingSum float64
	var rated int
	for _, p := range peers {
		reviewSum += p.ReviewCount
		if p.Rating > 0 {
			ratingSum += p.Rating
			rated++
		}
	}
	snap.AvgReviewCount = math.Round(float64(reviewSum)/float64(len(peers))*10) / 10
	if rated > 0 {
		snap.AvgRating = math.Round(ratingSum/float64(rated)*100) / 100
	}

	snap.ReviewPositioning = positionReviews(float64(snap.LeadReviewCount), snap.AvgReviewCount)
	snap.MarketDensityScore = densityTier(len(peers), snap.AvgReviewCount)
	snap.Confidence = round2(math.Min(1, snapshotConfidenceFloor+snapshotConfidencePerPeer*float64(len(peers))))
	return snap
}

// positionReviews compares the lead's review count to the sample
// average with a symmetric tolerance band: a lead whose count equals
// the average is always InLine.
func positionReviews(lead, avg float64) model.ReviewPositioning {
	if avg <= 0 {
		if lead > 0 {
			return model.PositionAbove
		}
		return model.PositionInLine
	}
	diff := (lead - avg) / avg
	switch {
	case math.Abs(diff) <= positioningTolerance:
		return model.PositionInLine
	case diff > 0:
		return model.PositionAbove
	default:
		return model.PositionBelow
	}
}

// densityTier grades market crowding from peer count and the peer
// review-count floor.
func densityTier(peers int, avgReviews float64) model.CompetitiveTier {
	switch {
	case peers >= densityHighMinPeers && avgReviews >= densityHighMinReviews:
		return model.TierHigh
	case peers >= densityModMinPeers || avgReviews >= densityModMinReviews:
		return model.TierModerate
	default:
		return model.TierLow
	}
}
