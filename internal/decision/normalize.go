// Package decision implements the objective decision layer: a
// deterministic, ordered classifier that reduces a lead's raw signals
// into a single root bottleneck, competitive and revenue context, and
// a prioritized intervention plan. Everything here is a pure
// computation over one lead's already-gathered signals; data-quality
// problems lower confidence and add validation warnings instead of
// returning errors.
package decision

import (
	"fmt"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Raw vocabulary values accepted for review_count_vs_market.
const (
	vsMarketAbove   = "Above Average"
	vsMarketAverage = "Average"
	vsMarketBelow   = "Below Average"
)

// normalized holds the lead's positioning descriptors parsed onto
// closed vocabularies, plus warnings for anything that did not parse
// or contradicted another signal.
type normalized struct {
	gap            model.VisibilityGap
	mapPack        model.CompetitiveTier
	reviewVsMarket string
	ratingStrength model.SignalStatus
	websiteAbsent  bool
	warnings       []string
}

// normalizeSignals maps raw positioning strings onto closed
// vocabularies and resolves contradictory website booleans
// conservatively. Unknown never substitutes a guessed negative.
func normalizeSignals(lead model.Lead) normalized {
	n := normalized{}

	var ok bool
	n.gap, ok = model.ParseVisibilityGap(lead.Positioning.VisibilityGap)
	if !ok {
		n.warnings = append(n.warnings, fmt.Sprintf(
			"visibility_gap %q is outside the closed vocabulary; treated as Unknown", lead.Positioning.VisibilityGap))
	}

	n.mapPack, ok = model.ParseCompetitiveTier(lead.Positioning.MapPackCompetitiveness)
	if !ok {
		n.warnings = append(n.warnings, fmt.Sprintf(
			"map_pack_competitiveness %q is outside the closed vocabulary; treated as Unknown", lead.Positioning.MapPackCompetitiveness))
	}

	switch lead.Positioning.ReviewCountVsMarket {
	case vsMarketAbove, vsMarketAverage, vsMarketBelow, "":
		n.reviewVsMarket = lead.Positioning.ReviewCountVsMarket
	default:
		n.warnings = append(n.warnings, fmt.Sprintf(
			"review_count_vs_market %q is outside the closed vocabulary; treated as Unknown", lead.Positioning.ReviewCountVsMarket))
	}

	switch s := model.SignalStatus(lead.Positioning.RatingStrength); {
	case s.Valid():
		n.ratingStrength = s
	case lead.Positioning.RatingStrength == "":
		n.ratingStrength = model.StatusUnknown
	default:
		n.ratingStrength = model.StatusUnknown
		n.warnings = append(n.warnings, fmt.Sprintf(
			"rating_strength %q is outside the closed vocabulary; treated as Unknown", lead.Positioning.RatingStrength))
	}

	// Contradictory website booleans resolve to the more conservative
	// interpretation: no website. The website_accessible contradiction
	// itself is reported by the validator.
	if model.IsFalse(lead.HasWebsite) {
		n.websiteAbsent = true
		if model.IsTrue(lead.HasContactForm) {
			n.warnings = append(n.warnings,
				"has_website=false contradicts has_contact_form=true; ignoring the website-derived signal")
		}
		if model.IsTrue(lead.HasOnlineScheduling) {
			n.warnings = append(n.warnings,
				"has_website=false contradicts has_online_scheduling=true; ignoring the website-derived signal")
		}
	}

	return n
}

// contactForm reports the contact-form signal with the website
// contradiction applied.
func (n normalized) contactForm(lead model.Lead) (value, known bool) {
	if n.websiteAbsent {
		return false, model.IsFalse(lead.HasWebsite)
	}
	return model.BoolSignal(lead.HasContactForm)
}

// onlineScheduling reports the booking signal with the website
// contradiction applied.
func (n normalized) onlineScheduling(lead model.Lead) (value, known bool) {
	if n.websiteAbsent {
		return false, model.IsFalse(lead.HasWebsite)
	}
	return model.BoolSignal(lead.HasOnlineScheduling)
}
