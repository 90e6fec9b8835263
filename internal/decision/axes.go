package decision

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Axis status cut points. An axis whose evidence score reaches the
// strong cut is Strong, the moderate cut Moderate, anything below
// Weak. An axis with no measured facts at all is Unknown.
const (
	demandStrongCut   = 0.6
	demandModerateCut = 0.25

	captureStrongCut   = 0.5
	captureModerateCut = 0.2

	conversionStrongCut   = 0.6
	conversionModerateCut = 0.25

	trustStrongCut   = 0.5
	trustModerateCut = 0.2

	visibilityStrongCut   = 0.5
	visibilityModerateCut = 0.25
)

// Review-volume thresholds shared across axes.
const (
	reviewVolumeSolid = 30
	reviewVolumeSome  = 10
	reviewVolumeTrust = 20
	reviewRecentDays  = 90
	reviewStaleDays   = 180
	reviewDeadDays    = 365
)

// maxAxisEvidence bounds the evidence list attached to each axis.
const maxAxisEvidence = 5

// axisConfidence scales with the fraction of expected corroborating
// facts actually found. Zero findings still yield a nonzero floor so
// downstream weighting never divides by zero.
func axisConfidence(found, expected int) float64 {
	if expected <= 0 {
		return 0.2
	}
	conf := 0.2 + 0.8*float64(found)/float64(expected)
	return round2(math.Min(1, conf))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// axisResult assembles a capped-evidence axis block.
func axisResult(status model.SignalStatus, evidence []string, confidence float64) model.AxisResult {
	if len(evidence) > maxAxisEvidence {
		evidence = evidence[:maxAxisEvidence]
	}
	return model.AxisResult{
		Status:     status,
		Evidence:   evidence,
		Confidence: round2(math.Max(0, math.Min(1, confidence))),
	}
}

// EvaluateAxes computes all five diagnosis axes from the lead's raw
// signal bag. It never fails: absence of corroborating evidence yields
// Unknown, not a guessed negative.
func EvaluateAxes(lead model.Lead) map[model.AxisName]model.AxisResult {
	n := normalizeSignals(lead)
	return evaluateAxes(lead, n)
}

func evaluateAxes(lead model.Lead, n normalized) map[model.AxisName]model.AxisResult {
	return map[model.AxisName]model.AxisResult{
		model.AxisTrust:      trustAxis(lead, n),
		model.AxisCapture:    captureAxis(lead, n),
		model.AxisConversion: conversionAxis(lead, n),
		model.AxisDemand:     demandAxis(lead),
		model.AxisVisibility: visibilityAxis(lead, n),
	}
}

// demandAxis reads paid ads, review volume, procedure intent, and
// urgency language as proxies for local demand.
func demandAxis(lead model.Lead) model.AxisResult {
	const expected = 4
	var evidence []string
	score, found := 0.0, 0

	if model.IsTrue(lead.RunsPaidAds) {
		evidence = append(evidence, "Paid ads running (demand investment)")
		score += 0.4
		found++
	}
	if lead.ReviewCount != nil {
		found++
		switch count := *lead.ReviewCount; {
		case count >= reviewVolumeSolid:
			evidence = append(evidence, "Solid review volume suggests local interest")
			score += 0.3
		case count >= reviewVolumeSome:
			evidence = append(evidence, "Some review activity indicates demand")
			score += 0.15
		}
	}
	if len(lead.ProcedureMentions) > 0 {
		names := make([]string, 0, 3)
		for _, m := range lead.ProcedureMentions {
			names = append(names, string(m.Procedure))
			if len(names) == 3 {
				break
			}
		}
		evidence = append(evidence, "Service intent detected: "+strings.Join(names, ", "))
		score += 0.2
		found++
	}
	if model.IsTrue(lead.UrgencyLanguage) {
		evidence = append(evidence, "Urgency language in reviews (high-intent demand)")
		score += 0.15
		found++
	}

	if found == 0 {
		return axisResult(model.StatusUnknown,
			[]string{"Limited demand signals available"}, axisConfidence(0, expected))
	}
	return axisResult(statusFromScore(score, demandStrongCut, demandModerateCut),
		evidence, axisConfidence(found, expected))
}

// captureAxis reads reviews vs market, rating strength, visibility
// gap, and website presence as demand-capture proxies.
func captureAxis(lead model.Lead, n normalized) model.AxisResult {
	const expected = 5
	var evidence []string
	score, found := 0.0, 0

	if n.reviewVsMarket != "" {
		evidence = append(evidence, "Review count vs market: "+n.reviewVsMarket)
		found++
		switch n.reviewVsMarket {
		case vsMarketAbove:
			score += 0.35
		case vsMarketAverage:
			score += 0.2
		}
	}
	if n.ratingStrength.Known() {
		evidence = append(evidence, "Rating strength: "+string(n.ratingStrength))
		found++
		switch n.ratingStrength {
		case model.StatusStrong:
			score += 0.25
		case model.StatusModerate:
			score += 0.15
		}
	}
	if n.gap != model.GapUnknown {
		evidence = append(evidence, "Visibility gap: "+string(n.gap))
		found++
		switch n.gap {
		case model.GapUnderutilized:
			score += 0.2
		case model.GapCompetitive:
			score += 0.1
		case model.GapSaturated:
			score -= 0.2
		}
	}
	if websitePresent(lead, n) {
		evidence = append(evidence, "Website present (visibility channel)")
		score += 0.1
		found++
	}
	if model.IsTrue(lead.DoctorCredentialsVisible) || model.IsTrue(lead.BeforeAfterGallery) {
		evidence = append(evidence, "Service/trust content on site (capture support)")
		found++
	}
	if lead.LastReviewDaysAgo != nil {
		switch days := *lead.LastReviewDaysAgo; {
		case days <= reviewRecentDays:
			evidence = append(evidence, "Recent review activity")
		case days > reviewStaleDays:
			evidence = append(evidence, "Stale review velocity")
		}
	}

	if found == 0 {
		return axisResult(model.StatusUnknown,
			[]string{"Limited capture signals"}, axisConfidence(0, expected))
	}
	return axisResult(statusFromScore(score, captureStrongCut, captureModerateCut),
		evidence, axisConfidence(found, expected))
}

// conversionAxis reads booking, contact form, and phone intake
// signals. Only measured facts contribute; a missing flag is neither
// friction nor its absence.
func conversionAxis(lead model.Lead, n normalized) model.AxisResult {
	const expected = 3
	var evidence []string
	score, found := 0.0, 0

	if booking, known := n.onlineScheduling(lead); known {
		found++
		if booking {
			evidence = append(evidence, "Online booking present")
			score += 0.5
		} else {
			evidence = append(evidence, "No online booking")
		}
	}
	if form, known := n.contactForm(lead); known {
		found++
		if form {
			evidence = append(evidence, "Contact form present")
			score += 0.25
		} else {
			evidence = append(evidence, "No contact form detected")
		}
	}
	if model.IsTrue(lead.HasPhone) {
		evidence = append(evidence, "Phone available for intake")
		score += 0.1
		found++
	}

	if found == 0 {
		return axisResult(model.StatusUnknown,
			[]string{"Limited conversion signals"}, axisConfidence(0, expected))
	}
	return axisResult(statusFromScore(score, conversionStrongCut, conversionModerateCut),
		evidence, axisConfidence(found, expected))
}

// trustAxis reads rating, review volume, recency, and on-site trust
// content.
func trustAxis(lead model.Lead, n normalized) model.AxisResult {
	const expected = 5
	var evidence []string
	score, found := 0.0, 0

	if lead.Rating != nil {
		evidence = append(evidence, fmt.Sprintf("Rating: %.1f", *lead.Rating))
		found++
		switch rating := *lead.Rating; {
		case rating >= 4.5:
			score += 0.4
		case rating >= 4.0:
			score += 0.25
		default:
			score -= 0.2
		}
	}
	if n.ratingStrength.Known() {
		evidence = append(evidence, "Rating strength: "+string(n.ratingStrength))
		found++
		switch n.ratingStrength {
		case model.StatusStrong:
			score += 0.3
		case model.StatusModerate:
			score += 0.15
		}
	}
	if lead.ReviewCount != nil {
		found++
		switch count := *lead.ReviewCount; {
		case count >= reviewVolumeTrust:
			evidence = append(evidence, "Sufficient review volume for trust")
			score += 0.15
		case count > 0 && count < reviewVolumeSome:
			evidence = append(evidence, "Low review count (trust signal weak)")
			score -= 0.2
		}
	}
	if lead.LastReviewDaysAgo != nil {
		found++
		switch days := *lead.LastReviewDaysAgo; {
		case days > reviewDeadDays:
			evidence = append(evidence, "Very stale reviews")
			score -= 0.15
		case days <= reviewRecentDays:
			evidence = append(evidence, "Recent review activity")
		}
	}
	if model.IsTrue(lead.InsuranceInfoVisible) {
		evidence = append(evidence, "Insurance info visible on site")
		found++
	}
	if model.IsTrue(lead.DoctorCredentialsVisible) {
		evidence = append(evidence, "Doctor credentials visible")
		found++
	}

	if found == 0 {
		return axisResult(model.StatusUnknown,
			[]string{"Limited trust signals"}, axisConfidence(0, expected))
	}
	return axisResult(statusFromScore(score, trustStrongCut, trustModerateCut),
		evidence, axisConfidence(found, expected))
}

// visibilityAxis summarizes how much local search surface the lead
// already holds, from the gap tier, map-pack competitiveness, and
// market-relative review volume.
func visibilityAxis(lead model.Lead, n normalized) model.AxisResult {
	const expected = 4
	var evidence []string
	score, found := 0.0, 0

	if n.gap != model.GapUnknown {
		evidence = append(evidence, "Visibility gap: "+string(n.gap))
		found++
		switch n.gap {
		case model.GapUnderutilized:
			score += 0.4
		case model.GapCompetitive:
			score += 0.2
		}
	}
	if n.mapPack != model.TierUnknown {
		evidence = append(evidence, "Map pack competitiveness: "+string(n.mapPack))
		found++
		switch n.mapPack {
		case model.TierLow:
			score += 0.2
		case model.TierModerate:
			score += 0.1
		}
	}
	if n.reviewVsMarket != "" {
		evidence = append(evidence, "Review count vs market: "+n.reviewVsMarket)
		found++
		switch n.reviewVsMarket {
		case vsMarketAbove:
			score += 0.2
		case vsMarketAverage:
			score += 0.1
		}
	}
	if websitePresent(lead, n) {
		evidence = append(evidence, "Website present (visibility channel)")
		score += 0.1
		found++
	}

	if found == 0 {
		return axisResult(model.StatusUnknown,
			[]string{"Limited visibility signals"}, axisConfidence(0, expected))
	}
	return axisResult(statusFromScore(score, visibilityStrongCut, visibilityModerateCut),
		evidence, axisConfidence(found, expected))
}

func statusFromScore(score, strongCut, moderateCut float64) model.SignalStatus {
	switch {
	case score >= strongCut:
		return model.StatusStrong
	case score >= moderateCut:
		return model.StatusModerate
	default:
		return model.StatusWeak
	}
}

func websitePresent(lead model.Lead, n normalized) bool {
	return model.IsTrue(lead.HasWebsite) && !n.websiteAbsent
}
