package decision

import (
	"fmt"
	"strings"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Sales-value score terms. The score is a pure additive/subtractive
// function of upstream fields, clamped to [0,100].
const (
	scoreBase = 50

	scoreAsymmetryHigh     = 12
	scoreAsymmetryModerate = 6
	scoreCaptureWeak       = 12
	scoreCaptureModerate   = 5
	scorePositionBelow     = 10
	scorePositionInLine    = 4
	scoreMissingPagesMulti = 10
	scoreMissingPagesOne   = 5
	scoreDensityLow        = 8
	scoreDensityModerate   = 2

	penaltySaturatedStrongTrust = 25
	penaltyNoLeverage           = 10
	penaltyAlreadyConverting    = 20
)

// PlannerInputs collects the upstream results the planner consumes.
type PlannerInputs struct {
	Axes        map[model.AxisName]model.AxisResult
	Snapshot    model.CompetitiveSnapshot
	Service     model.ServiceIntelligence
	Leverage    model.RevenueLeverageAnalysis
	Root        model.RootBottleneckClassification
	AdsDetected bool
}

// SalesValueScore computes the internal 0-100 prioritization score.
// Identical inputs always yield the identical score.
func SalesValueScore(in PlannerInputs) int {
	score := scoreBase

	switch in.Leverage.EstimatedRevenueAsymmetry {
	case model.AsymmetryHigh:
		score += scoreAsymmetryHigh
	case model.AsymmetryModerate:
		score += scoreAsymmetryModerate
	}

	switch in.Axes[model.AxisCapture].Status {
	case model.StatusWeak:
		score += scoreCaptureWeak
	case model.StatusModerate:
		score += scoreCaptureModerate
	}

	switch in.Snapshot.ReviewPositioning {
	case model.PositionBelow:
		score += scorePositionBelow
	case model.PositionInLine:
		score += scorePositionInLine
	}

	switch missing := len(in.Service.MissingHighValuePages); {
	case missing >= 2:
		score += scoreMissingPagesMulti
	case missing == 1:
		score += scoreMissingPagesOne
	}

	switch in.Snapshot.MarketDensityScore {
	case model.TierLow:
		score += scoreDensityLow
	case model.TierModerate:
		score += scoreDensityModerate
	}

	trust := in.Axes[model.AxisTrust].Status
	if in.Root.Bottleneck == model.BottleneckSaturation && trust == model.StatusStrong {
		score -= penaltySaturatedStrongTrust
	}
	if in.Leverage.EstimatedRevenueAsymmetry == model.AsymmetryLow && len(in.Service.MissingHighValuePages) == 0 {
		score -= penaltyNoLeverage
	}
	if in.Axes[model.AxisConversion].Status == model.StatusStrong && trust == model.StatusStrong && in.AdsDetected {
		score -= penaltyAlreadyConverting
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// alternativeLever maps each non-SEO bottleneck to the lever worth
// pulling first instead.
var alternativeLever = map[model.Bottleneck]string{
	model.BottleneckTrust:      "Reputation / trust",
	model.BottleneckSaturation: "Differentiation or conversion",
	model.BottleneckDemand:     "Demand generation",
	model.BottleneckConversion: "Conversion / booking",
}

// AssessSEOLever decides whether SEO is the primary growth lever for
// the classified bottleneck.
func AssessSEOLever(root model.RootBottleneckClassification, axes map[model.AxisName]model.AxisResult) model.SEOLeverAssessment {
	switch root.Bottleneck {
	case model.BottleneckTrust:
		return model.SEOLeverAssessment{
			Reasoning:               "Reputation and trust are the root bottleneck; SEO is not the best first lever until trust is addressed.",
			Confidence:              0.85,
			AlternativePrimaryLever: alternativeLever[root.Bottleneck],
		}
	case model.BottleneckSaturation:
		return model.SEOLeverAssessment{
			Reasoning:               "The market is saturated; SEO may not be the highest-impact lever compared to differentiation or conversion.",
			Confidence:              0.75,
			AlternativePrimaryLever: alternativeLever[root.Bottleneck],
		}
	case model.BottleneckDemand:
		return model.SEOLeverAssessment{
			Reasoning:               "Demand is the constraint; SEO captures demand but does not create it. Validate or build demand first.",
			Confidence:              0.75,
			AlternativePrimaryLever: alternativeLever[root.Bottleneck],
		}
	case model.BottleneckConversion:
		return model.SEOLeverAssessment{
			Reasoning:               "Conversion is the root bottleneck; fix booking and intake before investing heavily in SEO traffic.",
			Confidence:              0.8,
			AlternativePrimaryLever: alternativeLever[root.Bottleneck],
		}
	case model.BottleneckDifferentiation:
		return model.SEOLeverAssessment{
			IsPrimaryGrowthLever: true,
			Reasoning:            "Differentiation is the constraint; SEO (service pages, local positioning) can help the practice stand out in a competitive market.",
			Confidence:           0.75,
		}
	case model.BottleneckVisibility:
		if axes[model.AxisTrust].Status != model.StatusWeak {
			return model.SEOLeverAssessment{
				IsPrimaryGrowthLever: true,
				Reasoning:            "Visibility is the root bottleneck and trust is adequate; SEO is a strong next lever to capture more demand.",
				Confidence:           axes[model.AxisCapture].Confidence,
			}
		}
	}
	return model.SEOLeverAssessment{
		Reasoning:               "Insufficient signal to recommend SEO as the best next lever.",
		Confidence:              0.5,
		AlternativePrimaryLever: alternativeLever[root.Bottleneck],
	}
}

// anchorIssue is the per-bottleneck opening issue for the sales
// conversation.
var anchorIssue = map[model.Bottleneck]string{
	model.BottleneckDemand:          "Validate demand before scaling visibility",
	model.BottleneckVisibility:      "Improve local visibility and review presence",
	model.BottleneckConversion:      "Reduce booking or intake friction",
	model.BottleneckTrust:           "Strengthen reputation and trust signals first",
	model.BottleneckSaturation:      "Differentiate or focus on conversion before more visibility",
	model.BottleneckDifferentiation: "Build clear service or niche positioning with dedicated high-value procedure pages",
}

// BuildSalesAnchor derives the primary sales anchor from the
// bottleneck and its narrative.
func BuildSalesAnchor(root model.RootBottleneckClassification) model.SalesAnchor {
	return model.SalesAnchor{
		Issue:                anchorIssue[root.Bottleneck],
		WhyThisFirst:         root.WhyRootCause,
		WhatHappensIfIgnored: "Revenue or patient flow remains constrained while competitors consolidate the local market.",
		Confidence:           root.Confidence,
	}
}

// Per-bottleneck intervention templates. Entry one always remediates
// the selected bottleneck; the %s slot takes the top missing
// high-value procedure where the template names one.
type planTemplates struct {
	first, second, third          string
	firstCat, secondCat, thirdCat model.InterventionCategory
}

var planByBottleneck = map[model.Bottleneck]planTemplates{
	model.BottleneckDemand: {
		first:     "Validate demand and channel mix with a simple tracking setup before investing in new pages.",
		firstCat:  model.CategoryDemand,
		second:    "Add LocalBusiness schema to the site and verify it in Search Console Rich Results.",
		secondCat: model.CategoryDemand,
		third:     "Create or optimize one high-intent landing page and add a conversion goal to measure demand capture.",
		thirdCat:  model.CategoryCapture,
	},
	model.BottleneckVisibility: {
		first:     "Create a dedicated %s landing page with H1/local keywords and LocalBusiness schema; submit the URL in Search Console.",
		firstCat:  model.CategoryCapture,
		second:    "Add MedicalBusiness or Service schema to the site; verify in Search Console and fix any errors.",
		secondCat: model.CategoryCapture,
		third:     "Optimize the Google Business Profile primary category and service attributes; add a review request link to the post-visit flow.",
		thirdCat:  model.CategoryCapture,
	},
	model.BottleneckConversion: {
		first:     "Add an online booking CTA above the fold with conversion tracking and a goal for high-value procedures.",
		firstCat:  model.CategoryConversion,
		second:    "Add LocalBusiness schema and a clear phone-plus-booking CTA above the fold on service pages.",
		secondCat: model.CategoryConversion,
		third:     "Optimize the Google Business Profile for booking: booking link, hours, and services.",
		thirdCat:  model.CategoryConversion,
	},
	model.BottleneckTrust: {
		first:     "Set up a post-visit review request (email or SMS), track review velocity, and surface ratings and credentials above the fold.",
		firstCat:  model.CategoryTrust,
		second:    "Add LocalBusiness and AggregateRating schema where eligible; improve Google Business Profile Q&A and service attributes.",
		secondCat: model.CategoryTrust,
		third:     "Improve on-page trust content (credentials, insurance) and add a conversion goal to measure impact.",
		thirdCat:  model.CategoryTrust,
	},
	model.BottleneckSaturation: {
		first:     "Create a dedicated %s landing page with local intent and schema; target one high-value procedure rather than a generic services page.",
		firstCat:  model.CategoryCapture,
		second:    "Add schema to new and existing service pages; optimize the Google Business Profile primary category for the procedure.",
		secondCat: model.CategoryCapture,
		third:     "Add a conversion goal and CTA above the fold on the new high-value page.",
		thirdCat:  model.CategoryConversion,
	},
	model.BottleneckDifferentiation: {
		first:     "Create a dedicated %s landing page with H1/local keywords and MedicalBusiness or Service schema for the local pack.",
		firstCat:  model.CategoryCapture,
		second:    "Add MedicalBusiness/Service schema to the new page and key service URLs; submit the sitemap in Search Console.",
		secondCat: model.CategoryCapture,
		third:     "Add conversion tracking and a clear CTA on the new page; optimize the Google Business Profile primary category for the procedure.",
		thirdCat:  model.CategoryConversion,
	},
}

// BuildInterventionPlan produces the ordered three-entry plan. The
// first entry always remediates the selected bottleneck.
func BuildInterventionPlan(root model.RootBottleneckClassification, intel model.ServiceIntelligence) []model.InterventionItem {
	tpl := planByBottleneck[root.Bottleneck]

	topMissing := "high-value procedure"
	if len(intel.MissingHighValuePages) > 0 {
		topMissing = string(intel.MissingHighValuePages[0])
	}
	expand := func(t string) string {
		if !strings.Contains(t, "%s") {
			return t
		}
		return fmt.Sprintf(t, topMissing)
	}

	firstConf := root.Confidence
	if firstConf == 0 {
		firstConf = 0.5
	}

	return []model.InterventionItem{
		{
			Priority:          1,
			Action:            expand(tpl.first),
			Category:          tpl.firstCat,
			ExpectedImpact:    "Addresses the root constraint; measurable within 60 days.",
			TimeToSignalDays:  30,
			Confidence:        firstConf,
			WhyNotSecondaries: "Addressing the root bottleneck first avoids spreading effort across secondary fixes.",
		},
		{
			Priority:         2,
			Action:           expand(tpl.second),
			Category:         tpl.secondCat,
			ExpectedImpact:   "Improves local pack and SERP visibility.",
			TimeToSignalDays: 45,
			Confidence:       0.5,
		},
		{
			Priority:         3,
			Action:           expand(tpl.third),
			Category:         tpl.thirdCat,
			ExpectedImpact:   "Reinforces capture or conversion; measurable within 60 days.",
			TimeToSignalDays: 45,
			Confidence:       0.5,
		},
	}
}

// Discovery-question templates keyed by the uncertain axis they
// resolve.
var axisQuestions = map[model.AxisName]model.DeRiskingQuestion{
	model.AxisDemand: {
		Question:          "How are new patients finding you today?",
		TiesToUncertainty: "Demand and channel mix",
	},
	model.AxisConversion: {
		Question:          "How do patients book: phone only, form, or online scheduling?",
		TiesToUncertainty: "Booking and intake friction",
	},
	model.AxisTrust: {
		Question:          "Do you ask patients for reviews after visits, and how often do they follow through?",
		TiesToUncertainty: "Reputation strength and review velocity",
	},
	model.AxisCapture: {
		Question:          "When you search your main services locally, where does your practice show up?",
		TiesToUncertainty: "Local visibility and demand capture",
	},
	model.AxisVisibility: {
		Question:          "Which nearby practices do you lose patients to most often?",
		TiesToUncertainty: "Competitive visibility pressure",
	},
}

// defaultQuestions pad the list when fewer than two uncertainties
// exist.
var defaultQuestions = []model.DeRiskingQuestion{
	{
		Question:          "Do you have an agency or someone handling your online presence today?",
		TiesToUncertainty: "Existing ownership of channels",
	},
	{
		Question:          "What would need to be true for you to change something in the next 90 days?",
		TiesToUncertainty: "Readiness to act",
	},
}

// lowInputConfidence marks an upstream block as uncertain enough to
// warrant a discovery question.
const lowInputConfidence = 0.4

// BuildDeRiskingQuestions maps each unresolved Unknown axis or
// low-confidence input to one discovery question, bounded to 2-4
// entries.
func BuildDeRiskingQuestions(in PlannerInputs) []model.DeRiskingQuestion {
	var out []model.DeRiskingQuestion
	for _, name := range model.AxisNames {
		axis := in.Axes[name]
		if axis.Status == model.StatusUnknown || axis.Confidence < lowInputConfidence {
			out = append(out, axisQuestions[name])
		}
		if len(out) == 4 {
			return out
		}
	}
	if in.Service.ProcedureConfidence < lowInputConfidence && len(out) < 4 {
		out = append(out, model.DeRiskingQuestion{
			Question:          "Which of your services bring in the most revenue today?",
			TiesToUncertainty: "Service mix and revenue concentration",
		})
	}
	if in.Snapshot.Confidence < lowInputConfidence && len(out) < 4 {
		out = append(out, model.DeRiskingQuestion{
			Question:          "How competitive do you feel your immediate area is for new patients?",
			TiesToUncertainty: "Competitive density of the local market",
		})
	}
	for i := 0; len(out) < 2 && i < len(defaultQuestions); i++ {
		out = append(out, defaultQuestions[i])
	}
	return out
}

// ComparativeContext frames the lead against the peer sample in one
// sentence.
func ComparativeContext(lead model.Lead, snap model.CompetitiveSnapshot) string {
	if snap.DentistsSampled > 0 {
		return fmt.Sprintf(
			"Among %d nearby dentists, this practice has %d reviews (sample avg %.0f); positioning %s. Market density: %s.",
			snap.DentistsSampled, snap.LeadReviewCount, snap.AvgReviewCount,
			snap.ReviewPositioning, snap.MarketDensityScore)
	}
	if lead.LastReviewDaysAgo != nil {
		return fmt.Sprintf(
			"No peer sample available; review count %d with the last review %d days ago is the only local pattern signal.",
			snap.LeadReviewCount, *lead.LastReviewDaysAgo)
	}
	return fmt.Sprintf("No peer sample available; review count %d is the only local pattern signal.",
		snap.LeadReviewCount)
}
