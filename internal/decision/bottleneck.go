package decision

import (
	"math"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// fallbackConfidenceCap bounds the confidence of the absolute-fallback
// classification that fires only when no rule matched.
const fallbackConfidenceCap = 0.4

// nicheDedicatedMin is the dedicated-page count that, combined with
// High asymmetry, counts as established niche positioning.
const nicheDedicatedMin = 2

// nicheProcedures are the procedures counted toward strong niche
// positioning.
var nicheProcedures = []model.Procedure{
	model.ProcedureImplants,
	model.ProcedureVeneers,
	model.ProcedureInvisalign,
	model.ProcedureCosmetic,
}

// ClassifierInputs collects everything the rule chain inspects.
type ClassifierInputs struct {
	Axes        map[model.AxisName]model.AxisResult
	Gap         model.VisibilityGap
	MapPack     model.CompetitiveTier
	Density     model.CompetitiveTier
	Service     model.ServiceIntelligence
	Leverage    model.RevenueLeverageAnalysis
	AdsDetected bool
}

func (in ClassifierInputs) status(name model.AxisName) model.SignalStatus {
	axis, ok := in.Axes[name]
	if !ok {
		return model.StatusUnknown
	}
	return axis.Status
}

// HasStrongNiche reports established niche positioning: High revenue
// asymmetry backed by at least two dedicated high-ticket pages.
func (in ClassifierInputs) HasStrongNiche() bool {
	return in.Leverage.EstimatedRevenueAsymmetry == model.AsymmetryHigh &&
		DedicatedCount(in.Service, nicheProcedures...) >= nicheDedicatedMin
}

// rule is one link of the classification chain: a predicate, the
// label it selects, the axes it consulted (and nothing else feeds its
// evidence or confidence), and its narrative templates.
type rule struct {
	bottleneck model.Bottleneck
	axes       []model.AxisName
	matches    func(in ClassifierInputs) bool
	why        string
	change     string
}

// bottleneckRules is the fixed evaluation order. The first satisfied
// rule wins and no later rule is consulted. The precedence of
// differentiation_limited over saturation_limited is a deliberate
// business choice; do not reorder.
var bottleneckRules = []rule{
	{
		bottleneck: model.BottleneckTrust,
		axes:       []model.AxisName{model.AxisTrust},
		matches: func(in ClassifierInputs) bool {
			return in.status(model.AxisTrust) == model.StatusWeak
		},
		why:    "Reputation or trust signals are weak; patients are less likely to choose this practice before visibility or conversion fixes matter.",
		change: "A stronger rating, more recent positive reviews, or clearer trust signals on the website would flip Trust off Weak and shift this classification.",
	},
	{
		bottleneck: model.BottleneckDifferentiation,
		axes:       []model.AxisName{model.AxisTrust, model.AxisCapture},
		matches: func(in ClassifierInputs) bool {
			trust := in.status(model.AxisTrust)
			capture := in.status(model.AxisCapture)
			return (trust == model.StatusStrong || trust == model.StatusModerate) &&
				(capture == model.StatusStrong || capture == model.StatusModerate) &&
				(in.Gap == model.GapSaturated || in.Density == model.TierHigh) &&
				!in.HasStrongNiche()
		},
		why:    "Reviews and visibility are solid but the market is competitive; the practice lacks clear service or niche positioning to stand out.",
		change: "High revenue asymmetry with two or more dedicated high-ticket pages would establish niche positioning and shift this classification.",
	},
	{
		bottleneck: model.BottleneckSaturation,
		axes:       []model.AxisName{model.AxisVisibility, model.AxisTrust},
		matches: func(in ClassifierInputs) bool {
			return in.Gap == model.GapSaturated &&
				in.MapPack == model.TierHigh &&
				in.status(model.AxisTrust) != model.StatusWeak
		},
		why:    "Local visibility is already competitive; the main constraint is market saturation rather than a single fix like booking or reviews.",
		change: "A drop in map-pack competitiveness or a clear underutilized channel would shift this classification.",
	},
	{
		bottleneck: model.BottleneckConversion,
		axes:       []model.AxisName{model.AxisConversion, model.AxisDemand},
		matches: func(in ClassifierInputs) bool {
			demand := in.status(model.AxisDemand)
			if !in.AdsDetected && demand != model.StatusStrong {
				return false
			}
			if in.status(model.AxisConversion) != model.StatusWeak {
				return false
			}
			// Guard: do not over-index on booking friction when
			// differentiation already explains the gap.
			return !(in.status(model.AxisCapture) == model.StatusStrong &&
				in.status(model.AxisTrust) == model.StatusStrong &&
				in.HasStrongNiche())
		},
		why:    "Demand and visibility are adequate, but intake or booking friction is limiting how many leads become patients.",
		change: "Online booking, a contact form, or a smoother intake process would flip Conversion off Weak and shift this classification.",
	},
	{
		bottleneck: model.BottleneckVisibility,
		axes:       []model.AxisName{model.AxisCapture, model.AxisDemand, model.AxisConversion},
		matches: func(in ClassifierInputs) bool {
			capture := in.status(model.AxisCapture)
			demand := in.status(model.AxisDemand)
			if capture == model.StatusWeak && demand.Known() && demand != model.StatusWeak {
				return true
			}
			return (capture == model.StatusWeak || capture == model.StatusModerate) &&
				in.status(model.AxisConversion) != model.StatusWeak
		},
		why:    "Demand appears present but the practice is not capturing it well; visibility, review volume, or local presence is the limit.",
		change: "Higher review volume, stronger local visibility, or better service-page coverage would flip Capture off Weak and shift this classification.",
	},
	{
		bottleneck: model.BottleneckDemand,
		axes:       []model.AxisName{model.AxisDemand},
		matches: func(in ClassifierInputs) bool {
			return in.status(model.AxisDemand) == model.StatusWeak
		},
		why:    "Demand signals are weak; the priority is validating or building demand before heavy investment in capture or conversion.",
		change: "Stronger local interest signals, paid demand, or procedure-specific demand would shift this classification.",
	},
}

// Classify walks the ordered rule chain and returns exactly one
// bottleneck. It cannot fail: when no rule matches it falls back to
// demand_limited with capped confidence and an explicit
// insufficient-data evidence entry.
func Classify(in ClassifierInputs) model.RootBottleneckClassification {
	for _, r := range bottleneckRules {
		if !r.matches(in) {
			continue
		}
		return model.RootBottleneckClassification{
			Bottleneck:      r.bottleneck,
			WhyRootCause:    r.why,
			Evidence:        ruleEvidence(in, r.axes),
			WhatWouldChange: r.change,
			Confidence:      ruleConfidence(in, r.axes),
		}
	}

	conf := math.Min(fallbackConfidenceCap, ruleConfidence(in, model.AxisNames))
	return model.RootBottleneckClassification{
		Bottleneck:   model.BottleneckDemand,
		WhyRootCause: "No rule matched the available signals; demand validation is the conservative starting point.",
		Evidence: append([]string{"Insufficient signal data for a confident classification"},
			ruleEvidence(in, model.AxisNames)[:1]...),
		WhatWouldChange: "Any confidently measured weak axis would select a specific bottleneck.",
		Confidence:      round2(conf),
	}
}

// RuleAxes returns the axes the rule for the given bottleneck
// consults, in evaluation order. Used by the validator.
func RuleAxes(b model.Bottleneck) []model.AxisName {
	for _, r := range bottleneckRules {
		if r.bottleneck == b {
			return r.axes
		}
	}
	return nil
}

// ruleEvidence draws at least two concrete facts from the consulted
// axes only, round-robin so each axis contributes before any axis
// contributes twice.
func ruleEvidence(in ClassifierInputs, axes []model.AxisName) []string {
	var out []string
	for i := 0; len(out) < 4; i++ {
		added := false
		for _, name := range axes {
			axis := in.Axes[name]
			if i < len(axis.Evidence) {
				out = append(out, axis.Evidence[i])
				added = true
			}
		}
		if !added {
			break
		}
	}
	for len(out) < 2 {
		out = append(out, "Limited corroborating evidence across consulted axes")
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

// ruleConfidence averages the confidences of only the consulted axes,
// clamped to [0,1]. A global average would dilute the result with
// irrelevant signals.
func ruleConfidence(in ClassifierInputs, axes []model.AxisName) float64 {
	if len(axes) == 0 {
		return 0
	}
	var sum float64
	for _, name := range axes {
		sum += in.Axes[name].Confidence
	}
	return round2(math.Max(0, math.Min(1, sum/float64(len(axes)))))
}
