package decision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// axesWith builds an axis map where every axis carries the given status,
// overridden per-axis by the overrides map. Every axis gets two evidence
// entries and a mid confidence so evidence and confidence assertions
// have material to work with.
func axesWith(base model.SignalStatus, overrides map[model.AxisName]model.SignalStatus) map[model.AxisName]model.AxisResult {
	out := make(map[model.AxisName]model.AxisResult, len(model.AxisNames))
	for _, name := range model.AxisNames {
		status := base
		if s, ok := overrides[name]; ok {
			status = s
		}
		out[name] = model.AxisResult{
			Status: status,
			Evidence: []string{
				fmt.Sprintf("%s evidence one", name),
				fmt.Sprintf("%s evidence two", name),
			},
			Confidence: 0.6,
		}
	}
	return out
}

func nicheService(dedicated int) model.ServiceIntelligence {
	procs := []model.Procedure{
		model.ProcedureImplants,
		model.ProcedureVeneers,
		model.ProcedureInvisalign,
		model.ProcedureCosmetic,
	}
	intel := model.ServiceIntelligence{ProcedureConfidence: 0.6}
	for i := 0; i < dedicated && i < len(procs); i++ {
		intel.HighTicketProcedures = append(intel.HighTicketProcedures,
			model.ProcedureMention{Procedure: procs[i], Signal: model.SignalDedicatedPage})
	}
	return intel
}

func TestClassifyTrustDominance(t *testing.T) {
	t.Parallel()

	statuses := []model.SignalStatus{
		model.StatusStrong, model.StatusModerate, model.StatusWeak, model.StatusUnknown,
	}
	// Weak trust wins regardless of every other axis combination, even
	// in a saturated high-density market with ads running.
	for _, demand := range statuses {
		for _, capture := range statuses {
			for _, conversion := range statuses {
				for _, visibility := range statuses {
					in := ClassifierInputs{
						Axes: axesWith(model.StatusUnknown, map[model.AxisName]model.SignalStatus{
							model.AxisTrust:      model.StatusWeak,
							model.AxisDemand:     demand,
							model.AxisCapture:    capture,
							model.AxisConversion: conversion,
							model.AxisVisibility: visibility,
						}),
						Gap:         model.GapSaturated,
						MapPack:     model.TierHigh,
						Density:     model.TierHigh,
						AdsDetected: true,
					}
					got := Classify(in)
					require.Equal(t, model.BottleneckTrust, got.Bottleneck,
						"demand=%s capture=%s conversion=%s visibility=%s",
						demand, capture, conversion, visibility)
				}
			}
		}
	}
}

func TestClassifyDifferentiation(t *testing.T) {
	t.Parallel()

	base := func() ClassifierInputs {
		return ClassifierInputs{
			Axes: axesWith(model.StatusModerate, map[model.AxisName]model.SignalStatus{
				model.AxisTrust:   model.StatusStrong,
				model.AxisCapture: model.StatusStrong,
			}),
			Gap:     model.GapSaturated,
			MapPack: model.TierLow,
			Density: model.TierHigh,
		}
	}

	t.Run("saturated market without niche", func(t *testing.T) {
		t.Parallel()
		got := Classify(base())
		assert.Equal(t, model.BottleneckDifferentiation, got.Bottleneck)
		assert.Len(t, got.Evidence, 4)
		assert.InDelta(t, 0.6, got.Confidence, 0.001)
	})

	t.Run("density alone is enough", func(t *testing.T) {
		t.Parallel()
		in := base()
		in.Gap = model.GapCompetitive
		got := Classify(in)
		assert.Equal(t, model.BottleneckDifferentiation, got.Bottleneck)
	})

	t.Run("moderate trust and capture still qualify", func(t *testing.T) {
		t.Parallel()
		in := base()
		in.Axes = axesWith(model.StatusModerate, nil)
		got := Classify(in)
		assert.Equal(t, model.BottleneckDifferentiation, got.Bottleneck)
	})

	t.Run("uncompetitive market skips the rule", func(t *testing.T) {
		t.Parallel()
		in := base()
		in.Gap = model.GapUnderutilized
		in.Density = model.TierLow
		got := Classify(in)
		assert.NotEqual(t, model.BottleneckDifferentiation, got.Bottleneck)
	})
}

func TestClassifyNicheFallsThroughToSaturation(t *testing.T) {
	t.Parallel()

	in := ClassifierInputs{
		Axes: axesWith(model.StatusModerate, map[model.AxisName]model.SignalStatus{
			model.AxisTrust:   model.StatusStrong,
			model.AxisCapture: model.StatusStrong,
		}),
		Gap:     model.GapSaturated,
		MapPack: model.TierHigh,
		Density: model.TierHigh,
		Service: nicheService(2),
		Leverage: model.RevenueLeverageAnalysis{
			EstimatedRevenueAsymmetry: model.AsymmetryHigh,
		},
	}
	require.True(t, in.HasStrongNiche())

	got := Classify(in)
	assert.Equal(t, model.BottleneckSaturation, got.Bottleneck)

	// One dedicated page short of a niche and the earlier rule fires.
	in.Service = nicheService(1)
	require.False(t, in.HasStrongNiche())
	got = Classify(in)
	assert.Equal(t, model.BottleneckDifferentiation, got.Bottleneck)
}

func TestClassifySaturation(t *testing.T) {
	t.Parallel()

	// Weak capture keeps the differentiation rule out; saturated map
	// pack pressure picks the saturation label.
	in := ClassifierInputs{
		Axes: axesWith(model.StatusModerate, map[model.AxisName]model.SignalStatus{
			model.AxisCapture:    model.StatusWeak,
			model.AxisConversion: model.StatusWeak,
			model.AxisDemand:     model.StatusWeak,
		}),
		Gap:     model.GapSaturated,
		MapPack: model.TierHigh,
	}
	got := Classify(in)
	assert.Equal(t, model.BottleneckSaturation, got.Bottleneck)

	in.MapPack = model.TierModerate
	got = Classify(in)
	assert.NotEqual(t, model.BottleneckSaturation, got.Bottleneck)
}

func TestClassifyConversion(t *testing.T) {
	t.Parallel()

	base := func() ClassifierInputs {
		return ClassifierInputs{
			Axes: axesWith(model.StatusModerate, map[model.AxisName]model.SignalStatus{
				model.AxisDemand:     model.StatusStrong,
				model.AxisConversion: model.StatusWeak,
			}),
			Gap:     model.GapCompetitive,
			MapPack: model.TierLow,
			Density: model.TierModerate,
		}
	}

	t.Run("strong demand weak conversion", func(t *testing.T) {
		t.Parallel()
		got := Classify(base())
		assert.Equal(t, model.BottleneckConversion, got.Bottleneck)
	})

	t.Run("ads substitute for strong demand", func(t *testing.T) {
		t.Parallel()
		in := base()
		in.Axes[model.AxisDemand] = model.AxisResult{Status: model.StatusModerate, Confidence: 0.6,
			Evidence: []string{"demand evidence one", "demand evidence two"}}
		in.AdsDetected = true
		got := Classify(in)
		assert.Equal(t, model.BottleneckConversion, got.Bottleneck)
	})

	t.Run("no demand no ads skips the rule", func(t *testing.T) {
		t.Parallel()
		in := base()
		in.Axes[model.AxisDemand] = model.AxisResult{Status: model.StatusModerate, Confidence: 0.6}
		got := Classify(in)
		assert.NotEqual(t, model.BottleneckConversion, got.Bottleneck)
	})

	t.Run("strong niche guard defers booking friction", func(t *testing.T) {
		t.Parallel()
		in := base()
		in.Axes[model.AxisCapture] = model.AxisResult{Status: model.StatusStrong, Confidence: 0.6}
		in.Axes[model.AxisTrust] = model.AxisResult{Status: model.StatusStrong, Confidence: 0.6}
		in.Service = nicheService(2)
		in.Leverage = model.RevenueLeverageAnalysis{EstimatedRevenueAsymmetry: model.AsymmetryHigh}
		got := Classify(in)
		assert.NotEqual(t, model.BottleneckConversion, got.Bottleneck)
	})
}

func TestClassifyVisibility(t *testing.T) {
	t.Parallel()

	t.Run("weak capture with present demand", func(t *testing.T) {
		t.Parallel()
		in := ClassifierInputs{
			Axes: axesWith(model.StatusWeak, map[model.AxisName]model.SignalStatus{
				model.AxisTrust:   model.StatusModerate,
				model.AxisDemand:  model.StatusModerate,
				model.AxisCapture: model.StatusWeak,
			}),
		}
		got := Classify(in)
		assert.Equal(t, model.BottleneckVisibility, got.Bottleneck)
	})

	t.Run("moderate capture with healthy conversion", func(t *testing.T) {
		t.Parallel()
		in := ClassifierInputs{
			Axes: axesWith(model.StatusUnknown, map[model.AxisName]model.SignalStatus{
				model.AxisTrust:      model.StatusModerate,
				model.AxisCapture:    model.StatusModerate,
				model.AxisConversion: model.StatusModerate,
			}),
		}
		got := Classify(in)
		assert.Equal(t, model.BottleneckVisibility, got.Bottleneck)
	})

	t.Run("unknown demand with weak conversion falls past", func(t *testing.T) {
		t.Parallel()
		in := ClassifierInputs{
			Axes: axesWith(model.StatusUnknown, map[model.AxisName]model.SignalStatus{
				model.AxisTrust:      model.StatusModerate,
				model.AxisCapture:    model.StatusWeak,
				model.AxisConversion: model.StatusWeak,
			}),
		}
		got := Classify(in)
		assert.NotEqual(t, model.BottleneckVisibility, got.Bottleneck)
	})
}

func TestClassifyDemand(t *testing.T) {
	t.Parallel()

	in := ClassifierInputs{
		Axes: axesWith(model.StatusUnknown, map[model.AxisName]model.SignalStatus{
			model.AxisTrust:  model.StatusModerate,
			model.AxisDemand: model.StatusWeak,
		}),
	}
	got := Classify(in)
	assert.Equal(t, model.BottleneckDemand, got.Bottleneck)
	assert.Equal(t, []model.AxisName{model.AxisDemand}, RuleAxes(got.Bottleneck))
}

func TestClassifyFallback(t *testing.T) {
	t.Parallel()

	axes := make(map[model.AxisName]model.AxisResult, len(model.AxisNames))
	for _, name := range model.AxisNames {
		axes[name] = model.AxisResult{Status: model.StatusUnknown, Confidence: 0.2}
	}
	got := Classify(ClassifierInputs{Axes: axes})

	assert.Equal(t, model.BottleneckDemand, got.Bottleneck)
	assert.LessOrEqual(t, got.Confidence, fallbackConfidenceCap)
	require.NotEmpty(t, got.Evidence)
	assert.Contains(t, got.Evidence[0], "Insufficient signal data")
	assert.GreaterOrEqual(t, len(got.Evidence), 2)
}

func TestRuleEvidenceRoundRobin(t *testing.T) {
	t.Parallel()

	in := ClassifierInputs{Axes: map[model.AxisName]model.AxisResult{
		model.AxisTrust:   {Evidence: []string{"trust a", "trust b", "trust c"}},
		model.AxisCapture: {Evidence: []string{"capture a"}},
	}}
	got := ruleEvidence(in, []model.AxisName{model.AxisTrust, model.AxisCapture})
	assert.Equal(t, []string{"trust a", "capture a", "trust b", "trust c"}, got)
}

func TestRuleEvidencePadsToTwo(t *testing.T) {
	t.Parallel()

	in := ClassifierInputs{Axes: map[model.AxisName]model.AxisResult{}}
	got := ruleEvidence(in, []model.AxisName{model.AxisTrust})
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "Limited corroborating evidence")
}

func TestRuleConfidenceAveragesConsultedAxesOnly(t *testing.T) {
	t.Parallel()

	in := ClassifierInputs{Axes: map[model.AxisName]model.AxisResult{
		model.AxisTrust:   {Confidence: 0.9},
		model.AxisCapture: {Confidence: 0.5},
		model.AxisDemand:  {Confidence: 0.1},
	}}
	assert.InDelta(t, 0.7, ruleConfidence(in, []model.AxisName{model.AxisTrust, model.AxisCapture}), 0.001)
	assert.InDelta(t, 0.9, ruleConfidence(in, []model.AxisName{model.AxisTrust}), 0.001)
	assert.Zero(t, ruleConfidence(in, nil))
}
