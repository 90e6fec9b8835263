package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

func intelWith(mentions ...model.ProcedureMention) model.ServiceIntelligence {
	return model.ServiceIntelligence{
		HighTicketProcedures: mentions,
		ProcedureConfidence:  0.6,
	}
}

func TestBuildRevenueLeverageDriverPriority(t *testing.T) {
	t.Parallel()

	t.Run("implants beat cosmetic", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureVeneers, Signal: model.SignalDedicatedPage},
			model.ProcedureMention{Procedure: model.ProcedureImplants, Signal: model.SignalDedicatedPage},
		))
		assert.Equal(t, model.DriverImplants, lev.PrimaryRevenueDriver)
	})

	t.Run("cosmetic family without implants", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureInvisalign, Signal: model.SignalDedicatedPage},
		))
		assert.Equal(t, model.DriverCosmetic, lev.PrimaryRevenueDriver)
	})

	t.Run("other dedicated pages fall to general", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureSedation, Signal: model.SignalDedicatedPage},
		))
		assert.Equal(t, model.DriverGeneral, lev.PrimaryRevenueDriver)
	})

	t.Run("mentions alone leave the driver unknown", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureImplants, Signal: model.SignalMentionedOnly},
		))
		assert.Equal(t, model.DriverUnknown, lev.PrimaryRevenueDriver)
	})
}

func TestBuildRevenueLeverageAsymmetry(t *testing.T) {
	t.Parallel()

	t.Run("dedicated top procedure is high", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureVeneers, Signal: model.SignalDedicatedPage},
		))
		assert.Equal(t, model.AsymmetryHigh, lev.EstimatedRevenueAsymmetry)
	})

	t.Run("top procedures mentioned only is moderate", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureImplants, Signal: model.SignalMentionedOnly},
		))
		assert.Equal(t, model.AsymmetryModerate, lev.EstimatedRevenueAsymmetry)
	})

	t.Run("sedation alone stays low", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureSedation, Signal: model.SignalDedicatedPage},
		))
		assert.Equal(t, model.AsymmetryLow, lev.EstimatedRevenueAsymmetry)
	})

	t.Run("nothing detected is low and unknown", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(model.ServiceIntelligence{})
		assert.Equal(t, model.AsymmetryLow, lev.EstimatedRevenueAsymmetry)
		assert.Equal(t, model.DriverUnknown, lev.PrimaryRevenueDriver)
	})
}

func TestGrowthVector(t *testing.T) {
	t.Parallel()

	t.Run("names the top missing procedure", func(t *testing.T) {
		t.Parallel()
		intel := model.ServiceIntelligence{
			MissingHighValuePages: []model.Procedure{model.ProcedureImplants, model.ProcedureVeneers},
		}
		lev := BuildRevenueLeverage(intel)
		assert.Contains(t, lev.HighestLeverageGrowthVector, "dental implants")
	})

	t.Run("high asymmetry with no gaps points at visibility", func(t *testing.T) {
		t.Parallel()
		lev := BuildRevenueLeverage(intelWith(
			model.ProcedureMention{Procedure: model.ProcedureImplants, Signal: model.SignalDedicatedPage},
		))
		assert.Contains(t, lev.HighestLeverageGrowthVector, "high-ticket")
	})
}

func TestLeverageConfidenceTracksProcedureConfidence(t *testing.T) {
	t.Parallel()

	low := BuildRevenueLeverage(model.ServiceIntelligence{ProcedureConfidence: 0.1})
	high := BuildRevenueLeverage(model.ServiceIntelligence{ProcedureConfidence: 0.9})
	assert.Less(t, low.Confidence, high.Confidence)
	assert.InDelta(t, 0.35, low.Confidence, 0.001)
	assert.InDelta(t, 0.75, high.Confidence, 0.001)
}
