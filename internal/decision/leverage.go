package decision

import (
	"fmt"
	"math"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// asymmetryProcedures are the procedures whose dedicated pages signal
// high revenue concentration.
var asymmetryProcedures = []model.Procedure{
	model.ProcedureImplants,
	model.ProcedureVeneers,
	model.ProcedureInvisalign,
}

// cosmeticDrivers are the procedures that collapse into the cosmetic
// revenue driver.
var cosmeticDrivers = []model.Procedure{
	model.ProcedureCosmetic,
	model.ProcedureVeneers,
	model.ProcedureInvisalign,
}

// BuildRevenueLeverage derives the revenue-leverage analysis from the
// service intelligence block.
func BuildRevenueLeverage(intel model.ServiceIntelligence) model.RevenueLeverageAnalysis {
	out := model.RevenueLeverageAnalysis{
		PrimaryRevenueDriver:      model.DriverUnknown,
		EstimatedRevenueAsymmetry: model.AsymmetryLow,
	}

	// Driver by fixed priority among dedicated pages only:
	// implants > cosmetic > general.
	switch {
	case DedicatedCount(intel, model.ProcedureImplants) > 0:
		out.PrimaryRevenueDriver = model.DriverImplants
	case DedicatedCount(intel, cosmeticDrivers...) > 0:
		out.PrimaryRevenueDriver = model.DriverCosmetic
	case DedicatedCount(intel, model.HighTicketProcedures...) > 0:
		out.PrimaryRevenueDriver = model.DriverGeneral
	}

	// Asymmetry: a dedicated page for any top-asymmetry procedure is
	// High; the same procedures mentioned only is Moderate.
	if DedicatedCount(intel, asymmetryProcedures...) > 0 {
		out.EstimatedRevenueAsymmetry = model.AsymmetryHigh
	} else if mentionedAny(intel, asymmetryProcedures...) {
		out.EstimatedRevenueAsymmetry = model.AsymmetryModerate
	}

	out.HighestLeverageGrowthVector = growthVector(intel, out)
	out.Confidence = round2(math.Min(1, 0.3+intel.ProcedureConfidence*0.5))
	return out
}

func mentionedAny(intel model.ServiceIntelligence, procs ...model.Procedure) bool {
	for _, m := range intel.HighTicketProcedures {
		if m.Signal != model.SignalMentionedOnly {
			continue
		}
		for _, p := range procs {
			if m.Procedure == p {
				return true
			}
		}
	}
	return false
}

// growthVector names the single highest-leverage next move as one
// templated sentence.
func growthVector(intel model.ServiceIntelligence, out model.RevenueLeverageAnalysis) string {
	if len(intel.MissingHighValuePages) > 0 {
		return fmt.Sprintf("Add a dedicated %s landing page to capture high-intent demand.",
			intel.MissingHighValuePages[0])
	}
	switch {
	case out.EstimatedRevenueAsymmetry == model.AsymmetryHigh:
		return "Strengthen visibility for existing high-ticket services in local search."
	case out.PrimaryRevenueDriver == model.DriverGeneral:
		return "Differentiate with targeted service pages or local positioning to improve capture."
	default:
		return "Clarify service focus and local visibility to improve demand capture."
	}
}
