package decision

import (
	"go.uber.org/zap"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Evaluate runs the full objective decision layer over one lead's
// already-gathered signals and returns a complete, well-formed
// decision record. It performs no I/O, touches no shared state, and
// is safe to call concurrently for different leads. Data-quality
// problems reduce confidence and populate validation warnings; they
// never produce an error.
func Evaluate(lead model.Lead) *model.ObjectiveDecision {
	n := normalizeSignals(lead)
	axes := evaluateAxes(lead, n)
	snapshot := BuildCompetitiveSnapshot(lead)
	service, serviceWarnings := BuildServiceIntelligence(lead)
	leverage := BuildRevenueLeverage(service)

	adsDetected := model.IsTrue(lead.RunsPaidAds)
	root := Classify(ClassifierInputs{
		Axes:        axes,
		Gap:         n.gap,
		MapPack:     n.mapPack,
		Density:     snapshot.MarketDensityScore,
		Service:     service,
		Leverage:    leverage,
		AdsDetected: adsDetected,
	})

	plannerIn := PlannerInputs{
		Axes:        axes,
		Snapshot:    snapshot,
		Service:     service,
		Leverage:    leverage,
		Root:        root,
		AdsDetected: adsDetected,
	}

	d := &model.ObjectiveDecision{
		RootBottleneck:      root,
		SEOLever:            AssessSEOLever(root, axes),
		Axes:                axes,
		ServiceIntelligence: service,
		CompetitiveSnapshot: snapshot,
		RevenueLeverage:     leverage,
		SalesValueScore:     SalesValueScore(plannerIn),
		ComparativeContext:  ComparativeContext(lead, snapshot),
		PrimarySalesAnchor:  BuildSalesAnchor(root),
		InterventionPlan:    BuildInterventionPlan(root, service),
		DeRiskingQuestions:  BuildDeRiskingQuestions(plannerIn),
	}

	d.ValidationWarnings = append([]string{}, n.warnings...)
	d.ValidationWarnings = append(d.ValidationWarnings, serviceWarnings...)
	d.ValidationWarnings = append(d.ValidationWarnings, Validate(lead, *d)...)

	zap.L().Debug("decision: lead classified",
		zap.String("lead", lead.Name),
		zap.String("bottleneck", string(root.Bottleneck)),
		zap.Float64("confidence", root.Confidence),
		zap.Int("sales_value_score", d.SalesValueScore),
		zap.Int("warnings", len(d.ValidationWarnings)),
	)

	return d
}
