package decision

import (
	"fmt"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Validate scans an assembled decision record for impossible
// combinations. It is purely advisory: it returns human-readable
// warnings and never blocks or alters the decision.
func Validate(lead model.Lead, d model.ObjectiveDecision) []string {
	var warnings []string

	if model.IsFalse(lead.HasWebsite) && model.IsTrue(lead.WebsiteAccessible) {
		warnings = append(warnings,
			"impossible combination: has_website=false with website_accessible=true")
	}

	if !d.RootBottleneck.Bottleneck.Valid() {
		warnings = append(warnings, fmt.Sprintf(
			"bottleneck %q is outside the closed six-value set", d.RootBottleneck.Bottleneck))
	}
	for _, name := range RuleAxes(d.RootBottleneck.Bottleneck) {
		if d.Axes[name].Status == model.StatusUnknown {
			warnings = append(warnings, fmt.Sprintf(
				"bottleneck %s consulted the %s axis, which is Unknown; confidence may be unreliable",
				d.RootBottleneck.Bottleneck, name))
		}
	}

	for _, name := range model.AxisNames {
		if axis, ok := d.Axes[name]; ok && !axis.Status.Valid() {
			warnings = append(warnings, fmt.Sprintf(
				"axis %s has status %q outside the closed vocabulary", name, axis.Status))
		}
	}

	if d.CompetitiveSnapshot.DentistsSampled == 0 &&
		d.CompetitiveSnapshot.ReviewPositioning != model.PositionUnknown {
		warnings = append(warnings,
			"review_positioning is set but no peers were sampled")
	}

	if d.SalesValueScore < 0 || d.SalesValueScore > 100 {
		warnings = append(warnings, fmt.Sprintf(
			"seo_sales_value_score %d is outside [0,100]", d.SalesValueScore))
	}

	dedicated := map[model.Procedure]bool{}
	for _, m := range d.ServiceIntelligence.HighTicketProcedures {
		if m.Signal == model.SignalDedicatedPage {
			dedicated[m.Procedure] = true
		}
	}
	for _, proc := range d.ServiceIntelligence.MissingHighValuePages {
		if dedicated[proc] {
			warnings = append(warnings, fmt.Sprintf(
				"%s is listed as a missing page but has a dedicated page detected", proc))
		}
	}

	if len(d.InterventionPlan) == 0 {
		warnings = append(warnings, "intervention plan is empty; entry 1 must remediate the bottleneck")
	}

	return warnings
}
