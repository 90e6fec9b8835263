package decision

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Procedure-confidence terms: a floor plus increments per page
// crawled and per detection.
const (
	procConfidenceFloor        = 0.3
	procConfidencePerPage      = 0.15
	procConfidencePerDetection = 0.1
)

// BuildServiceIntelligence reduces the service-depth crawl output to
// the detected high-ticket procedures, general services, and missing
// high-value pages. Mentions outside the closed procedure vocabulary
// are dropped with a warning instead of failing.
func BuildServiceIntelligence(lead model.Lead) (model.ServiceIntelligence, []string) {
	var warnings []string

	// Collapse duplicate mentions; a dedicated page beats a
	// mentioned-only sighting of the same procedure.
	best := map[model.Procedure]model.ProcedureMention{}
	for _, m := range lead.ProcedureMentions {
		if !m.Procedure.Valid() {
			warnings = append(warnings, fmt.Sprintf(
				"procedure %q is outside the closed vocabulary; dropped", m.Procedure))
			continue
		}
		if m.Signal != model.SignalDedicatedPage && m.Signal != model.SignalMentionedOnly {
			warnings = append(warnings, fmt.Sprintf(
				"procedure signal %q for %q is outside the closed vocabulary; treated as mentioned_only", m.Signal, m.Procedure))
			m.Signal = model.SignalMentionedOnly
		}
		prev, seen := best[m.Procedure]
		if !seen || (prev.Signal == model.SignalMentionedOnly && m.Signal == model.SignalDedicatedPage) {
			best[m.Procedure] = m
		}
	}

	intel := model.ServiceIntelligence{
		HighTicketProcedures:  make([]model.ProcedureMention, 0, len(best)),
		GeneralServices:       dedupeStrings(lead.GeneralServices),
		MissingHighValuePages: []model.Procedure{},
	}

	// Vocabulary order keeps the output stable across runs.
	for _, proc := range model.HighTicketProcedures {
		if m, ok := best[proc]; ok {
			intel.HighTicketProcedures = append(intel.HighTicketProcedures, m)
		}
	}

	// Missing pages: discussed in copy (on site or in reviews) but
	// lacking a dedicated URL.
	corroborated := map[model.Procedure]bool{}
	for proc, m := range best {
		if m.Signal == model.SignalMentionedOnly {
			corroborated[proc] = true
		}
	}
	for _, raw := range lead.ReviewProcedureMentions {
		proc, ok := canonicalProcedure(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf(
				"review procedure mention %q is outside the closed vocabulary; dropped", raw))
			continue
		}
		if best[proc].Signal != model.SignalDedicatedPage {
			corroborated[proc] = true
		}
	}
	for _, proc := range model.HighTicketProcedures {
		if corroborated[proc] {
			intel.MissingHighValuePages = append(intel.MissingHighValuePages, proc)
		}
	}

	if lead.PagesCrawled > 0 || len(intel.HighTicketProcedures) > 0 {
		conf := procConfidenceFloor +
			procConfidencePerPage*float64(lead.PagesCrawled) +
			procConfidencePerDetection*float64(len(intel.HighTicketProcedures))
		intel.ProcedureConfidence = round2(math.Min(1, conf))
	}

	return intel, warnings
}

// DedicatedCount returns how many of the given procedures carry a
// dedicated-page signal in the intelligence block.
func DedicatedCount(intel model.ServiceIntelligence, procs ...model.Procedure) int {
	count := 0
	for _, m := range intel.HighTicketProcedures {
		if m.Signal != model.SignalDedicatedPage {
			continue
		}
		for _, p := range procs {
			if m.Procedure == p {
				count++
				break
			}
		}
	}
	return count
}

// procedureKeywords maps detection keywords onto canonical procedure
// names, in vocabulary priority order.
var procedureKeywords = []struct {
	keyword string
	proc    model.Procedure
}{
	{"implant", model.ProcedureImplants},
	{"invisalign", model.ProcedureInvisalign},
	{"veneer", model.ProcedureVeneers},
	{"cosmetic", model.ProcedureCosmetic},
	{"sedation", model.ProcedureSedation},
	{"emergency", model.ProcedureEmergency},
	{"same-day crown", model.ProcedureSameDayCrown},
	{"same day crown", model.ProcedureSameDayCrown},
	{"sleep apnea", model.ProcedureSleepApnea},
	{"orthodont", model.ProcedureOrthodontics},
	{"braces", model.ProcedureOrthodontics},
}

// canonicalProcedure maps a free-form mention onto the closed
// vocabulary by case-insensitive keyword containment.
func canonicalProcedure(raw string) (model.Procedure, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return "", false
	}
	if p := model.Procedure(needle); p.Valid() {
		return p, true
	}
	for _, k := range procedureKeywords {
		if strings.Contains(needle, k.keyword) {
			return k.proc, true
		}
	}
	return "", false
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
