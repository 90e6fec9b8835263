package servicedepth

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/diagnosis-cli/internal/model"
)

var folder = cases.Fold()

// fold lowercases text for case-insensitive matching, handling the
// odd unicode title-case that shows up in scraped HTML.
func fold(s string) string {
	return folder.String(s)
}

// procedureTerms maps each high-ticket procedure to the phrases that
// identify it in a URL slug, page title, heading, or body copy. Slug
// matching normalizes dashes to spaces first, so multi-word terms
// match both "dental-implants" and "dental implants".
var procedureTerms = map[model.Procedure][]string{
	model.ProcedureImplants:     {"dental implant", "implant"},
	model.ProcedureInvisalign:   {"invisalign", "clear aligner"},
	model.ProcedureVeneers:      {"veneer"},
	model.ProcedureCosmetic:     {"cosmetic dentistry", "cosmetic dentist", "smile makeover"},
	model.ProcedureSedation:     {"sedation"},
	model.ProcedureEmergency:    {"emergency dentist", "emergency dental"},
	model.ProcedureSameDayCrown: {"same day crown", "same-day crown", "cerec"},
	model.ProcedureSleepApnea:   {"sleep apnea", "sleep apnoea"},
	model.ProcedureOrthodontics: {"orthodontic", "braces"},
}

// generalServiceTerms maps bread-and-butter services to detection
// phrases. These feed GeneralServices, the breadth side of the
// asymmetry estimate.
var generalServiceTerms = map[string][]string{
	"cleanings":        {"cleaning", "prophylaxis", "dental hygiene"},
	"exams":            {"dental exam", "checkup", "check-up"},
	"fillings":         {"filling"},
	"crowns":           {"crown"},
	"root canals":      {"root canal", "endodontic"},
	"extractions":      {"extraction", "wisdom t"},
	"dentures":         {"denture"},
	"teeth whitening":  {"whitening"},
	"pediatric care":   {"pediatric", "children's dentist", "kids dentist"},
	"periodontal care": {"periodontal", "gum disease"},
	"preventive care":  {"preventive", "preventative"},
	"bridges":          {"dental bridge", "bridges"},
}

// servicePathHints marks link paths worth crawling beyond the
// homepage: service indexes, individual procedure pages, and the
// about page where credentials live.
var servicePathHints = []string{
	"service", "procedure", "treatment", "dentistry", "dental",
	"implant", "invisalign", "veneer", "cosmetic", "sedation",
	"emergency", "crown", "sleep", "orthodont", "braces",
	"whitening", "about", "our-team", "meet", "doctor",
}

// schedulingMarkers identify booking widgets and explicit online
// scheduling offers.
var schedulingMarkers = []string{
	"book online", "schedule online", "online scheduling",
	"book an appointment online", "request appointment",
	"localmed", "zocdoc", "nexhealth", "flexbook", "solutionreach",
}

// serviceLikePath reports whether a same-host path looks like a page
// the crawl should spend budget on.
func serviceLikePath(path string) bool {
	slug := slugText(path)
	if slug == "" {
		return false
	}
	for _, hint := range servicePathHints {
		if strings.Contains(slug, hint) {
			return true
		}
	}
	return false
}

// slugText folds a URL path and normalizes separators to spaces so
// phrase terms match slugs.
func slugText(path string) string {
	s := fold(path)
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ", ".", " ").Replace(s)
	return strings.TrimSpace(s)
}

// analyze walks the fetched pages and writes every website-derived
// signal onto the lead. All booleans become measured values: the
// crawl looked, so absence is false, not unknown.
func analyze(lead *model.Lead, pages []*page) {
	lead.PagesCrawled = len(pages)

	dedicated := make(map[model.Procedure]string) // procedure -> URL path
	mentioned := make(map[model.Procedure]bool)
	general := make(map[string]bool)

	var (
		contactForm bool
		scheduling  bool
		phone       bool
		gallery     bool
		credentials bool
		insurance   bool
	)

	for _, p := range pages {
		slug := slugText(p.url.Path)
		title := fold(p.title)
		h1 := fold(p.h1)

		for _, proc := range model.HighTicketProcedures {
			for _, term := range procedureTerms[proc] {
				switch {
				case strings.Contains(slug, term) || strings.Contains(title, term) || strings.Contains(h1, term):
					if _, ok := dedicated[proc]; !ok {
						dedicated[proc] = p.url.Path
					}
				case strings.Contains(p.body, term):
					mentioned[proc] = true
				default:
					continue
				}
				break
			}
		}

		for name, terms := range generalServiceTerms {
			for _, term := range terms {
				if strings.Contains(p.body, term) {
					general[name] = true
					break
				}
			}
		}

		if strings.Contains(p.body, "<form") {
			contactForm = true
		}
		for _, marker := range schedulingMarkers {
			if strings.Contains(p.body, marker) {
				scheduling = true
				break
			}
		}
		if strings.Contains(p.body, "tel:") {
			phone = true
		}
		if strings.Contains(p.body, "before and after") ||
			strings.Contains(p.body, "before & after") ||
			strings.Contains(p.body, "before &amp; after") ||
			strings.Contains(p.body, "smile gallery") {
			gallery = true
		}
		if strings.Contains(p.body, "dds") || strings.Contains(p.body, "dmd") ||
			strings.Contains(p.body, "doctor of dental") {
			credentials = true
		}
		if strings.Contains(p.body, "insurance") {
			insurance = true
		}
	}

	lead.HasContactForm = boolPtr(contactForm)
	lead.HasOnlineScheduling = boolPtr(scheduling)
	lead.HasPhone = boolPtr(phone)
	lead.BeforeAfterGallery = boolPtr(gallery)
	lead.DoctorCredentialsVisible = boolPtr(credentials)
	lead.InsuranceInfoVisible = boolPtr(insurance)

	lead.ProcedureMentions = buildMentions(dedicated, mentioned)
	lead.GeneralServices = sortedKeys(general)
}

// buildMentions merges dedicated and mentioned-only detections in
// vocabulary order. A dedicated page supersedes a body mention of the
// same procedure.
func buildMentions(dedicated map[model.Procedure]string, mentioned map[model.Procedure]bool) []model.ProcedureMention {
	var out []model.ProcedureMention
	for _, proc := range model.HighTicketProcedures {
		if path, ok := dedicated[proc]; ok {
			out = append(out, model.ProcedureMention{
				Procedure: proc,
				Signal:    model.SignalDedicatedPage,
				URLPath:   path,
			})
			continue
		}
		if mentioned[proc] {
			out = append(out, model.ProcedureMention{
				Procedure: proc,
				Signal:    model.SignalMentionedOnly,
			})
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
