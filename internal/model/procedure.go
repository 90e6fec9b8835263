package model

// Procedure is a canonical dental service name from the fixed
// detection vocabulary.
type Procedure string

// High-ticket procedures. Dedicated pages for these drive revenue
// asymmetry.
const (
	ProcedureImplants     Procedure = "dental implants"
	ProcedureInvisalign   Procedure = "invisalign"
	ProcedureVeneers      Procedure = "veneers"
	ProcedureCosmetic     Procedure = "cosmetic dentistry"
	ProcedureSedation     Procedure = "sedation"
	ProcedureEmergency    Procedure = "emergency dentist"
	ProcedureSameDayCrown Procedure = "same-day crown"
	ProcedureSleepApnea   Procedure = "sleep apnea"
	ProcedureOrthodontics Procedure = "orthodontics"
)

// HighTicketProcedures is the closed high-ticket vocabulary in
// detection-priority order.
var HighTicketProcedures = []Procedure{
	ProcedureImplants,
	ProcedureInvisalign,
	ProcedureVeneers,
	ProcedureCosmetic,
	ProcedureSedation,
	ProcedureEmergency,
	ProcedureSameDayCrown,
	ProcedureSleepApnea,
	ProcedureOrthodontics,
}

// Valid reports whether p is in the high-ticket vocabulary.
func (p Procedure) Valid() bool {
	for _, known := range HighTicketProcedures {
		if p == known {
			return true
		}
	}
	return false
}

// ProcedureSignal grades how a procedure was detected on the lead's
// website. A dedicated URL is a strong signal; appearing only in page
// copy is weak.
type ProcedureSignal string

const (
	SignalDedicatedPage ProcedureSignal = "dedicated_page"
	SignalMentionedOnly ProcedureSignal = "mentioned_only"
)

// ProcedureMention is one detected procedure with its signal strength
// and, for dedicated pages, the URL path where it was found.
type ProcedureMention struct {
	Procedure Procedure       `json:"procedure"`
	Signal    ProcedureSignal `json:"signal"`
	URLPath   string          `json:"url_path,omitempty"`
}

// RevenueDriver names the revenue category a practice concentrates on.
type RevenueDriver string

const (
	DriverImplants RevenueDriver = "implants"
	DriverCosmetic RevenueDriver = "cosmetic"
	DriverGeneral  RevenueDriver = "general"
	DriverUnknown  RevenueDriver = "unknown"
)

// AsymmetryTier is the qualitative estimate of how revenue-concentrated
// a practice's service mix is toward high-ticket procedures.
type AsymmetryTier string

const (
	AsymmetryLow      AsymmetryTier = "Low"
	AsymmetryModerate AsymmetryTier = "Moderate"
	AsymmetryHigh     AsymmetryTier = "High"
)
