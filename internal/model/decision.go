package model

import "time"

// AxisResult is one evaluated diagnosis axis.
type AxisResult struct {
	Status     SignalStatus `json:"status"`
	Evidence   []string     `json:"evidence"`
	Confidence float64      `json:"confidence"`
}

// ServiceIntelligence summarizes what the service-depth crawl found on
// the lead's website.
type ServiceIntelligence struct {
	HighTicketProcedures  []ProcedureMention `json:"high_ticket_procedures_detected"`
	GeneralServices       []string           `json:"general_services_detected"`
	MissingHighValuePages []Procedure        `json:"missing_high_value_pages"`
	ProcedureConfidence   float64            `json:"procedure_confidence"`
}

// CompetitiveSnapshot positions the lead against its peer sample.
type CompetitiveSnapshot struct {
	DentistsSampled    int               `json:"dentists_sampled"`
	AvgReviewCount     float64           `json:"avg_review_count"`
	AvgRating          float64           `json:"avg_rating"`
	LeadReviewCount    int               `json:"lead_review_count"`
	ReviewPositioning  ReviewPositioning `json:"review_positioning"`
	MarketDensityScore CompetitiveTier   `json:"market_density_score"`
	Confidence         float64           `json:"confidence"`
}

// RevenueLeverageAnalysis estimates where the practice's revenue
// concentration and growth leverage sit.
type RevenueLeverageAnalysis struct {
	PrimaryRevenueDriver        RevenueDriver `json:"primary_revenue_driver_detected"`
	EstimatedRevenueAsymmetry   AsymmetryTier `json:"estimated_revenue_asymmetry"`
	HighestLeverageGrowthVector string        `json:"highest_leverage_growth_vector"`
	Confidence                  float64       `json:"confidence"`
}

// RootBottleneckClassification is the single root-cause label with its
// supporting narrative.
type RootBottleneckClassification struct {
	Bottleneck      Bottleneck `json:"bottleneck"`
	WhyRootCause    string     `json:"why_root_cause"`
	Evidence        []string   `json:"evidence"`
	WhatWouldChange string     `json:"what_would_change"`
	Confidence      float64    `json:"confidence"`
}

// SEOLeverAssessment states whether SEO is the best first growth lever
// given the bottleneck.
type SEOLeverAssessment struct {
	IsPrimaryGrowthLever    bool    `json:"is_primary_growth_lever"`
	Confidence              float64 `json:"confidence"`
	Reasoning               string  `json:"reasoning"`
	AlternativePrimaryLever string  `json:"alternative_primary_lever"`
}

// InterventionCategory tags a plan entry with the axis it works on.
type InterventionCategory string

const (
	CategoryDemand     InterventionCategory = "Demand"
	CategoryCapture    InterventionCategory = "Capture"
	CategoryConversion InterventionCategory = "Conversion"
	CategoryTrust      InterventionCategory = "Trust"
)

// InterventionItem is one entry of the ordered intervention plan.
type InterventionItem struct {
	Priority          int                  `json:"priority"`
	Action            string               `json:"action"`
	Category          InterventionCategory `json:"category"`
	ExpectedImpact    string               `json:"expected_impact"`
	TimeToSignalDays  int                  `json:"time_to_signal_days"`
	Confidence        float64              `json:"confidence"`
	WhyNotSecondaries string               `json:"why_not_secondaries_yet,omitempty"`
}

// SalesAnchor is the single issue the sales conversation opens with.
type SalesAnchor struct {
	Issue                string  `json:"issue"`
	WhyThisFirst         string  `json:"why_this_first"`
	WhatHappensIfIgnored string  `json:"what_happens_if_ignored"`
	Confidence           float64 `json:"confidence"`
}

// DeRiskingQuestion maps one discovery question to the uncertainty it
// resolves.
type DeRiskingQuestion struct {
	Question          string `json:"question"`
	TiesToUncertainty string `json:"ties_to_uncertainty"`
}

// ObjectiveDecision is the complete diagnosis record for one lead and
// one enrichment run. It is immutable once produced; a later run for
// the same lead yields a new, independent record.
type ObjectiveDecision struct {
	RootBottleneck      RootBottleneckClassification `json:"root_bottleneck_classification"`
	SEOLever            SEOLeverAssessment           `json:"seo_lever_assessment"`
	Axes                map[AxisName]AxisResult      `json:"axes"`
	ServiceIntelligence ServiceIntelligence          `json:"service_intelligence"`
	CompetitiveSnapshot CompetitiveSnapshot          `json:"competitive_snapshot"`
	RevenueLeverage     RevenueLeverageAnalysis      `json:"revenue_leverage_analysis"`
	SalesValueScore     int                          `json:"seo_sales_value_score"`
	ComparativeContext  string                       `json:"comparative_context"`
	PrimarySalesAnchor  SalesAnchor                  `json:"primary_sales_anchor"`
	InterventionPlan    []InterventionItem           `json:"intervention_plan"`
	DeRiskingQuestions  []DeRiskingQuestion          `json:"de_risking_questions"`
	ValidationWarnings  []string                     `json:"validation_warnings"`
}

// RunStatus represents the current state of a diagnosis run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one stored diagnosis run for a lead. Latest run wins at the
// export layer; the decision core never sees this type.
type Run struct {
	ID        string             `json:"id"`
	Lead      Lead               `json:"lead"`
	Status    RunStatus          `json:"status"`
	Decision  *ObjectiveDecision `json:"decision,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
