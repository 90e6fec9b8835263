package model

// Peer is one nearby same-vertical competitor from the sampling pass.
type Peer struct {
	PlaceID     string  `json:"place_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count"`
}

// LocalPositioning carries raw local-search positioning descriptors
// produced by the enrichment collaborator. Values outside the closed
// vocabularies are treated as Unknown by the normalizer, with a
// validation warning.
type LocalPositioning struct {
	ReviewCountVsMarket    string `json:"review_count_vs_market,omitempty" yaml:"review_count_vs_market"`
	RatingStrength         string `json:"rating_strength,omitempty" yaml:"rating_strength"`
	VisibilityGap          string `json:"visibility_gap,omitempty" yaml:"visibility_gap"`
	MapPackCompetitiveness string `json:"map_pack_competitiveness,omitempty" yaml:"map_pack_competitiveness"`
}

// Lead is the immutable raw signal bag for one enrichment run.
// Boolean signals are tri-state: nil means the fact was never
// measured, which downstream becomes Unknown rather than false.
type Lead struct {
	ID      string `json:"id,omitempty" yaml:"id"`
	PlaceID string `json:"place_id,omitempty" yaml:"place_id"`
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website,omitempty" yaml:"website"`

	// Website / content flags.
	HasWebsite          *bool `json:"has_website,omitempty" yaml:"has_website"`
	WebsiteAccessible   *bool `json:"website_accessible,omitempty" yaml:"website_accessible"`
	HasContactForm      *bool `json:"has_contact_form,omitempty" yaml:"has_contact_form"`
	HasOnlineScheduling *bool `json:"has_online_scheduling,omitempty" yaml:"has_online_scheduling"`
	HasPhone            *bool `json:"has_phone,omitempty" yaml:"has_phone"`

	// Trust content on the website.
	DoctorCredentialsVisible *bool `json:"doctor_credentials_visible,omitempty" yaml:"doctor_credentials_visible"`
	BeforeAfterGallery       *bool `json:"before_after_gallery,omitempty" yaml:"before_after_gallery"`
	InsuranceInfoVisible     *bool `json:"insurance_info_visible,omitempty" yaml:"insurance_info_visible"`

	// Review statistics.
	Rating            *float64 `json:"rating,omitempty" yaml:"rating"`
	ReviewCount       *int     `json:"review_count,omitempty" yaml:"review_count"`
	LastReviewDaysAgo *int     `json:"last_review_days_ago,omitempty" yaml:"last_review_days_ago"`
	UrgencyLanguage   *bool    `json:"urgency_language_in_reviews,omitempty" yaml:"urgency_language_in_reviews"`

	// Paid-ad detection.
	RunsPaidAds *bool `json:"runs_paid_ads,omitempty" yaml:"runs_paid_ads"`

	// Local search positioning descriptors.
	Positioning LocalPositioning `json:"positioning,omitempty" yaml:"positioning"`

	// Service-depth crawl results over the fixed vocabulary.
	ProcedureMentions       []ProcedureMention `json:"procedure_mentions,omitempty" yaml:"procedure_mentions"`
	GeneralServices         []string           `json:"general_services,omitempty" yaml:"general_services"`
	ReviewProcedureMentions []string           `json:"review_procedure_mentions,omitempty" yaml:"review_procedure_mentions"`
	PagesCrawled            int                `json:"pages_crawled,omitempty" yaml:"pages_crawled"`

	// Competitive peer sample, at most five records, lead excluded.
	Peers []Peer `json:"peers,omitempty" yaml:"peers"`
}

// ReviewCountOrZero returns the review count, treating a missing count
// as zero for arithmetic that needs a number.
func (l Lead) ReviewCountOrZero() int {
	if l.ReviewCount == nil {
		return 0
	}
	return *l.ReviewCount
}

// BoolSignal reads a tri-state boolean: value and whether it was
// measured at all.
func BoolSignal(p *bool) (value, known bool) {
	if p == nil {
		return false, false
	}
	return *p, true
}

// IsTrue reports whether a tri-state boolean is an affirmative
// measurement. nil and false both report false.
func IsTrue(p *bool) bool {
	return p != nil && *p
}

// IsFalse reports whether a tri-state boolean is a negative
// measurement, as opposed to merely missing.
func IsFalse(p *bool) bool {
	return p != nil && !*p
}
