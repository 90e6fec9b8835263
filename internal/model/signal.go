package model

// SignalStatus is the tri-state strength of a measured signal axis.
// Unknown means insufficient evidence, never a negative finding. It is
// a distinct value so that a missing signal can never satisfy an
// equality check against a concrete status.
type SignalStatus string

const (
	StatusStrong   SignalStatus = "Strong"
	StatusModerate SignalStatus = "Moderate"
	StatusWeak     SignalStatus = "Weak"
	StatusUnknown  SignalStatus = "Unknown"
)

// Valid reports whether s is one of the four enumerated statuses.
func (s SignalStatus) Valid() bool {
	switch s {
	case StatusStrong, StatusModerate, StatusWeak, StatusUnknown:
		return true
	}
	return false
}

// Known reports whether s carries an actual measurement.
func (s SignalStatus) Known() bool {
	return s.Valid() && s != StatusUnknown
}

// AxisName identifies one of the five diagnosis axes.
type AxisName string

const (
	AxisTrust      AxisName = "Trust"
	AxisCapture    AxisName = "Capture"
	AxisConversion AxisName = "Conversion"
	AxisDemand     AxisName = "Demand"
	AxisVisibility AxisName = "Visibility"
)

// AxisNames lists all axes in canonical order.
var AxisNames = []AxisName{AxisTrust, AxisCapture, AxisConversion, AxisDemand, AxisVisibility}

// VisibilityGap describes how contested the lead's local search
// surface already is. It is a classifier input distinct from the
// Visibility axis status.
type VisibilityGap string

const (
	GapUnderutilized VisibilityGap = "Underutilized"
	GapCompetitive   VisibilityGap = "Competitive"
	GapSaturated     VisibilityGap = "Saturated"
	GapUnknown       VisibilityGap = "Unknown"
)

// ParseVisibilityGap maps a raw upstream value onto the closed
// vocabulary. Anything else becomes Unknown and ok=false so the
// caller can attach a validation warning.
func ParseVisibilityGap(raw string) (VisibilityGap, bool) {
	switch VisibilityGap(raw) {
	case GapUnderutilized, GapCompetitive, GapSaturated:
		return VisibilityGap(raw), true
	case GapUnknown, "":
		return GapUnknown, true
	}
	return GapUnknown, false
}

// CompetitiveTier grades market crowding or map-pack competitiveness.
type CompetitiveTier string

const (
	TierLow      CompetitiveTier = "Low"
	TierModerate CompetitiveTier = "Moderate"
	TierHigh     CompetitiveTier = "High"
	TierUnknown  CompetitiveTier = "Unknown"
)

// ParseCompetitiveTier maps a raw upstream value onto the closed
// vocabulary, with the same ok semantics as ParseVisibilityGap.
func ParseCompetitiveTier(raw string) (CompetitiveTier, bool) {
	switch CompetitiveTier(raw) {
	case TierLow, TierModerate, TierHigh:
		return CompetitiveTier(raw), true
	case TierUnknown, "":
		return TierUnknown, true
	}
	return TierUnknown, false
}

// ReviewPositioning places the lead's review count relative to the
// peer-sample average.
type ReviewPositioning string

const (
	PositionAbove   ReviewPositioning = "Above"
	PositionBelow   ReviewPositioning = "Below"
	PositionInLine  ReviewPositioning = "InLine"
	PositionUnknown ReviewPositioning = "Unknown"
)

// Bottleneck is the single root constraint limiting a lead's growth.
type Bottleneck string

const (
	BottleneckDemand          Bottleneck = "demand_limited"
	BottleneckVisibility      Bottleneck = "visibility_limited"
	BottleneckConversion      Bottleneck = "conversion_limited"
	BottleneckTrust           Bottleneck = "trust_limited"
	BottleneckSaturation      Bottleneck = "saturation_limited"
	BottleneckDifferentiation Bottleneck = "differentiation_limited"
)

// Bottlenecks lists the closed six-value set.
var Bottlenecks = []Bottleneck{
	BottleneckDemand,
	BottleneckVisibility,
	BottleneckConversion,
	BottleneckTrust,
	BottleneckSaturation,
	BottleneckDifferentiation,
}

// Valid reports whether b is in the closed set.
func (b Bottleneck) Valid() bool {
	for _, known := range Bottlenecks {
		if b == known {
			return true
		}
	}
	return false
}
