package types

import "time"

type DeficiencyCategory string

const (
	DeficiencyLifeSafety          DeficiencyCategory = "life-safety"
	DeficiencyCriticalSystems     DeficiencyCategory = "critical-systems"
	DeficiencyEnergyEfficiency    DeficiencyCategory = "energy-efficiency"
	DeficiencyAssetLifecycle      DeficiencyCategory = "asset-lifecycle"
	DeficiencyUserExperience      DeficiencyCategory = "user-experience"
	DeficiencyEquityAccessibility DeficiencyCategory = "equity-accessibility"
	DeficiencyOther               DeficiencyCategory = "other"
)

// DeficiencyCategories lists every category in report order.
var DeficiencyCategories = []DeficiencyCategory{
	DeficiencyLifeSafety,
	DeficiencyCriticalSystems,
	DeficiencyEnergyEfficiency,
	DeficiencyAssetLifecycle,
	DeficiencyUserExperience,
	DeficiencyEquityAccessibility,
	DeficiencyOther,
}

var deficiencyTitles = map[DeficiencyCategory]string{
	DeficiencyLifeSafety:          "Life Safety & Code Compliance",
	DeficiencyCriticalSystems:     "Critical Systems & Operational Continuity",
	DeficiencyEnergyEfficiency:    "Energy Efficiency & Sustainability",
	DeficiencyAssetLifecycle:      "Asset Life Cycle & Deferred Maintenance",
	DeficiencyUserExperience:      "User Experience & Aesthetic Enhancement",
	DeficiencyEquityAccessibility: "Equity & Accessibility",
	DeficiencyOther:               "Other",
}

func (c DeficiencyCategory) Title() string {
	if t, ok := deficiencyTitles[c]; ok {
		return t
	}
	return string(c)
}

type UrgencyTier string

const (
	UrgencyImmediate UrgencyTier = "immediate"
	UrgencyShortTerm UrgencyTier = "short_term"
	UrgencyLongTerm  UrgencyTier = "long_term"
)

var UrgencyTiers = []UrgencyTier{UrgencyImmediate, UrgencyShortTerm, UrgencyLongTerm}

func (u UrgencyTier) Title() string {
	switch u {
	case UrgencyImmediate:
		return "Immediate"
	case UrgencyShortTerm:
		return "Short-term (1-3 years)"
	case UrgencyLongTerm:
		return "Long-term (3-5 years)"
	}
	return string(u)
}

type Classification string

const (
	ClassificationExcellent Classification = "Excellent"
	ClassificationGood      Classification = "Good"
	ClassificationFair      Classification = "Fair"
	ClassificationCritical  Classification = "Critical"
	ClassificationUnknown   Classification = "Unknown"
)

// ElementBreakdown is one ledger entry after costing. DeficiencyCategory and
// Urgency are nil when the entry carries no repair cost.
type ElementBreakdown struct {
	ElementID          string              `json:"elementId"`
	Code               string              `json:"code"`
	Name               string              `json:"name"`
	Category           ElementCategory     `json:"category"`
	Rating             int                 `json:"rating"`
	Severity           float64             `json:"severity"`
	ElementValue       float64             `json:"elementValue"`
	RepairCost         float64             `json:"repairCost"`
	DeficiencyCategory *DeficiencyCategory `json:"deficiencyCategory,omitempty"`
	Urgency            *UrgencyTier        `json:"urgency,omitempty"`
}

type RenderStatus string

const (
	RenderStatusRendered RenderStatus = "rendered"
	RenderStatusPending  RenderStatus = "pending_render"
)

type Report struct {
	ID               string                         `db:"id" json:"id"`
	AssessmentID     string                         `db:"assessment_id" json:"assessmentId"`
	BuildingID       string                         `db:"building_id" json:"buildingId"`
	PolicyVersion    string                         `db:"policy_version" json:"policyVersion"`
	FCI              *float64                       `db:"fci" json:"fci"`
	Classification   Classification                 `db:"classification" json:"classification"`
	ReplacementValue float64                        `db:"replacement_value" json:"replacementValue"`
	DeficiencyCost   float64                        `db:"deficiency_cost" json:"deficiencyCost"`
	TotalsByCategory map[DeficiencyCategory]float64 `db:"totals_by_category" json:"totalsByCategory"`
	TotalsByUrgency  map[UrgencyTier]float64        `db:"totals_by_urgency" json:"totalsByUrgency"`
	Breakdown        []ElementBreakdown             `db:"breakdown" json:"breakdown"`
	RenderStatus     RenderStatus                   `db:"render_status" json:"renderStatus"`
	RenderError      *string                        `db:"render_error" json:"renderError,omitempty"`
	ArtifactKey      *string                        `db:"artifact_key" json:"artifactKey,omitempty"`
	GeneratedAt      time.Time                      `db:"generated_at" json:"generatedAt"`
	CreatedAt        time.Time                      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time                      `db:"updated_at" json:"updatedAt"`
}

// ReportDocument is everything the renderer needs to lay out the artifact.
type ReportDocument struct {
	Report         *Report
	Assessment     *Assessment
	Building       *Building
	Description    string
	Recommendation string
}
