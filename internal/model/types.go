// Package model defines the data types exchanged between the scan agent,
// the analysis engine and the transports.
// Schema version: 1.0.0
package model

import "time"

// SchemaVersion is the version of the report document produced by pcdiag.
const SchemaVersion = "1.0.0"

// --- Report: top-level analysis output ---

// Report is the complete analysis of one scan.
type Report struct {
	ScanID          string           `json:"scan_id,omitempty"`
	SchemaVersion   string           `json:"schema_version"`
	AnalyzedAt      *time.Time       `json:"analyzed_at,omitempty"`
	Score           PerformanceScore `json:"score"`
	Bottlenecks     []Bottleneck     `json:"bottlenecks"`
	Recommendations []Recommendation `json:"recommendations"`
}

// --- Severity ---

// Severity ranks a bottleneck. The zero value is invalid on purpose so an
// unset severity never sorts as critical.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityGood     Severity = "good"
)

// Rank orders severities: critical < warning < info < good.
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	case SeverityGood:
		return 3
	default:
		return 4
	}
}

// --- Category ---

type Category string

const (
	CategoryCPU      Category = "cpu"
	CategoryGPU      Category = "gpu"
	CategoryRAM      Category = "ram"
	CategoryStorage  Category = "storage"
	CategoryThermal  Category = "thermal"
	CategorySettings Category = "settings"
)

// Difficulty is how hard a fix is for a typical user.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Bottleneck is one detected condition limiting performance.
type Bottleneck struct {
	ID            string     `json:"id"`
	Category      Category   `json:"category"`
	Severity      Severity   `json:"severity"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Impact        string     `json:"impact"`
	Fix           string     `json:"fix"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedCost string     `json:"estimated_cost"`
}

// --- Recommendations ---

// RecommendationTier is the cost class of a remediation.
type RecommendationTier string

const (
	TierFree    RecommendationTier = "free"
	TierCheap   RecommendationTier = "cheap"
	TierUpgrade RecommendationTier = "upgrade"
)

// Rank orders tiers: free < cheap < upgrade.
func (t RecommendationTier) Rank() int {
	switch t {
	case TierFree:
		return 0
	case TierCheap:
		return 1
	case TierUpgrade:
		return 2
	default:
		return 3
	}
}

// Recommendation is a single remediation action. Priority is assigned once at
// construction; lower values come first within a tier.
type Recommendation struct {
	ID            string             `json:"id"`
	Tier          RecommendationTier `json:"tier"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Impact        string             `json:"impact"`
	EstimatedCost string             `json:"estimated_cost"`
	Priority      int                `json:"priority"`
	BottleneckIDs []string           `json:"bottleneck_ids,omitempty"`
}

// --- Score ---

// Subsystem maxima. The total of all maxima is 100.
const (
	MaxCPUScore      = 25
	MaxGPUScore      = 25
	MaxRAMScore      = 20
	MaxStorageScore  = 15
	MaxSettingsScore = 15
)

type ScoreBreakdown struct {
	CPU      int `json:"cpu"`
	GPU      int `json:"gpu"`
	RAM      int `json:"ram"`
	Storage  int `json:"storage"`
	Settings int `json:"settings"`
}

// Sum returns the total of all subsystem scores.
func (b ScoreBreakdown) Sum() int {
	return b.CPU + b.GPU + b.RAM + b.Storage + b.Settings
}

// PerformanceScore is the graded composite score of a scan.
type PerformanceScore struct {
	Total            int            `json:"total"`
	Grade            string         `json:"grade"`
	GradeDescription string         `json:"grade_description"`
	Breakdown        ScoreBreakdown `json:"breakdown"`
}
