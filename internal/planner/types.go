// Package planner is the top-level compatibility scorer. It seeds a
// candidate occupation shortlist from the reference catalog, computes a
// five-factor weighted score per candidate, filters and ranks them, and
// derives skill gaps, a phased roadmap, and resume reframes from the merged
// requirement evidence.
package planner

import (
	"math"

	"github.com/jonathan/career-planner/internal/requirements"
	"github.com/jonathan/career-planner/internal/store"
)

// Component ceilings. The five weights always sum to 100, which is what
// makes the integer score a percentage.
const (
	WeightSkillOverlap         = 40.0
	WeightExperienceSimilarity = 25.0
	WeightEducationAlignment   = 10.0
	WeightCertificationGap     = 15.0
	WeightTimelineFeasibility  = 10.0
)

// Relevance floors. Tuned heuristically; kept as named constants rather
// than derived values.
const (
	MinScore = 32

	targetedProximityFloor  = 0.16
	targetedOverlapFloor    = 0.08
	discoveryProximityFloor = 0.11
	discoveryOverlapFloor   = 0.06

	maxShortlist   = 300
	maxSuggestions = 6

	seedTargetShare  = 0.65
	seedCurrentShare = 0.35
)

// Score bands.
const (
	BandStrong   = "strong"
	BandModerate = "moderate"
	BandWeak     = "weak"
)

// Band buckets an integer score.
func Band(score int) string {
	switch {
	case score >= 75:
		return BandStrong
	case score >= 50:
		return BandModerate
	default:
		return BandWeak
	}
}

// Input is the analysis request contract.
type Input struct {
	CurrentRole       string   `json:"currentRole" validate:"required,min=2"`
	TargetRole        string   `json:"targetRole" validate:"required_without=NotSureMode"`
	NotSureMode       bool     `json:"notSureMode"`
	Skills            []string `json:"skills"`
	ExperienceText    string   `json:"experienceText"`
	Location          string   `json:"location"`
	Timeline          string   `json:"timeline"`
	Education         string   `json:"education"`
	UserPostingText   string   `json:"userPostingText"`
	UseMarketEvidence bool     `json:"useMarketEvidence"`
}

// Breakdown holds the five scoring components, each already scaled to its
// ceiling.
type Breakdown struct {
	SkillOverlap         float64 `json:"skill_overlap"`
	ExperienceSimilarity float64 `json:"experience_similarity"`
	EducationAlignment   float64 `json:"education_alignment"`
	CertificationGap     float64 `json:"certification_gap"`
	TimelineFeasibility  float64 `json:"timeline_feasibility"`
}

// Total sums the components into the integer score.
func (b Breakdown) Total() int {
	return int(math.Round(b.SkillOverlap + b.ExperienceSimilarity +
		b.EducationAlignment + b.CertificationGap + b.TimelineFeasibility))
}

// RankedMatch is one scored occupation candidate.
type RankedMatch struct {
	OccupationID   string                     `json:"occupationId"`
	Title          string                     `json:"title"`
	Score          int                        `json:"score"`
	Band           string                     `json:"band"`
	Breakdown      Breakdown                  `json:"breakdown"`
	RoleProximity  float64                    `json:"roleProximity"`
	SkillOverlap   float64                    `json:"skillOverlapRatio"`
	MatchedSkills  []string                   `json:"matchedSkills"`
	MissingSkills  []string                   `json:"missingSkills"`
	Regulated      bool                       `json:"regulated"`
	CredentialHint string                     `json:"credentialHint,omitempty"`
	OfficialURL    string                     `json:"officialUrl,omitempty"`
	Wage           *store.WageRow             `json:"wage,omitempty"`
	Trade          *store.TradeRequirementRow `json:"tradeRequirement,omitempty"`
}

// SkillGap is one actionable missing requirement for the top candidate.
type SkillGap struct {
	Label     string            `json:"label"`
	Type      requirements.Type `json:"type"`
	Frequency int               `json:"frequency"`
}

// Roadmap phases missing requirements over the user's stated timeline.
type Roadmap struct {
	Immediate  []string `json:"immediate"`
	ShortTerm  []string `json:"shortTerm"`
	MediumTerm []string `json:"mediumTerm"`
}

// MarketEvidence is the transparency block echoed from the orchestrator.
type MarketEvidence struct {
	UsedAdzuna    bool `json:"usedAdzuna"`
	UsedCache     bool `json:"usedCache"`
	BaselineOnly  bool `json:"baselineOnly"`
	Partial       bool `json:"partial"`
	PostingsCount int  `json:"postingsCount"`
}

// Compatibility is the headline snapshot for the top candidate.
type Compatibility struct {
	Score   int      `json:"score"`
	Band    string   `json:"band"`
	Reasons []string `json:"reasons"`
}

// Report is the structured analysis body.
type Report struct {
	Compatibility      Compatibility             `json:"compatibility"`
	SuggestedCareers   []RankedMatch             `json:"suggestedCareers"`
	SkillGaps          []SkillGap                `json:"skillGaps"`
	Roadmap            Roadmap                   `json:"roadmap"`
	ResumeReframes     []string                  `json:"resumeReframes"`
	TargetRequirements []requirements.Aggregated `json:"targetRequirements"`
	MarketEvidence     MarketEvidence            `json:"marketEvidence"`
	Bottleneck         string                    `json:"bottleneck"`
	DataSources        []string                  `json:"dataSources"`
}

// LegacyRoadmap keeps the original 30/60/90-day keys.
type LegacyRoadmap struct {
	Day30 []string `json:"30"`
	Day60 []string `json:"60"`
	Day90 []string `json:"90"`
}

// Legacy is the backward-compatible summary block.
type Legacy struct {
	Score              int           `json:"score"`
	Explanation        string        `json:"explanation"`
	TransferableSkills []string      `json:"transferableSkills"`
	SkillGaps          []string      `json:"skillGaps"`
	Roadmap            LegacyRoadmap `json:"roadmap"`
	ResumeReframes     []string      `json:"resumeReframes"`
	RecommendedRoles   []string      `json:"recommendedRoles"`
}

// Snapshot exposes the winning breakdown for downstream consumers.
type Snapshot struct {
	TotalScore      int       `json:"total_score"`
	Breakdown       Breakdown `json:"breakdown"`
	TopOccupationID string    `json:"top_occupation_id"`
}

// Analysis is the full scorer output.
type Analysis struct {
	Report          Report   `json:"report"`
	Legacy          Legacy   `json:"legacy"`
	ScoringSnapshot Snapshot `json:"scoringSnapshot"`
}
