package planner

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/career-planner/internal/reference"
	"github.com/jonathan/career-planner/internal/textkit"
)

// skillMatchThreshold is the confidence above which a user skill counts as
// covering an occupation skill edge.
const skillMatchThreshold = 0.72

// monthsPerMissingSkill drives the timeline estimate: each missing weighted
// skill is assumed to take this long to close.
const monthsPerMissingSkill = 2

// defaultTimelineMonths applies when the user states no timeline.
const defaultTimelineMonths = 6

// skillProfile is the per-candidate outcome of matching the user's skills
// against the occupation's weighted skill vector.
type skillProfile struct {
	overlap float64 // 0..1 weighted coverage ratio
	matched []string
	missing []string
}

// matchSkills computes the weighted coverage of the occupation's skill
// vector by the user's skills. Matched and missing lists are ordered by the
// occupation's edge weights so the heaviest gaps surface first.
func matchSkills(userSkills []string, occ *reference.Occupation) skillProfile {
	var p skillProfile
	if len(occ.Skills) == 0 {
		return p
	}

	type edge struct {
		name    string
		weight  float64
		matched bool
		conf    float64
	}
	edges := make([]edge, 0, len(occ.Skills))

	var totalWeight, coveredWeight float64
	for _, s := range occ.Skills {
		e := edge{name: s.Name, weight: s.Weight}
		for _, us := range userSkills {
			if conf := reference.SkillConfidence(us, s); conf > e.conf {
				e.conf = conf
			}
		}
		e.matched = e.conf >= skillMatchThreshold
		totalWeight += s.Weight
		if e.matched {
			coveredWeight += s.Weight * e.conf
		}
		edges = append(edges, e)
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].weight != edges[j].weight {
			return edges[i].weight > edges[j].weight
		}
		return edges[i].name < edges[j].name
	})
	for _, e := range edges {
		if e.matched {
			p.matched = append(p.matched, e.name)
		} else {
			p.missing = append(p.missing, e.name)
		}
	}
	if totalWeight > 0 {
		p.overlap = textkit.Clamp01(coveredWeight / totalWeight)
	}
	return p
}

// educationRanks maps free-text education statements onto the 0..5 ladder
// used by the reference dataset.
var educationRanks = []struct {
	pattern *regexp.Regexp
	rank    int
}{
	{regexp.MustCompile(`(?i)\b(phd|doctorate|master)`), 5},
	{regexp.MustCompile(`(?i)\b(bachelor|undergraduate degree|university degree)`), 4},
	{regexp.MustCompile(`(?i)\b(diploma|college|associate)`), 3},
	{regexp.MustCompile(`(?i)\b(apprentice|certificate|trade school)`), 2},
	{regexp.MustCompile(`(?i)\b(high school|secondary|ged)\b`), 1},
}

func educationRank(education string) int {
	for _, e := range educationRanks {
		if e.pattern.MatchString(education) {
			return e.rank
		}
	}
	return 0
}

// educationAlignment is 1.0 when the user's rank meets the requirement,
// decaying linearly per missing rank step.
func educationAlignment(userRank, requiredRank int) float64 {
	if userRank >= requiredRank {
		return 1.0
	}
	return textkit.Clamp01(1.0 - 0.25*float64(requiredRank-userRank))
}

// reCredentialEvidence detects credential signals in the user's own
// experience text and skills.
var reCredentialEvidence = regexp.MustCompile(`(?i)\b(licen[cs]ed?|certif(?:ied|icate|ication)|red seal|journey(?:man|person)|ticketed?|registered|designation|clearance)\b`)

func hasCredentialEvidence(input *Input) bool {
	if reCredentialEvidence.MatchString(input.ExperienceText) {
		return true
	}
	for _, s := range input.Skills {
		if reCredentialEvidence.MatchString(s) {
			return true
		}
	}
	return false
}

// certificationGap scores the credential factor: 1.0 when the occupation
// requires none, 0.9 when required and evidenced, 0.2 when required and not.
func certificationGap(occ *reference.Occupation, evidenced bool) float64 {
	required := occ.Regulated || occ.CredentialHint != ""
	if !required {
		return 1.0
	}
	if evidenced {
		return 0.9
	}
	return 0.2
}

// reTimelineMonths pulls a number of months or years out of a stated
// timeline like "6 months" or "2 years".
var reTimelineMonths = regexp.MustCompile(`(?i)(\d+)\s*(month|mo\b|year|yr)`)

func timelineMonths(timeline string) int {
	m := reTimelineMonths.FindStringSubmatch(timeline)
	if m == nil {
		return defaultTimelineMonths
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return defaultTimelineMonths
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "y") {
		n *= 12
	}
	return n
}

// timelineFeasibility is 1.0 when the estimated months to close the missing
// skills fit the user's timeline, decaying toward 0.2 as the estimate
// overshoots.
func timelineFeasibility(missingSkills, userMonths int) float64 {
	estimated := missingSkills * monthsPerMissingSkill
	if estimated <= userMonths {
		return 1.0
	}
	ratio := float64(userMonths) / float64(estimated)
	if ratio < 0.2 {
		return 0.2
	}
	return ratio
}

// scoreCandidate assembles the five-component breakdown for one occupation.
func scoreCandidate(input *Input, occ *reference.Occupation, proximity float64, userRank, userMonths int, evidenced bool) (Breakdown, skillProfile) {
	profile := matchSkills(input.Skills, occ)

	b := Breakdown{
		SkillOverlap:         profile.overlap * WeightSkillOverlap,
		ExperienceSimilarity: proximity * WeightExperienceSimilarity,
		EducationAlignment:   educationAlignment(userRank, occ.EducationRank) * WeightEducationAlignment,
		CertificationGap:     certificationGap(occ, evidenced) * WeightCertificationGap,
		TimelineFeasibility:  timelineFeasibility(len(profile.missing), userMonths) * WeightTimelineFeasibility,
	}
	return b, profile
}
