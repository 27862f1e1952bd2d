package planner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/career-planner/internal/requirements"
	"github.com/jonathan/career-planner/internal/textkit"
)

// maxSkillGaps bounds the gap list on the report.
const maxSkillGaps = 10

// maxReframes bounds the resume suggestions.
const maxReframes = 5

// skillGaps turns the merged requirement evidence into the actionable gaps
// the user does not already cover. The incoming slice is expected to be
// sorted by the aggregator, which puts gates first within a frequency tier.
func skillGaps(reqs []requirements.Aggregated, input *Input) []SkillGap {
	normExperience := textkit.Normalize(input.ExperienceText)

	var out []SkillGap
	for _, r := range reqs {
		if !requirements.Actionable(r) {
			continue
		}
		if userCovers(r, input, normExperience) {
			continue
		}
		out = append(out, SkillGap{Label: r.Label, Type: r.Type, Frequency: r.Frequency})
		if len(out) == maxSkillGaps {
			break
		}
	}
	return out
}

// userCovers reports whether the user's skills or experience text already
// evidence a requirement.
func userCovers(r requirements.Aggregated, input *Input, normExperience string) bool {
	key := textkit.Compact(r.NormalizedKey)
	if len(key) >= 4 {
		for _, s := range input.Skills {
			cs := textkit.Compact(s)
			if len(cs) < 4 {
				continue
			}
			if strings.Contains(key, cs) || strings.Contains(cs, key) {
				return true
			}
		}
	}
	if normExperience != "" && r.NormalizedKey != "" &&
		strings.Contains(normExperience, r.NormalizedKey) {
		return true
	}
	return false
}

// buildRoadmap phases the gaps: gates are always immediate, tools and hard
// skills come next, experience and soft signals close the plan. A short
// stated timeline pulls the tool work into the immediate phase.
func buildRoadmap(gaps []SkillGap, missingSkills []string, userMonths int) Roadmap {
	var r Roadmap
	compressed := userMonths <= 3

	for _, g := range gaps {
		switch g.Type {
		case requirements.TypeGate:
			r.Immediate = append(r.Immediate, g.Label)
		case requirements.TypeTool, requirements.TypeHardSkill:
			if compressed {
				r.Immediate = append(r.Immediate, g.Label)
			} else {
				r.ShortTerm = append(r.ShortTerm, g.Label)
			}
		default:
			r.MediumTerm = append(r.MediumTerm, g.Label)
		}
	}

	for i, s := range missingSkills {
		if i >= 3 {
			break
		}
		entry := fmt.Sprintf("Build working proficiency in %s", s)
		if i == 0 && !compressed {
			r.ShortTerm = append(r.ShortTerm, entry)
		} else {
			r.MediumTerm = append(r.MediumTerm, entry)
		}
	}
	return r
}

// reMetric flags quantifiable outcomes: currency, percentages, or counts.
var reMetric = regexp.MustCompile(`\$\s?\d[\d,]*|\d+(?:\.\d+)?\s?%|\b\d{2,}\b`)

// resumeReframes suggests bullet rewrites keyed to the metrics already
// present in the user's experience text.
func resumeReframes(experienceText string) []string {
	var out []string
	for _, segment := range requirements.SplitSegments(experienceText) {
		if len(out) == maxReframes {
			return out
		}
		if reMetric.MatchString(segment) {
			out = append(out, fmt.Sprintf("Lead with the measurable result: %q", segment))
		}
	}
	if len(out) == 0 && strings.TrimSpace(experienceText) != "" {
		out = append(out, "Add a quantifiable outcome (volume, budget, percentage) to each experience bullet")
	}
	return out
}

// bottleneckComponents fixes the tie-break order for the callout.
var bottleneckComponents = []struct {
	name    string
	ceiling float64
	value   func(Breakdown) float64
}{
	{"skill coverage", WeightSkillOverlap, func(b Breakdown) float64 { return b.SkillOverlap }},
	{"role experience", WeightExperienceSimilarity, func(b Breakdown) float64 { return b.ExperienceSimilarity }},
	{"education level", WeightEducationAlignment, func(b Breakdown) float64 { return b.EducationAlignment }},
	{"missing credentials", WeightCertificationGap, func(b Breakdown) float64 { return b.CertificationGap }},
	{"stated timeline", WeightTimelineFeasibility, func(b Breakdown) float64 { return b.TimelineFeasibility }},
}

// bottleneck names the weakest breakdown component relative to its ceiling.
func bottleneck(b Breakdown) string {
	worst := bottleneckComponents[0].name
	worstRatio := bottleneckComponents[0].value(b) / bottleneckComponents[0].ceiling
	for _, c := range bottleneckComponents[1:] {
		if ratio := c.value(b) / c.ceiling; ratio < worstRatio {
			worst, worstRatio = c.name, ratio
		}
	}
	return fmt.Sprintf("Biggest gap to close: %s", worst)
}

// compatibilityReasons builds the headline explanations for the top match.
func compatibilityReasons(top *RankedMatch) []string {
	var reasons []string
	switch {
	case top.Breakdown.SkillOverlap >= 0.6*WeightSkillOverlap:
		reasons = append(reasons, fmt.Sprintf("Your skills cover most of what %s requires", top.Title))
	case len(top.MatchedSkills) > 0:
		reasons = append(reasons, fmt.Sprintf("Some of your skills transfer directly to %s", top.Title))
	default:
		reasons = append(reasons, fmt.Sprintf("Few of your listed skills map onto %s yet", top.Title))
	}

	if top.Regulated || top.CredentialHint != "" {
		if top.Breakdown.CertificationGap >= 0.9*WeightCertificationGap {
			reasons = append(reasons, "You already show the credential evidence this role asks for")
		} else {
			reasons = append(reasons, "This role is credentialed; plan for licensing before applying")
		}
	}

	if top.Breakdown.TimelineFeasibility < 0.5*WeightTimelineFeasibility {
		reasons = append(reasons, "Closing the remaining gaps will likely take longer than your stated timeline")
	}
	return reasons
}
