package requirements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/career-planner/internal/textkit"
)

// actionVerbs gate hard-skill labels: a statement with none of these is too
// vague to turn into a task.
var actionVerbs = map[string]bool{
	"analyze": true, "assemble": true, "build": true, "calibrate": true,
	"collaborate": true, "communicate": true, "complete": true,
	"configure": true, "coordinate": true, "deliver": true, "demonstrate": true,
	"design": true, "develop": true, "diagnose": true, "document": true,
	"estimate": true, "fabricate": true, "hold": true, "inspect": true,
	"install": true, "interpret": true, "lead": true, "maintain": true,
	"manage": true, "monitor": true, "obtain": true, "operate": true,
	"perform": true, "plan": true, "prepare": true, "read": true,
	"repair": true, "resolve": true, "review": true, "schedule": true,
	"service": true, "show": true, "supervise": true, "test": true,
	"troubleshoot": true, "use": true, "weld": true, "wire": true,
	"write": true,
}

// vagueSingleTokens are nouns that never stand alone as a requirement.
var vagueSingleTokens = map[string]bool{
	"mechanical": true, "electrical": true, "technical": true,
	"communication": true, "experience": true, "skill": true, "knowledge": true,
	"ability": true, "motivated": true, "organized": true, "reliable": true,
	"professional": true, "team": true, "detail": true, "flexible": true,
}

// namedGate maps a credential regex to its human-readable obtain phrasing.
// Evaluated in order; up to three named gates per segment.
type namedGate struct {
	pattern *regexp.Regexp
	label   string
}

var namedGates = []namedGate{
	{regexp.MustCompile(`(?i)\bred seal\b`), "Obtain Red Seal certification before applying"},
	{regexp.MustCompile(`(?i)\bwhmis\b`), "Obtain WHMIS certification before applying"},
	{regexp.MustCompile(`(?i)\b(cpr|bls|first aid)\b`), "Obtain CPR/First Aid certification before applying"},
	{regexp.MustCompile(`(?i)\bnclex(?:-rn)?\b`), "Pass the NCLEX-RN exam before applying"},
	{regexp.MustCompile(`(?i)\bclass\s*1\b|\bclass\s*a\b|\baz licen[cs]e\b`), "Obtain a Class 1/AZ driver's licence before applying"},
	{regexp.MustCompile(`(?i)\bclass\s*3\b|\bdz licen[cs]e\b`), "Obtain a Class 3/DZ driver's licence before applying"},
	{regexp.MustCompile(`(?i)\bclass\s*5\b|\bvalid driver'?s licen[cs]e\b`), "Hold a valid driver's licence before applying"},
	{regexp.MustCompile(`(?i)\bforklift (?:licen[cs]e|certifi|ticket)`), "Obtain forklift operator certification before applying"},
	{regexp.MustCompile(`(?i)\b309a\b`), "Obtain the 309A Construction and Maintenance Electrician licence before applying"},
	{regexp.MustCompile(`(?i)\b442a\b`), "Obtain the 442A Industrial Electrician licence before applying"},
	{regexp.MustCompile(`(?i)\b433a\b`), "Obtain the 433A Industrial Mechanic (Millwright) certification before applying"},
	{regexp.MustCompile(`(?i)\b306a\b`), "Obtain the 306A Plumber licence before applying"},
	{regexp.MustCompile(`(?i)\b310s\b`), "Obtain the 310S Automotive Service Technician certification before applying"},
	{regexp.MustCompile(`(?i)\bsecurity clearance\b`), "Obtain the required security clearance before applying"},
	{regexp.MustCompile(`(?i)\bp\.?eng\b|\bprofessional engineer\b`), "Obtain P.Eng registration before applying"},
	{regexp.MustCompile(`(?i)\bcpa\b`), "Obtain the CPA designation before applying"},
	{regexp.MustCompile(`(?i)\bpmp\b`), "Obtain PMP certification before applying"},
	{regexp.MustCompile(`(?i)\brpn\b|\bregistered practical nurse\b`), "Obtain RPN registration before applying"},
	{regexp.MustCompile(`(?i)\brn\b|\bregistered nurse\b`), "Obtain RN registration before applying"},
}

// genericGates fall back when no named credential matched. Ordered; the
// first hit wins.
var genericGates = []namedGate{
	{regexp.MustCompile(`(?i)licen[cs]e|licensure`), "Obtain the required licence before applying"},
	{regexp.MustCompile(`(?i)registration|registered`), "Complete the required professional registration before applying"},
	{regexp.MustCompile(`(?i)clearance|bondable`), "Obtain the required clearance before applying"},
	{regexp.MustCompile(`(?i)certifi|designation|ticket|accreditat`), "Obtain the required certification before applying"},
}

// maxNamedGatesPerSegment bounds how many named gates one segment yields.
const maxNamedGatesPerSegment = 3

// gateLabels extracts the named gate labels present in a segment, falling
// back to a single generic phrasing when nothing named matched.
func gateLabels(segment string) []string {
	var out []string
	for _, g := range namedGates {
		if g.pattern.MatchString(segment) {
			out = append(out, g.label)
			if len(out) == maxNamedGatesPerSegment {
				return out
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, g := range genericGates {
		if g.pattern.MatchString(segment) {
			return []string{g.label}
		}
	}
	return nil
}

// reYearsContext captures an explicit years-of-experience phrase together
// with its trailing context ("3+ years of electrical experience").
var reYearsContext = regexp.MustCompile(`(?i)(\d+)\s*(\+|plus)?\s*(?:-\s*\d+\s*)?years?(?:\s+of)?\s+([a-z][a-z0-9 /&-]{2,60})`)

// experienceLabel derives a task-level label for an experience signal,
// preferring the explicit years+context phrase.
func experienceLabel(segment string) string {
	if m := reYearsContext.FindStringSubmatch(segment); m != nil {
		context := strings.TrimSpace(m[3])
		context = strings.TrimSuffix(context, " experience")
		context = strings.TrimSuffix(context, " of")
		plus := ""
		if m[2] != "" {
			plus = "+"
		}
		if context != "" && !vagueSingleTokens[textkit.NormalizeKey(context)] {
			return fmt.Sprintf("Demonstrate %s%s years of %s experience", m[1], plus, context)
		}
		return fmt.Sprintf("Demonstrate %s%s years of relevant experience", m[1], plus)
	}
	switch {
	case rePortfolio.MatchString(segment):
		return "Build a portfolio of completed work to show at interviews"
	case reShipped.MatchString(segment):
		return "Show shipped or production-grade work you owned end to end"
	case reBudget.MatchString(segment):
		return "Document budget or P&L responsibility from past roles"
	case reClinical.MatchString(segment):
		return "Complete the required clinical rotation hours"
	}
	return ""
}

// softSignalLabel maps soft-signal vocabulary onto one of three task-level
// phrasings.
func softSignalLabel(segment string) string {
	lower := strings.ToLower(segment)
	switch {
	case strings.Contains(lower, "lead") || strings.Contains(lower, "mentor") || strings.Contains(lower, "supervis"):
		return "Lead or mentor others on day-to-day work"
	case strings.Contains(lower, "stakeholder") || strings.Contains(lower, "client") || strings.Contains(lower, "customer"):
		return "Communicate directly with stakeholders and clients"
	default:
		return "Collaborate and communicate clearly within a team"
	}
}

// toolLabel templates the task-level phrasing for a tool requirement.
func toolLabel(tool string) string {
	return fmt.Sprintf("Use %s in role-relevant workflows", tool)
}

// ShapeTaskLabel enforces task-level phrasing: single vague tokens are
// rejected, multi-token labels must either contain an action verb or be
// specific enough to stand on their own (three-plus informative tokens).
// Returns "" when the label cannot be shaped into a requirement.
func ShapeTaskLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}

	tokens := textkit.Tokens(trimmed)
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) == 1 {
		if vagueSingleTokens[tokens[0]] || !actionVerbs[tokens[0]] {
			return ""
		}
		return trimmed
	}

	hasVerb := false
	informative := 0
	for _, tok := range tokens {
		if actionVerbs[tok] {
			hasVerb = true
		}
		if !vagueSingleTokens[tok] && len(tok) > 2 {
			informative++
		}
	}
	if hasVerb {
		return trimmed
	}
	if len(tokens) == 2 && (vagueSingleTokens[tokens[0]] || vagueSingleTokens[tokens[1]]) {
		return ""
	}
	if informative >= 3 {
		return trimmed
	}
	return ""
}

// hardSkillLabel attempts an actionable hard-skill label from the segment
// itself. Requires an action verb; returns "" otherwise.
func hardSkillLabel(segment string) string {
	tokens := textkit.Tokens(segment)
	hasVerb := false
	for _, tok := range tokens {
		if actionVerbs[tok] {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return ""
	}

	cleaned := strings.TrimSpace(segment)
	cleaned = strings.TrimRight(cleaned, ".!?;")
	if len(cleaned) > 140 {
		cleaned = textkit.ClipRunes(cleaned, 140)
		if i := strings.LastIndex(cleaned, " "); i > 0 {
			cleaned = cleaned[:i]
		}
	}
	return ShapeTaskLabel(cleaned)
}
