package requirements

import "regexp"

// Gate vocabulary: hard eligibility barriers that block role entry.
var (
	reGate = regexp.MustCompile(`(?i)\b(licen[cs]e[ds]?|licensure|certifi(?:ed|cate|cation)s?|red seal|journey(?:man|person)|apprenticeship|registration|registered with|security clearance|clearance|bondable|ticketed?|designation|accreditat(?:ed|ion))\b`)

	reYears      = regexp.MustCompile(`(?i)\b(\d+)\s*(?:\+|plus)?\s*(?:-\s*\d+\s*)?years?\b`)
	rePortfolio  = regexp.MustCompile(`(?i)\bportfolio\b`)
	reShipped    = regexp.MustCompile(`(?i)\b(shipped|launched|deployed to production|production (?:experience|environment|system)|track record)\b`)
	reBudget     = regexp.MustCompile(`(?i)\b(managed? (?:a )?budget|budget (?:of|responsibility)|p&l|profit and loss)\b`)
	reClinical   = regexp.MustCompile(`(?i)\b(clinical (?:rotation|placement|experience|hours)|preceptorship|practicum)\b`)
	reSoftSignal = regexp.MustCompile(`(?i)\b(communicat(?:e|ion|or)|interpersonal|leadership|lead(?:ing)? (?:a )?teams?|teamwork|team player|collaborat(?:e|ion|ive)|stakeholders?|mentor(?:ing|ship)?|conflict resolution|customer service orientation|presentation skills)\b`)
)

// classifyRule is one entry in the ordered classification table. The first
// rule whose match function fires decides the type.
type classifyRule struct {
	typ   Type
	match func(segment string) bool
}

// classifyRules is evaluated in fixed priority order: gate, tool,
// experience_signal, soft_signal. hard_skill is the default.
var classifyRules = []classifyRule{
	{TypeGate, func(s string) bool { return reGate.MatchString(s) }},
	{TypeTool, func(s string) bool {
		if len(findToolMentions(s)) > 0 {
			return true
		}
		_, ok := contextualToolPhrase(s)
		return ok
	}},
	{TypeExperienceSignal, func(s string) bool {
		return reYears.MatchString(s) || rePortfolio.MatchString(s) ||
			reShipped.MatchString(s) || reBudget.MatchString(s) || reClinical.MatchString(s)
	}},
	{TypeSoftSignal, func(s string) bool { return reSoftSignal.MatchString(s) }},
}

// Classify types a single text segment. Total: always returns exactly one of
// the five types, defaulting to hard_skill.
func Classify(segment string) Type {
	for _, rule := range classifyRules {
		if rule.match(segment) {
			return rule.typ
		}
	}
	return TypeHardSkill
}
