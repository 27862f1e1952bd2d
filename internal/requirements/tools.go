package requirements

import (
	"regexp"
	"strings"

	"github.com/jonathan/career-planner/internal/textkit"
)

// toolAliases maps the compact normalized form of every recognized alias to
// one canonical display name.
var toolAliases = map[string]string{
	"autocad":        "AutoCAD",
	"revit":          "Revit",
	"solidworks":     "SolidWorks",
	"matlab":         "MATLAB",
	"excel":          "Excel",
	"microsoftexcel": "Excel",
	"msexcel":        "Excel",
	"powerbi":        "Power BI",
	"tableau":        "Tableau",
	"sap":            "SAP",
	"salesforce":     "Salesforce",
	"quickbooks":     "QuickBooks",
	"jira":           "Jira",
	"confluence":     "Confluence",
	"figma":          "Figma",
	"photoshop":      "Photoshop",
	"illustrator":    "Illustrator",
	"python":         "Python",
	"javascript":     "JavaScript",
	"typescript":     "TypeScript",
	"java":           "Java",
	"csharp":         "C#",
	"cplusplus":      "C++",
	"golang":         "Go",
	"sql":            "SQL",
	"mysql":          "MySQL",
	"postgresql":     "PostgreSQL",
	"postgres":       "PostgreSQL",
	"mongodb":        "MongoDB",
	"react":          "React",
	"reactjs":        "React",
	"angular":        "Angular",
	"vuejs":          "Vue.js",
	"vue":            "Vue.js",
	"node":           "Node.js",
	"nodejs":         "Node.js",
	"docker":         "Docker",
	"kubernetes":     "Kubernetes",
	"k8":             "Kubernetes",
	"k8s":            "Kubernetes",
	"terraform":      "Terraform",
	"aws":            "AWS",
	"azure":          "Azure",
	"gcp":            "Google Cloud",
	"googlecloud":    "Google Cloud",
	"linux":          "Linux",
	"git":            "Git",
	"plc":            "PLC",
	"scada":          "SCADA",
	"cnc":            "CNC",
	"cad":            "CAD",
	"gis":            "GIS",
	"arcgis":         "ArcGIS",
	"epic":           "Epic",
	"meditech":       "MEDITECH",
	"cerner":         "Cerner",
	"servicenow":     "ServiceNow",
	"workday":        "Workday",
	"hubspot":        "HubSpot",
	"zendesk":        "Zendesk",
	"sharepoint":     "SharePoint",
	"primavera":      "Primavera",
	"bluebeam":       "Bluebeam",
	"procore":        "Procore",
}

// genericToolWords are phrases the contextual tool patterns must reject:
// "experience with software" names no tool.
var genericToolWords = map[string]bool{
	"software":    true,
	"system":      true,
	"tool":        true,
	"technology":  true,
	"computer":    true,
	"equipment":   true,
	"application": true,
	"program":     true,
	"platform":    true,
	"product":     true,
	"machinery":   true,
	"database":    true,
	"process":     true,
	"procedure":   true,
	"environment": true,
	"method":      true,
}

// toolSignalTokens mark a captured phrase as plausibly naming a concrete
// product even when it is not in the alias table.
var toolSignalTokens = map[string]bool{
	"suite":    true,
	"studio":   true,
	"server":   true,
	"cloud":    true,
	"erp":      true,
	"crm":      true,
	"cms":      true,
	"api":      true,
	"sdk":      true,
	"ide":      true,
	"os":       true,
	"pro":      true,
	"lab":      true,
	"deck":     true,
	"office":   true,
	"designer": true,
	"builder":  true,
}

var (
	// reToolContext captures the object of "experience with X", "proficiency
	// in X", and similar phrasings.
	reToolContext = regexp.MustCompile(`(?i)(?:experience (?:with|in|using)|proficien(?:t|cy) (?:with|in)|knowledge of|familiar(?:ity)? with|skilled (?:in|with)|working with|trained (?:on|in))\s+([A-Za-z0-9 .+#/&-]{2,60})`)

	reUppercaseAcronym = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	reStructuredChar   = regexp.MustCompile(`[0-9+#/]`)
)

// CanonicalTool maps any recognized alias to its canonical display name.
// Returns false when the phrase is not a known tool.
func CanonicalTool(phrase string) (string, bool) {
	name, ok := toolAliases[textkit.Compact(phrase)]
	return name, ok
}

// multiWordAliases are the alias keys that only appear in text as adjacent
// word pairs; they match on the compact segment form. Single-word aliases
// must match whole tokens so "excel" inside "excellent" cannot fire.
var multiWordAliases = []string{"powerbi", "googlecloud", "microsoftexcel", "msexcel"}

// findToolMentions returns the canonical names of every aliased tool that
// appears in the segment, in first-mention order.
func findToolMentions(segment string) []string {
	compactSeg := textkit.Compact(segment)

	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	// Whole-token matches, checked on both the raw normalized fields and the
	// stemmed tokens (stemming turns "kubernetes" into "kubernete").
	for _, tok := range strings.Fields(textkit.Normalize(segment)) {
		if name, ok := toolAliases[tok]; ok {
			add(name)
		}
	}
	for _, tok := range textkit.Tokens(segment) {
		if name, ok := toolAliases[tok]; ok {
			add(name)
		}
	}

	for _, alias := range multiWordAliases {
		if strings.Contains(compactSeg, alias) {
			add(toolAliases[alias])
		}
	}

	sortToolsByMention(out, compactSeg)
	return out
}

// sortToolsByMention orders canonical names by where their compact alias
// first appears in the segment, keeping extraction deterministic.
func sortToolsByMention(names []string, compactSeg string) {
	pos := func(name string) int {
		best := len(compactSeg) + 1
		for alias, canonical := range toolAliases {
			if canonical != name {
				continue
			}
			if i := strings.Index(compactSeg, alias); i >= 0 && i < best {
				best = i
			}
		}
		return best
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && pos(names[j]) < pos(names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// plausibleToolPhrase applies the structural heuristic to a captured phrase:
// at most 5 tokens, not a generic word, and carrying at least one domain
// signal (known alias, signal token, digit/+/#//, or an uppercase acronym).
func plausibleToolPhrase(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}

	tokens := textkit.Tokens(trimmed)
	if len(tokens) == 0 || len(tokens) > 5 {
		return false
	}
	if len(tokens) == 1 && genericToolWords[tokens[0]] {
		return false
	}
	allGeneric := true
	for _, tok := range tokens {
		if !genericToolWords[tok] {
			allGeneric = false
			break
		}
	}
	if allGeneric {
		return false
	}

	if _, ok := CanonicalTool(trimmed); ok {
		return true
	}
	for _, tok := range tokens {
		if toolSignalTokens[tok] {
			return true
		}
	}
	if reStructuredChar.MatchString(trimmed) {
		return true
	}
	return reUppercaseAcronym.MatchString(trimmed)
}

// contextualToolPhrase extracts the tool-like object of a contextual pattern,
// if any passes the plausibility heuristic.
func contextualToolPhrase(segment string) (string, bool) {
	for _, m := range reToolContext.FindAllStringSubmatch(segment, -1) {
		phrase := strings.TrimSpace(m[1])
		// Clip at the first clause boundary the character class let through.
		if i := strings.IndexAny(phrase, ",;:"); i >= 0 {
			phrase = strings.TrimSpace(phrase[:i])
		}
		if !plausibleToolPhrase(phrase) {
			continue
		}
		if canonical, ok := CanonicalTool(phrase); ok {
			return canonical, true
		}
		return phrase, true
	}
	return "", false
}
