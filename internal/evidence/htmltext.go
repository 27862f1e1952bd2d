package evidence

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces a pasted job posting to plain text. Plain input passes
// through untouched. Block-level elements become their own lines so that
// segment splitting downstream keeps bullet points apart.
func StripHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	doc.Find("nav, footer, header, script, style, noscript").Remove()

	const blocks = "li, p, h1, h2, h3, h4, h5, h6, td"
	var lines []string
	doc.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are covered by their outermost ancestor.
		if s.Parents().Filter(blocks).Length() > 0 {
			return
		}
		if line := strings.TrimSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}

	body := doc.Find("body").Text()
	return cleanWhitespace(body)
}

// cleanWhitespace collapses runs of blank lines and trims each line.
func cleanWhitespace(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
