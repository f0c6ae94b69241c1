package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// elements removed together with their content
var disallowedElements = []string{
	"script", "style", "iframe", "frame", "frameset", "object", "embed", "applet",
	"form", "input", "button", "textarea", "select", "option",
	"link", "meta", "base", "svg", "math", "template", "noscript",
}

// attributes holding a URL
var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"background": true,
	"poster":     true,
	"xlink:href": true,
}

// Sanitizer strips markup that can run script or escape the block it is placed in
type Sanitizer struct {
	styles *StyleFilter
}

// NewSanitizer creates a sanitizer with the default inline style filter
func NewSanitizer() *Sanitizer {
	return &Sanitizer{styles: NewStyleFilter()}
}

// Sanitize returns a cleaned fragment. Content that cannot be parsed is escaped as text.
func (s *Sanitizer) Sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return escapeText(raw)
	}

	doc.Find(strings.Join(disallowedElements, ", ")).Remove()

	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		kept := node.Attr[:0]
		for _, a := range node.Attr {
			name := strings.ToLower(a.Key)
			switch {
			case strings.HasPrefix(name, "on"):
				continue
			case urlAttributes[name] && !isSafeURL(a.Val):
				continue
			case name == "style":
				filtered := s.styles.Filter(a.Val)
				if filtered == "" {
					continue
				}
				a.Val = filtered
			case name == "srcdoc":
				continue
			}
			kept = append(kept, a)
		}
		node.Attr = kept
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return escapeText(raw)
	}
	return out
}

// isSafeURL rejects script-capable schemes. Inline images are the only data: URLs kept.
func isSafeURL(u string) bool {
	normalized := strings.ToLower(strings.Join(strings.Fields(u), ""))
	switch {
	case strings.HasPrefix(normalized, "javascript:"),
		strings.HasPrefix(normalized, "vbscript:"):
		return false
	case strings.HasPrefix(normalized, "data:"):
		return strings.HasPrefix(normalized, "data:image/") && !strings.HasPrefix(normalized, "data:image/svg")
	}
	return true
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
