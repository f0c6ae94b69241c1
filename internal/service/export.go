package service

import (
	"html"
	"strings"

	"github.com/Notifuse/mailblocks/pkg/blocks"
)

// BuildStandaloneHTML wraps an export fragment in a complete HTML document
func BuildStandaloneHTML(doc *blocks.Document, fragment string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html>\n<head>\n")
	sb.WriteString(`<meta charset="utf-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	sb.WriteString("<title>" + html.EscapeString(doc.Subject) + "</title>\n")
	sb.WriteString("</head>\n")

	sb.WriteString("<body")
	if doc.DocumentBackgroundColor != "" {
		sb.WriteString(` style="margin:0;background-color:` + html.EscapeString(doc.DocumentBackgroundColor) + `;"`)
	} else {
		sb.WriteString(` style="margin:0;"`)
	}
	sb.WriteString(">\n")
	sb.WriteString(fragment)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
