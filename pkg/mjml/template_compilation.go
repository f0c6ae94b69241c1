// Package mjml exports a block document as MJML, one mj-section per render unit, and
// compiles it to responsive HTML.
package mjml

import (
	"context"
	"fmt"
	"strings"

	mjmlgo "github.com/Boostport/mjml-go"

	"github.com/Notifuse/mailblocks/pkg/blocks"
)

// CompileResult holds the generated MJML and, on success, the compiled HTML
type CompileResult struct {
	MJML  string        `json:"mjml"`
	HTML  string        `json:"html,omitempty"`
	Error *mjmlgo.Error `json:"error,omitempty"`
}

func indentPad(n int) string {
	return strings.Repeat("  ", n)
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func lineAttributes(pairs ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		sb.WriteString(" " + pairs[i] + `="` + escapeAttr(pairs[i+1]) + `"`)
	}
	return sb.String()
}

// BuildDocument renders the document as MJML. Every block is included, as in export mode.
func BuildDocument(doc *blocks.Document, opts blocks.SerializeOptions) string {
	opts.Mode = blocks.ModeExport
	width := opts.ContentWidth
	if width <= 0 {
		width = blocks.DefaultContentWidth
	}

	var sb strings.Builder
	sb.WriteString("<mjml>\n")
	sb.WriteString(indentPad(1) + "<mj-head>\n")
	if doc.Subject != "" {
		sb.WriteString(indentPad(2) + "<mj-title>" + escapeText(doc.Subject) + "</mj-title>\n")
	}
	sb.WriteString(indentPad(2) + "<mj-attributes>\n")
	sb.WriteString(indentPad(3) + `<mj-all font-family="` + escapeAttr(blocks.DefaultFontFamily) + `" />` + "\n")
	sb.WriteString(indentPad(2) + "</mj-attributes>\n")
	sb.WriteString(indentPad(1) + "</mj-head>\n")

	sb.WriteString(indentPad(1) + "<mj-body" + lineAttributes(
		"background-color", doc.DocumentBackgroundColor,
		"width", fmt.Sprintf("%dpx", width),
	) + ">\n")

	if doc.UseSections {
		for _, section := range doc.Sections {
			background := section.BackgroundColor
			if background == "" {
				background = doc.BackgroundColor
			}
			writeSection(&sb, background, fmt.Sprintf("%dpx", section.Padding), blocks.RenderUnits(section.Blocks, opts))
		}
	} else {
		for _, unit := range blocks.RenderUnits(doc.Blocks, opts) {
			writeSection(&sb, doc.BackgroundColor, "0px", []string{unit})
		}
	}

	sb.WriteString(indentPad(1) + "</mj-body>\n")
	sb.WriteString("</mjml>")
	return sb.String()
}

func writeSection(sb *strings.Builder, background, padding string, units []string) {
	sb.WriteString(indentPad(2) + "<mj-section" + lineAttributes("background-color", background, "padding", padding) + ">\n")
	sb.WriteString(indentPad(3) + "<mj-column>\n")
	for _, unit := range units {
		sb.WriteString(indentPad(4) + "<mj-raw>" + unit + "</mj-raw>\n")
	}
	sb.WriteString(indentPad(3) + "</mj-column>\n")
	sb.WriteString(indentPad(2) + "</mj-section>\n")
}

// CompileDocument builds the MJML and compiles it to HTML with mjml-go. A compilation
// failure is reported in the result together with the MJML that caused it.
func CompileDocument(ctx context.Context, doc *blocks.Document, opts blocks.SerializeOptions) (*CompileResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	source := BuildDocument(doc, opts)

	html, err := mjmlgo.ToHTML(ctx, source)
	if err != nil {
		if mjmlErr, ok := err.(*mjmlgo.Error); ok {
			return &CompileResult{MJML: source, Error: mjmlErr}, nil
		}
		return nil, fmt.Errorf("failed to compile mjml: %w", err)
	}

	return &CompileResult{MJML: source, HTML: html}, nil
}
