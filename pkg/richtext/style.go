package richtext

import (
	"bytes"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// properties that can load code or pull content out of the block flow.
// Values referencing a URL are dropped whatever the property.
var blockedProperties = map[string]bool{
	"behavior":     true,
	"-moz-binding": true,
	"position":     true,
	"z-index":      true,
}

// StyleFilter removes dangerous declarations from inline style attributes
type StyleFilter struct {
	blocked map[string]bool
}

func NewStyleFilter() *StyleFilter {
	return &StyleFilter{blocked: blockedProperties}
}

// Filter parses a style attribute value and re-emits the declarations that are allowed
func (f *StyleFilter) Filter(style string) string {
	input := parse.NewInput(bytes.NewReader([]byte(style)))
	parser := css.NewParser(input, true)

	var kept []string
	for {
		gt, _, data := parser.Next()
		if gt == css.ErrorGrammar {
			break
		}
		if gt != css.DeclarationGrammar {
			continue
		}
		property := strings.ToLower(string(data))
		if f.blocked[property] {
			continue
		}
		value, ok := safeValue(parser.Values())
		if !ok || value == "" {
			continue
		}
		kept = append(kept, property+":"+value)
	}
	return strings.Join(kept, ";")
}

func safeValue(tokens []css.Token) (string, bool) {
	var sb strings.Builder
	for _, t := range tokens {
		switch t.TokenType {
		case css.FunctionToken:
			name := strings.ToLower(string(t.Data))
			if name == "expression(" || name == "url(" {
				return "", false
			}
		case css.URLToken, css.BadURLToken, css.BadStringToken:
			return "", false
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String()), true
}
