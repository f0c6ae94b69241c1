package blocks

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is one CSS property/value pair
type Declaration struct {
	Property string
	Value    string
}

// Declarations is an ordered list of declarations. Order is deterministic and part of
// the serialized output.
type Declarations []Declaration

// String renders the declarations as an inline style attribute value
func (d Declarations) String() string {
	var sb strings.Builder
	for i, decl := range d {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(decl.Property)
		sb.WriteByte(':')
		sb.WriteString(decl.Value)
	}
	return sb.String()
}

// Get returns the value of the last declaration for the property
func (d Declarations) Get(property string) (string, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == property {
			return d[i].Value, true
		}
	}
	return "", false
}

// Has reports whether the property is declared
func (d Declarations) Has(property string) bool {
	_, ok := d.Get(property)
	return ok
}

// Without returns a copy without the named properties
func (d Declarations) Without(properties ...string) Declarations {
	out := make(Declarations, 0, len(d))
	for _, decl := range d {
		if !containsString(properties, decl.Property) {
			out = append(out, decl)
		}
	}
	return out
}

// Only returns a copy holding the named properties, in their original order
func (d Declarations) Only(properties ...string) Declarations {
	out := make(Declarations, 0, len(properties))
	for _, decl := range d {
		if containsString(properties, decl.Property) {
			out = append(out, decl)
		}
	}
	return out
}

// With returns a copy with extra declarations appended
func (d Declarations) With(extra ...Declaration) Declarations {
	out := make(Declarations, 0, len(d)+len(extra))
	out = append(out, d...)
	return append(out, extra...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func decl(property, value string) Declaration {
	return Declaration{Property: property, Value: value}
}

// Envelope properties, in emission order
const (
	PropWidth           = "width"
	PropHeight          = "height"
	PropPadding         = "padding"
	PropMargin          = "margin"
	PropBorder          = "border"
	PropBorderRadius    = "border-radius"
	PropBackgroundColor = "background-color"
	PropDisplay         = "display"
	PropJustifyContent  = "justify-content"
)

// ResolveStyle derives the inline declarations of a block from its envelope and its
// variant. It is total over every variant and has no side effects.
func ResolveStyle(b Block) Declarations {
	if b == nil {
		return nil
	}
	base := b.GetBase()
	var out Declarations

	if base.Width > 0 {
		out = append(out, decl(PropWidth, formatLength(base.Width, base.WidthUnit)))
	}
	if base.Height > 0 {
		out = append(out, decl(PropHeight, formatLength(base.Height, base.HeightUnit)))
	}
	if p := base.ResolvedPadding(); !p.IsZero() {
		out = append(out, decl(PropPadding, formatBox(p)))
	}
	if m := base.ResolvedMargin(); !m.IsZero() {
		out = append(out, decl(PropMargin, formatBox(m)))
	}
	if base.BorderWidth > 0 {
		color := base.BorderColor
		if color == "" {
			color = DefaultBorderColor
		}
		out = append(out, decl(PropBorder, strconv.Itoa(base.BorderWidth)+"px solid "+color))
	}
	if base.BorderRadius > 0 {
		out = append(out, decl(PropBorderRadius, px(base.BorderRadius)))
	}
	if base.BackgroundColor != "" {
		out = append(out, decl(PropBackgroundColor, base.BackgroundColor))
	}

	return append(out, b.variantStyle()...)
}

// FlexAlign maps a block alignment to its flex justification
func FlexAlign(a Alignment) string {
	switch a {
	case AlignLeft:
		return "flex-start"
	case AlignRight:
		return "flex-end"
	default:
		return "center"
	}
}

func alignmentFromFlex(v string) (Alignment, bool) {
	switch v {
	case "flex-start":
		return AlignLeft, true
	case "flex-end":
		return AlignRight, true
	case "center":
		return AlignCenter, true
	}
	return "", false
}

func flexAlignment(a Alignment) Declarations {
	return Declarations{
		decl(PropDisplay, "flex"),
		decl(PropJustifyContent, FlexAlign(a)),
	}
}

func formatLength(v float64, unit Unit) string {
	if unit == "" {
		unit = UnitPx
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + string(unit)
}

func formatBox(b Box) string {
	return px(b.Top) + " " + px(b.Right) + " " + px(b.Bottom) + " " + px(b.Left)
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}

// ApplyTo returns a copy of b whose envelope carries the values of the declarations.
// Only envelope properties are read back; variant declarations are derived from variant
// fields and left alone.
func (d Declarations) ApplyTo(b Block) Block {
	copied := Clone(b)
	if copied == nil {
		return nil
	}
	base := copied.GetBase()

	for _, dc := range d {
		property := strings.ToLower(strings.TrimSpace(dc.Property))
		applyDeclaration(base, property, declarationTokens(property, dc.Value), dc.Value)
	}
	return copied
}

// declarationTokens tokenizes a single property value with the inline style grammar
func declarationTokens(property, value string) []css.Token {
	input := parse.NewInput(bytes.NewReader([]byte(property + ":" + value)))
	parser := css.NewParser(input, true)
	for {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return nil
		case css.DeclarationGrammar:
			return parser.Values()
		}
	}
}

func significantTokens(tokens []css.Token) []css.Token {
	out := make([]css.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			out = append(out, t)
		}
	}
	return out
}

// applyDeclaration reads one declaration back into the envelope. Colors are taken from
// the verbatim value so resolving again yields the same text.
func applyDeclaration(base *BaseBlock, property string, raw []css.Token, verbatim string) {
	values := significantTokens(raw)
	if len(values) == 0 {
		return
	}
	switch property {
	case PropWidth:
		if v, unit, ok := parseLength(values[0]); ok {
			base.Width, base.WidthUnit = v, unit
		}
	case PropHeight:
		if v, unit, ok := parseLength(values[0]); ok {
			base.Height, base.HeightUnit = v, unit
		}
	case PropPadding:
		if box, ok := parseBox(values); ok {
			base.PaddingTop, base.PaddingRight = intPtr(box.Top), intPtr(box.Right)
			base.PaddingBottom, base.PaddingLeft = intPtr(box.Bottom), intPtr(box.Left)
		}
	case PropMargin:
		if box, ok := parseBox(values); ok {
			base.MarginTop, base.MarginRight = intPtr(box.Top), intPtr(box.Right)
			base.MarginBottom, base.MarginLeft = intPtr(box.Bottom), intPtr(box.Left)
		}
	case PropBorder:
		depth := 0
		for _, t := range values {
			switch t.TokenType {
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
				continue
			case css.RightParenthesisToken:
				depth--
				continue
			}
			if depth > 0 || (t.TokenType != css.DimensionToken && t.TokenType != css.NumberToken) {
				continue
			}
			if v, _, ok := parseLength(t); ok {
				base.BorderWidth = int(v)
			}
			break
		}
		if color := borderColor(verbatim); color != "" {
			base.BorderColor = color
		}
	case PropBorderRadius:
		if v, _, ok := parseLength(values[0]); ok {
			base.BorderRadius = int(v)
		}
	case PropBackgroundColor:
		base.BackgroundColor = strings.TrimSpace(verbatim)
	case PropJustifyContent:
		if a, ok := alignmentFromFlex(string(values[0].Data)); ok {
			base.Alignment = a
		}
	}
}

func isBorderStyle(s string) bool {
	switch strings.ToLower(s) {
	case "none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

// borderColor returns the border shorthand with its width and style words removed,
// keeping the color text as written
func borderColor(value string) string {
	rest := strings.TrimSpace(value)
	for rest != "" {
		word, tail := rest, ""
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			word, tail = rest[:i], rest[i:]
		}
		if !isBorderStyle(word) && !isLengthWord(word) {
			break
		}
		rest = strings.TrimSpace(tail)
	}
	for rest != "" {
		i := strings.LastIndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			break
		}
		word := rest[i+1:]
		if !isBorderStyle(word) && !isLengthWord(word) {
			break
		}
		rest = strings.TrimSpace(rest[:i])
	}
	return rest
}

func isLengthWord(s string) bool {
	tokens := significantTokens(declarationTokens("width", s))
	if len(tokens) != 1 {
		return false
	}
	_, _, ok := parseLength(tokens[0])
	return ok
}

// parseLength reads a single length token into a value and a unit
func parseLength(t css.Token) (float64, Unit, bool) {
	switch t.TokenType {
	case css.PercentageToken:
		v, err := strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		return v, UnitPercent, err == nil
	case css.DimensionToken:
		v, unit := parseDimension(string(t.Data))
		if unit != string(UnitPx) {
			return 0, "", false
		}
		return v, UnitPx, true
	case css.NumberToken:
		v, err := strconv.ParseFloat(string(t.Data), 64)
		return v, UnitPx, err == nil
	}
	return 0, "", false
}

func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	v, _ := strconv.ParseFloat(s[:numEnd], 64)
	return v, strings.ToLower(s[numEnd:])
}

// parseBox expands the one to four value shorthand
func parseBox(values []css.Token) (Box, bool) {
	sides := make([]int, 0, 4)
	for _, t := range values {
		v, _, ok := parseLength(t)
		if !ok {
			return Box{}, false
		}
		sides = append(sides, int(v))
	}
	switch len(sides) {
	case 1:
		return Box{sides[0], sides[0], sides[0], sides[0]}, true
	case 2:
		return Box{sides[0], sides[1], sides[0], sides[1]}, true
	case 3:
		return Box{sides[0], sides[1], sides[2], sides[1]}, true
	case 4:
		return Box{sides[0], sides[1], sides[2], sides[3]}, true
	}
	return Box{}, false
}
