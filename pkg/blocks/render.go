package blocks

import (
	"strconv"
	"strings"
)

// renderer carries the collaborators a block renderer may need
type renderer struct {
	richText    RichText
	iconBaseURL string
}

// escapeAttributeValue escapes a value placed inside a double-quoted attribute.
// Ampersands in http(s) URLs are kept so query strings survive.
func escapeAttributeValue(value string, attributeName string) string {
	isURLAttribute := attributeName == "src" || attributeName == "href"
	looksLikeURL := strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "//")

	if !(isURLAttribute && looksLikeURL) {
		value = strings.ReplaceAll(value, "&", "&amp;")
	}
	value = strings.ReplaceAll(value, "\"", "&quot;")
	value = strings.ReplaceAll(value, "'", "&#39;")
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")
	return value
}

// escapeContent escapes text placed between tags
func escapeContent(content string) string {
	content = strings.ReplaceAll(content, "&", "&amp;")
	content = strings.ReplaceAll(content, "<", "&lt;")
	content = strings.ReplaceAll(content, ">", "&gt;")
	return content
}

// safeURL drops script-capable schemes
func safeURL(u string) string {
	trimmed := strings.ToLower(strings.TrimSpace(u))
	for _, scheme := range []string{"javascript:", "vbscript:", "data:text"} {
		if strings.HasPrefix(trimmed, scheme) {
			return "#"
		}
	}
	return u
}

func attr(name, value string) string {
	if name == "href" || name == "src" {
		value = safeURL(value)
	}
	return " " + name + `="` + escapeAttributeValue(value, name) + `"`
}

func styleAttr(d Declarations) string {
	if len(d) == 0 {
		return ""
	}
	return attr("style", d.String())
}

// open writes the root element of a block fragment
func open(tag string, b Block, style Declarations) string {
	return "<" + tag + attr("data-block-id", b.GetID()) + attr("data-block-type", string(b.GetType())) + styleAttr(style) + ">"
}

func element(tag string, style Declarations, content string) string {
	return "<" + tag + styleAttr(style) + ">" + content + "</" + tag + ">"
}

func link(href string, style Declarations, content string) string {
	return "<a" + attr("href", href) + attr("target", "_blank") + styleAttr(style) + ">" + content + "</a>"
}

func image(src, alt string, style Declarations) string {
	return "<img" + attr("src", src) + attr("alt", alt) + styleAttr(style) + " />"
}

func (r *renderer) rich(content string) string {
	return r.richText.Compile(r.richText.Sanitize(content))
}

// sizing declarations moved from a wrapper onto the element they size
var sizeProps = []string{PropWidth, PropHeight}

func (b *TitleBlock) render(r *renderer, style Declarations) string {
	level := b.Level
	if level < 1 || level > 6 {
		level = 1
	}
	tag := "h" + strconv.Itoa(level)
	heading := element(tag, Declarations{
		decl("margin", "0"),
		decl("font", "inherit"),
		decl("color", "inherit"),
	}, r.rich(b.Content))
	return open("div", b, style) + heading + "</div>"
}

func (b *TextBlock) render(r *renderer, style Declarations) string {
	return open("div", b, style) + r.rich(b.Content) + "</div>"
}

func (b *ImageBlock) render(r *renderer, style Declarations) string {
	img := image(b.Src, b.Alt, style.Only(sizeProps...).With(
		decl(PropDisplay, "block"),
		decl("max-width", "100%"),
	))
	if b.Link != "" {
		img = link(b.Link, nil, img)
	}
	return open("div", b, style.Without(sizeProps...)) + img + "</div>"
}

// buttonProps are carried by the button face rather than its wrapper
var buttonProps = []string{PropWidth, PropHeight, PropBorder, PropBorderRadius, PropBackgroundColor}

func (b *ButtonBlock) render(r *renderer, style Declarations) string {
	face := style.Only(buttonProps...).With(
		decl(PropDisplay, "inline-block"),
		decl("text-align", "center"),
		decl("text-decoration", "none"),
		decl("box-sizing", "border-box"),
	)
	if b.TextColor != "" {
		face = append(face, decl("color", b.TextColor))
	}
	if b.FontSize > 0 {
		face = append(face, decl("font-size", px(b.FontSize)))
	}
	if b.FontWeight != "" {
		face = append(face, decl("font-weight", b.FontWeight))
	}
	if h, ok := style.Get(PropHeight); ok && b.HeightUnit != UnitPercent {
		face = append(face, decl("line-height", h))
	}

	a := "<a" + attr("href", b.Href())
	if b.Target != "" {
		a += attr("target", b.Target)
	}
	if b.Tooltip != "" {
		a += attr("title", b.Tooltip)
	}
	a += styleAttr(face) + ">" + escapeContent(b.Text) + "</a>"

	return open("div", b, style.Without(buttonProps...)) + a + "</div>"
}

func (b *DividerBlock) render(r *renderer, style Declarations) string {
	thickness := int(b.Height)
	if thickness <= 0 {
		thickness = 1
	}
	color := b.Color
	if color == "" {
		color = "#e0e0e0"
	}
	line := element("div", Declarations{
		decl(PropWidth, "100%"),
		decl(PropHeight, px(thickness)),
		decl(PropBackgroundColor, color),
		decl("font-size", "0"),
		decl("line-height", "0"),
	}, "")
	return open("div", b, style.Without(PropHeight)) + line + "</div>"
}

func (b *SpacerBlock) render(r *renderer, style Declarations) string {
	return open("div", b, style) + "&nbsp;</div>"
}

func navLinks(links []NavLink, color string, fontSize int) string {
	linkStyle := Declarations{decl("text-decoration", "none")}
	if color != "" {
		linkStyle = append(linkStyle, decl("color", color))
	}
	if fontSize > 0 {
		linkStyle = append(linkStyle, decl("font-size", px(fontSize)))
	}
	var sb strings.Builder
	for i, l := range links {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(link(l.URL, linkStyle, escapeContent(l.Label)))
	}
	return sb.String()
}

func (b *HeaderBlock) render(r *renderer, style Declarations) string {
	var brand strings.Builder
	if b.Logo != "" {
		logoStyle := Declarations{decl(PropDisplay, "block")}
		if b.LogoWidth > 0 {
			logoStyle = Declarations{decl(PropWidth, px(b.LogoWidth)), decl(PropDisplay, "block")}
		}
		brand.WriteString(image(b.Logo, b.LogoAlt, logoStyle))
	}
	if b.CompanyName != "" {
		nameStyle := Declarations{decl("font-weight", "bold")}
		if b.TextColor != "" {
			nameStyle = append(nameStyle, decl("color", b.TextColor))
		}
		brand.WriteString(element("span", nameStyle, escapeContent(b.CompanyName)))
	}

	out := open("div", b, style)
	out += element("div", Declarations{decl(PropDisplay, "flex"), decl("align-items", "center"), decl("gap", "8px")}, brand.String())
	if len(b.Links) > 0 {
		out += element("nav", nil, navLinks(b.Links, b.TextColor, b.FontSize))
	}
	return out + "</div>"
}

func (b *FooterBlock) render(r *renderer, style Declarations) string {
	out := open("div", b, style)
	for _, line := range []string{b.CompanyName, b.Address, b.Copyright} {
		if line != "" {
			out += element("p", Declarations{decl("margin", "0")}, escapeContent(line))
		}
	}
	if len(b.Links) > 0 {
		out += element("p", Declarations{decl("margin", "8px 0 0 0")}, navLinks(b.Links, b.Color, b.FontSize))
	}
	return out + "</div>"
}

func (region FooterRegion) style() Declarations {
	out := region.Typography.declarations()
	out = append(out, decl("margin", "0"))
	if region.Padding > 0 {
		out = append(out, decl(PropPadding, px(region.Padding)))
	}
	return out
}

func (b *FooterWithSocialBlock) render(r *renderer, style Declarations) string {
	social := b.Social
	icons := r.socialIcons(social.Platforms, social.IconSize, social.IconShape, social.IconTheme)
	rowStyle := flexAlignment(social.Alignment).With(decl("gap", px(social.IconSpacing)))
	if social.Padding > 0 {
		rowStyle = append(rowStyle, decl(PropPadding, px(social.Padding)))
	}

	out := open("div", b, style)
	out += element("div", rowStyle, icons)
	for _, region := range []FooterRegion{b.EnterpriseName, b.Address, b.SubscriptionText} {
		if region.Text != "" {
			out += element("p", region.style(), escapeContent(region.Text))
		}
	}
	if b.Unsubscribe.Text != "" {
		linkStyle := b.Unsubscribe.Typography.declarations().With(decl("text-decoration", "underline"))
		out += element("p", b.Unsubscribe.FooterRegion.style(), link(b.Unsubscribe.URL, linkStyle, escapeContent(b.Unsubscribe.Text)))
	}
	return out + "</div>"
}

// iconURL resolves a platform icon key against the icon set of a theme
func (r *renderer) iconURL(icon string, theme IconTheme) string {
	if strings.HasPrefix(icon, "http://") || strings.HasPrefix(icon, "https://") {
		return icon
	}
	if theme == "" {
		theme = IconThemeColor
	}
	return strings.TrimSuffix(r.iconBaseURL, "/") + "/" + string(theme) + "/" + icon + ".png"
}

func iconRadius(shape IconShape, size int) string {
	switch shape {
	case IconShapeCircle:
		return "50%"
	case IconShapeRounded:
		return px(size / 4)
	default:
		return "0"
	}
}

func (r *renderer) socialIcons(platforms []SocialPlatform, size int, shape IconShape, theme IconTheme) string {
	if size <= 0 {
		size = 32
	}
	iconStyle := Declarations{
		decl(PropWidth, px(size)),
		decl(PropHeight, px(size)),
		decl(PropDisplay, "block"),
		decl(PropBorderRadius, iconRadius(shape, size)),
	}
	if theme == IconThemeOutline {
		iconStyle = append(iconStyle, decl("box-shadow", "inset 0 0 0 1px currentColor"))
	}
	var sb strings.Builder
	for _, p := range platforms {
		sb.WriteString(link(p.URL, nil, image(r.iconURL(p.Icon, theme), p.Name, iconStyle)))
	}
	return sb.String()
}

func (b *SocialBlock) render(r *renderer, style Declarations) string {
	return open("div", b, style) + r.socialIcons(b.Platforms, b.IconSize, b.IconShape, b.IconTheme) + "</div>"
}

func colorDecl(color string) Declarations {
	if color == "" {
		return nil
	}
	return Declarations{decl("color", color)}
}

func buttonLink(text, href, background, color string) string {
	face := Declarations{
		decl(PropDisplay, "inline-block"),
		decl(PropPadding, "10px 20px"),
		decl("text-decoration", "none"),
		decl(PropBorderRadius, "4px"),
	}
	if background != "" {
		face = append(face, decl(PropBackgroundColor, background))
	}
	if color != "" {
		face = append(face, decl("color", color))
	}
	return "<a" + attr("href", href) + attr("target", "_blank") + styleAttr(face) + ">" + escapeContent(text) + "</a>"
}

func (b *ProductBlock) render(r *renderer, style Declarations) string {
	imgStyle := Declarations{decl(PropDisplay, "block"), decl("max-width", "100%")}
	if b.ImagePosition == ImagePositionLeft || b.ImagePosition == ImagePositionRight {
		imgStyle = Declarations{decl(PropWidth, "40%"), decl(PropDisplay, "block")}
	}

	var body strings.Builder
	if b.Title != "" {
		body.WriteString(element("h3", colorDecl(b.TitleColor).With(decl("margin", "0 0 8px 0")), escapeContent(b.Title)))
	}
	if b.Description != "" {
		body.WriteString(element("p", colorDecl(b.TextColor).With(decl("margin", "0 0 8px 0")), escapeContent(b.Description)))
	}
	if b.Price != "" {
		body.WriteString(element("p", colorDecl(b.PriceColor).With(decl("margin", "0 0 12px 0"), decl("font-weight", "bold")), escapeContent(b.Price)))
	}
	if b.ButtonText != "" {
		body.WriteString(buttonLink(b.ButtonText, b.ButtonLink, b.ButtonColor, b.ButtonTextColor))
	}

	out := open("div", b, style)
	if b.Image != "" {
		out += image(b.Image, b.ImageAlt, imgStyle)
	}
	return out + element("div", nil, body.String()) + "</div>"
}

func (b *NavigationBlock) render(r *renderer, style Declarations) string {
	itemStyle := Declarations{decl("text-decoration", "none"), decl("color", "inherit")}
	var sb strings.Builder
	for i, item := range b.Items {
		if i > 0 && b.Separator != "" {
			sb.WriteString(element("span", nil, escapeContent(b.Separator)))
		}
		sb.WriteString(link(item.Link, itemStyle, escapeContent(item.Label)))
	}
	return open("div", b, style) + sb.String() + "</div>"
}

func segmentElements(tag string, style Declarations, items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(element(tag, style, escapeContent(item)))
	}
	return sb.String()
}

func (b *TwoColumnCardBlock) render(r *renderer, style Declarations) string {
	var sb strings.Builder
	for _, card := range b.Cards {
		cardStyle := Declarations{decl("flex", "1"), decl("overflow", "hidden")}
		if card.Padding > 0 {
			cardStyle = append(cardStyle, decl(PropPadding, px(card.Padding)))
		}
		if card.BorderRadius > 0 {
			cardStyle = append(cardStyle, decl(PropBorderRadius, px(card.BorderRadius)))
		}
		if card.BackgroundColor != "" {
			cardStyle = append(cardStyle, decl(PropBackgroundColor, card.BackgroundColor))
		}

		var inner strings.Builder
		if card.Image != "" {
			inner.WriteString(image(card.Image, card.ImageAlt, Declarations{decl(PropWidth, "100%"), decl(PropDisplay, "block")}))
		}
		inner.WriteString(segmentElements("h3", colorDecl(card.TitleColor).With(decl("margin", "8px 0")), card.TitleSegments()))
		inner.WriteString(segmentElements("p", colorDecl(card.TextColor).With(decl("margin", "0 0 8px 0")), card.DescriptionSegments()))
		if card.ButtonText != "" {
			inner.WriteString(buttonLink(card.ButtonText, card.ButtonLink, "", card.TitleColor))
		}
		sb.WriteString(element("div", cardStyle, inner.String()))
	}
	return open("div", b, style) + sb.String() + "</div>"
}

func (b *StatsBlock) render(r *renderer, style Declarations) string {
	var sb strings.Builder
	for _, stat := range b.Stats {
		statStyle := Declarations{decl("flex", "1")}
		if stat.BackgroundColor != "" {
			statStyle = append(statStyle, decl(PropBackgroundColor, stat.BackgroundColor))
		}
		valueStyle := colorDecl(stat.ValueColor).With(decl("font-weight", "bold"))
		if stat.ValueFontSize > 0 {
			valueStyle = append(valueStyle, decl("font-size", px(stat.ValueFontSize)))
		}
		labelStyle := colorDecl(stat.LabelColor)
		if stat.LabelFontSize > 0 {
			labelStyle = append(labelStyle, decl("font-size", px(stat.LabelFontSize)))
		}
		inner := segmentElements("div", valueStyle, stat.ValueSegments()) +
			segmentElements("div", labelStyle, stat.LabelSegments())
		sb.WriteString(element("div", statStyle, inner))
	}
	return open("div", b, style) + sb.String() + "</div>"
}

func (b *FeaturesBlock) render(r *renderer, style Declarations) string {
	var sb strings.Builder
	for _, feature := range b.Features {
		featureStyle := Declarations{decl("flex", "1"), decl("text-align", "center")}
		if feature.BackgroundColor != "" {
			featureStyle = append(featureStyle, decl(PropBackgroundColor, feature.BackgroundColor))
		}
		iconStyle := Declarations{decl(PropDisplay, "block")}
		if feature.IconSize > 0 {
			iconStyle = append(iconStyle, decl("font-size", px(feature.IconSize)))
		}
		inner := segmentElements("span", iconStyle, feature.IconSegments()) +
			segmentElements("h4", colorDecl(feature.TitleColor).With(decl("margin", "8px 0 4px 0")), feature.TitleSegments()) +
			segmentElements("p", colorDecl(feature.DescriptionColor).With(decl("margin", "0")), feature.DescriptionSegments())
		sb.WriteString(element("div", featureStyle, inner))
	}
	return open("div", b, style) + sb.String() + "</div>"
}

func (b *PromoBlock) render(r *renderer, style Declarations) string {
	codeStyle := Declarations{
		decl(PropDisplay, "inline-block"),
		decl(PropPadding, "6px 12px"),
		decl("font-weight", "bold"),
		decl("letter-spacing", "2px"),
	}
	if b.CodeColor != "" {
		codeStyle = append(codeStyle, decl("color", b.CodeColor))
	}
	if b.CodeBackgroundColor != "" {
		codeStyle = append(codeStyle, decl(PropBackgroundColor, b.CodeBackgroundColor))
	}
	inner := segmentElements("p", Declarations{decl("margin", "0 0 8px 0")}, b.TextSegments()) +
		segmentElements("span", codeStyle, b.CodeSegments())
	return open("div", b, style) + inner + "</div>"
}

// spacingStyle resolves a sub-element spacing override into declarations
func spacingStyle(s Spacing) Declarations {
	var out Declarations
	if p := s.ResolvedPadding(); !p.IsZero() {
		out = append(out, decl(PropPadding, formatBox(p)))
	}
	m := s.ResolvedMargin()
	out = append(out, decl(PropMargin, formatBox(m)))
	return out
}

func (c *ImageCardContent) renderBody(withImage bool) string {
	var sb strings.Builder
	if withImage && c.Image != "" {
		sb.WriteString(element("div", spacingStyle(c.SubElementSpacing(ElementImage)),
			image(c.Image, c.ImageAlt, Declarations{decl(PropWidth, "100%"), decl(PropDisplay, "block")})))
	}
	if c.Title != "" {
		sb.WriteString(element("h3", colorDecl(c.TitleColor).With(spacingStyle(c.SubElementSpacing(ElementTitle))...), escapeContent(c.Title)))
	}
	if c.Description != "" {
		sb.WriteString(element("p", colorDecl(c.TextColor).With(spacingStyle(c.SubElementSpacing(ElementDescription))...), escapeContent(c.Description)))
	}
	if c.ButtonText != "" {
		sb.WriteString(element("div", spacingStyle(c.SubElementSpacing(ElementButton)),
			buttonLink(c.ButtonText, c.ButtonLink, c.ButtonColor, c.ButtonTextColor)))
	}
	return sb.String()
}

func (b *CenteredImageCardBlock) render(r *renderer, style Declarations) string {
	return open("div", b, style) + b.renderBody(true) + "</div>"
}

func (b *SplitImageCardBlock) render(r *renderer, style Declarations) string {
	out := open("div", b, style)
	if b.Image != "" {
		imageStyle := Declarations{decl("flex", "1")}.With(spacingStyle(b.SubElementSpacing(ElementImage))...)
		out += element("div", imageStyle, image(b.Image, b.ImageAlt, Declarations{decl(PropWidth, "100%"), decl(PropDisplay, "block")}))
	}
	return out + element("div", Declarations{decl("flex", "1")}, b.renderBody(false)) + "</div>"
}

func (b *HTMLBlock) render(r *renderer, style Declarations) string {
	return open("div", b, style) + r.rich(b.Content) + "</div>"
}

func (b *VideoBlock) render(r *renderer, style Declarations) string {
	thumb := image(b.Thumbnail, b.Alt, style.Only(sizeProps...).With(
		decl(PropDisplay, "block"),
		decl("max-width", "100%"),
	))
	return open("div", b, style.Without(sizeProps...)) + link(b.VideoURL, nil, thumb) + "</div>"
}

// render fails closed: an unrecognised block contributes nothing
func (b *UnknownBlock) render(r *renderer, style Declarations) string {
	return ""
}
