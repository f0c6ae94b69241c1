package blocks

import (
	"github.com/google/uuid"
)

// BlockType is the discriminator of the block tagged union
type BlockType string

const (
	BlockTypeTitle             BlockType = "title"
	BlockTypeText              BlockType = "text"
	BlockTypeImage             BlockType = "image"
	BlockTypeButton            BlockType = "button"
	BlockTypeDivider           BlockType = "divider"
	BlockTypeSpacer            BlockType = "spacer"
	BlockTypeHeader            BlockType = "header"
	BlockTypeFooter            BlockType = "footer"
	BlockTypeFooterWithSocial  BlockType = "footer-with-social"
	BlockTypeSocial            BlockType = "social"
	BlockTypeProduct           BlockType = "product"
	BlockTypeNavigation        BlockType = "navigation"
	BlockTypeTwoColumnCard     BlockType = "two-column-card"
	BlockTypeStats             BlockType = "stats"
	BlockTypeFeatures          BlockType = "features"
	BlockTypePromo             BlockType = "promo"
	BlockTypeCenteredImageCard BlockType = "centered-image-card"
	BlockTypeSplitImageCard    BlockType = "split-image-card"
	BlockTypeHTML              BlockType = "html"
	BlockTypeVideo             BlockType = "video"
)

// AllBlockTypes lists every known variant in palette order
var AllBlockTypes = []BlockType{
	BlockTypeTitle,
	BlockTypeText,
	BlockTypeImage,
	BlockTypeButton,
	BlockTypeDivider,
	BlockTypeSpacer,
	BlockTypeHeader,
	BlockTypeFooter,
	BlockTypeFooterWithSocial,
	BlockTypeSocial,
	BlockTypeProduct,
	BlockTypeNavigation,
	BlockTypeTwoColumnCard,
	BlockTypeStats,
	BlockTypeFeatures,
	BlockTypePromo,
	BlockTypeCenteredImageCard,
	BlockTypeSplitImageCard,
	BlockTypeHTML,
	BlockTypeVideo,
}

// IsKnown reports whether t names one of the supported variants
func (t BlockType) IsKnown() bool {
	for _, known := range AllBlockTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Visibility controls on which preview device a block is rendered
type Visibility string

const (
	VisibilityAll     Visibility = "all"
	VisibilityDesktop Visibility = "desktop"
	VisibilityMobile  Visibility = "mobile"
)

// DisplayMode controls participation in inline grouping
type DisplayMode string

const (
	DisplayModeBlock  DisplayMode = "block"
	DisplayModeInline DisplayMode = "inline"
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Unit is the unit of a width or height value
type Unit string

const (
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
)

// Spacing holds uniform padding/margin plus optional per-side overrides.
// A per-side value, when set, wins over the uniform value for that side only.
type Spacing struct {
	Padding       int  `json:"padding"`
	PaddingTop    *int `json:"paddingTop,omitempty"`
	PaddingRight  *int `json:"paddingRight,omitempty"`
	PaddingBottom *int `json:"paddingBottom,omitempty"`
	PaddingLeft   *int `json:"paddingLeft,omitempty"`
	Margin        int  `json:"margin"`
	MarginTop     *int `json:"marginTop,omitempty"`
	MarginRight   *int `json:"marginRight,omitempty"`
	MarginBottom  *int `json:"marginBottom,omitempty"`
	MarginLeft    *int `json:"marginLeft,omitempty"`
}

// Box is a resolved four-sided value in pixels
type Box struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// IsZero reports whether every side is zero
func (b Box) IsZero() bool {
	return b.Top == 0 && b.Right == 0 && b.Bottom == 0 && b.Left == 0
}

// ResolvedPadding resolves each side independently
func (s Spacing) ResolvedPadding() Box {
	return Box{
		Top:    sideOr(s.PaddingTop, s.Padding),
		Right:  sideOr(s.PaddingRight, s.Padding),
		Bottom: sideOr(s.PaddingBottom, s.Padding),
		Left:   sideOr(s.PaddingLeft, s.Padding),
	}
}

// ResolvedMargin resolves each side independently
func (s Spacing) ResolvedMargin() Box {
	return Box{
		Top:    sideOr(s.MarginTop, s.Margin),
		Right:  sideOr(s.MarginRight, s.Margin),
		Bottom: sideOr(s.MarginBottom, s.Margin),
		Left:   sideOr(s.MarginLeft, s.Margin),
	}
}

func sideOr(side *int, uniform int) int {
	if side != nil {
		return *side
	}
	return uniform
}

// Typography groups the text styling fields shared by text-bearing blocks and regions
type Typography struct {
	FontFamily string    `json:"fontFamily,omitempty"`
	FontSize   int       `json:"fontSize,omitempty"`
	FontWeight string    `json:"fontWeight,omitempty"`
	Color      string    `json:"color,omitempty"`
	TextAlign  Alignment `json:"textAlign,omitempty"`
	LineHeight float64   `json:"lineHeight,omitempty"`
}

// BaseBlock is the envelope every variant carries
type BaseBlock struct {
	ID          string      `json:"id"`
	Type        BlockType   `json:"type"`
	Visibility  Visibility  `json:"visibility"`
	DisplayMode DisplayMode `json:"displayMode,omitempty"`
	Alignment   Alignment   `json:"alignment,omitempty"`
	Width       float64     `json:"width,omitempty"`
	WidthUnit   Unit        `json:"widthUnit,omitempty"`
	Height      float64     `json:"height,omitempty"`
	HeightUnit  Unit        `json:"heightUnit,omitempty"`
	Spacing
	BorderWidth     int    `json:"borderWidth"`
	BorderColor     string `json:"borderColor,omitempty"`
	BorderRadius    int    `json:"borderRadius"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Block is implemented by every variant. The unexported methods make the style
// resolver and the serializer a compile-time checklist: a variant without a style
// rule or a renderer does not satisfy Block.
type Block interface {
	GetID() string
	SetID(string)
	GetType() BlockType
	GetBase() *BaseBlock
	IsInline() bool

	variantStyle() Declarations
	render(r *renderer, style Declarations) string
	regenerateNestedIDs()
}

func (b *BaseBlock) GetID() string {
	if b == nil {
		return ""
	}
	return b.ID
}

func (b *BaseBlock) SetID(id string) {
	if b != nil {
		b.ID = id
	}
}

func (b *BaseBlock) GetType() BlockType {
	if b == nil {
		return ""
	}
	return b.Type
}

func (b *BaseBlock) GetBase() *BaseBlock {
	return b
}

// IsInline reports whether the block asks to be laid out side by side with its neighbours
func (b *BaseBlock) IsInline() bool {
	return b != nil && b.DisplayMode == DisplayModeInline
}

// regenerateNestedIDs is a no-op for variants without sub-items
func (b *BaseBlock) regenerateNestedIDs() {}

// NewID returns a fresh opaque identifier
var NewID = func() string {
	return uuid.New().String()
}

// NavLink is one entry of a header link list
type NavLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// NavItem is one entry of a navigation block
type NavItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Link  string `json:"link"`
}

// SocialPlatform is one icon of a social row
type SocialPlatform struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

type IconShape string

const (
	IconShapeCircle  IconShape = "circle"
	IconShapeRounded IconShape = "rounded"
	IconShapeSquare  IconShape = "square"
)

type IconTheme string

const (
	IconThemeColor   IconTheme = "color"
	IconThemeDark    IconTheme = "dark"
	IconThemeLight   IconTheme = "light"
	IconThemeOutline IconTheme = "outline"
)

type LinkType string

const (
	LinkTypeURL   LinkType = "url"
	LinkTypeEmail LinkType = "email"
	LinkTypePhone LinkType = "phone"
	LinkTypePage  LinkType = "page"
)

// ImagePosition places the image of product and split card blocks
type ImagePosition string

const (
	ImagePositionLeft  ImagePosition = "left"
	ImagePositionRight ImagePosition = "right"
	ImagePositionTop   ImagePosition = "top"
)

type TitleBlock struct {
	BaseBlock
	Content string `json:"content"`
	Level   int    `json:"level"`
	Typography
}

type TextBlock struct {
	BaseBlock
	Content string `json:"content"`
	Typography
}

type ImageBlock struct {
	BaseBlock
	Src  string `json:"src"`
	Alt  string `json:"alt"`
	Link string `json:"link,omitempty"`
}

type ButtonBlock struct {
	BaseBlock
	Text       string   `json:"text"`
	Link       string   `json:"link"`
	LinkType   LinkType `json:"linkType"`
	Target     string   `json:"target"`
	Tooltip    string   `json:"tooltip,omitempty"`
	TextColor  string   `json:"textColor"`
	FontSize   int      `json:"fontSize"`
	FontWeight string   `json:"fontWeight"`
}

// Href returns the button link with the scheme implied by its link type
func (b *ButtonBlock) Href() string {
	switch b.LinkType {
	case LinkTypeEmail:
		return "mailto:" + b.Link
	case LinkTypePhone:
		return "tel:" + b.Link
	default:
		return b.Link
	}
}

// DividerBlock draws a horizontal rule whose thickness is the envelope height
type DividerBlock struct {
	BaseBlock
	Color string `json:"color"`
}

// SpacerBlock is vertical whitespace sized by the envelope height
type SpacerBlock struct {
	BaseBlock
}

type HeaderBlock struct {
	BaseBlock
	Logo        string    `json:"logo"`
	LogoAlt     string    `json:"logoAlt"`
	LogoWidth   int       `json:"logoWidth"`
	CompanyName string    `json:"companyName"`
	Links       []NavLink `json:"links"`
	TextColor   string    `json:"textColor"`
	FontSize    int       `json:"fontSize"`
}

func (b *HeaderBlock) regenerateNestedIDs() {
	for i := range b.Links {
		b.Links[i].ID = NewID()
	}
}

type FooterBlock struct {
	BaseBlock
	CompanyName string    `json:"companyName"`
	Address     string    `json:"address"`
	Copyright   string    `json:"copyright"`
	Links       []NavLink `json:"links"`
	Typography
}

func (b *FooterBlock) regenerateNestedIDs() {
	for i := range b.Links {
		b.Links[i].ID = NewID()
	}
}

// FooterRegion is one independently styled text region of a composite footer
type FooterRegion struct {
	Text    string `json:"text"`
	Padding int    `json:"padding"`
	Typography
}

// FooterLink is a footer region rendered as a link
type FooterLink struct {
	FooterRegion
	URL string `json:"url"`
}

// SocialSettings is the social-links sub-region of a composite footer
type SocialSettings struct {
	Platforms   []SocialPlatform `json:"platforms"`
	IconSize    int              `json:"iconSize"`
	IconShape   IconShape        `json:"iconShape"`
	IconTheme   IconTheme        `json:"iconTheme"`
	IconSpacing int              `json:"iconSpacing"`
	Alignment   Alignment        `json:"alignment"`
	Padding     int              `json:"padding"`
}

type FooterWithSocialBlock struct {
	BaseBlock
	Social           SocialSettings `json:"social"`
	EnterpriseName   FooterRegion   `json:"enterpriseName"`
	Address          FooterRegion   `json:"address"`
	SubscriptionText FooterRegion   `json:"subscriptionText"`
	Unsubscribe      FooterLink     `json:"unsubscribeLink"`
}

func (b *FooterWithSocialBlock) regenerateNestedIDs() {
	for i := range b.Social.Platforms {
		b.Social.Platforms[i].ID = NewID()
	}
}

type SocialBlock struct {
	BaseBlock
	Platforms   []SocialPlatform `json:"platforms"`
	IconSize    int              `json:"iconSize"`
	IconShape   IconShape        `json:"iconShape"`
	IconTheme   IconTheme        `json:"iconTheme"`
	IconSpacing int              `json:"iconSpacing"`
}

func (b *SocialBlock) regenerateNestedIDs() {
	for i := range b.Platforms {
		b.Platforms[i].ID = NewID()
	}
}

type ProductBlock struct {
	BaseBlock
	Image           string        `json:"image"`
	ImageAlt        string        `json:"imageAlt"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Price           string        `json:"price"`
	ButtonText      string        `json:"buttonText"`
	ButtonLink      string        `json:"buttonLink"`
	ImagePosition   ImagePosition `json:"imagePosition"`
	TitleColor      string        `json:"titleColor"`
	TextColor       string        `json:"textColor"`
	PriceColor      string        `json:"priceColor"`
	ButtonColor     string        `json:"buttonColor"`
	ButtonTextColor string        `json:"buttonTextColor"`
}

type NavigationBlock struct {
	BaseBlock
	Items     []NavItem `json:"items"`
	Separator string    `json:"separator"`
	ItemGap   int       `json:"itemGap"`
	Typography
}

func (b *NavigationBlock) regenerateNestedIDs() {
	for i := range b.Items {
		b.Items[i].ID = NewID()
	}
}

// Card is one sub-item of a two-column card block
type Card struct {
	ID              string   `json:"id"`
	Image           string   `json:"image"`
	ImageAlt        string   `json:"imageAlt"`
	Title           string   `json:"title"`
	Titles          []string `json:"titles,omitempty"`
	Description     string   `json:"description"`
	Descriptions    []string `json:"descriptions,omitempty"`
	ButtonText      string   `json:"buttonText"`
	ButtonLink      string   `json:"buttonLink"`
	BackgroundColor string   `json:"backgroundColor"`
	TitleColor      string   `json:"titleColor"`
	TextColor       string   `json:"textColor"`
	BorderRadius    int      `json:"borderRadius"`
	Padding         int      `json:"padding"`
}

// TitleSegments applies the singular-field fallback to Titles
func (c Card) TitleSegments() []string {
	return segments(c.Titles, c.Title)
}

// DescriptionSegments applies the singular-field fallback to Descriptions
func (c Card) DescriptionSegments() []string {
	return segments(c.Descriptions, c.Description)
}

type TwoColumnCardBlock struct {
	BaseBlock
	Cards []Card `json:"cards"`
	Gap   int    `json:"gap"`
}

func (b *TwoColumnCardBlock) regenerateNestedIDs() {
	for i := range b.Cards {
		b.Cards[i].ID = NewID()
	}
}

// Stat is one sub-item of a stats block
type Stat struct {
	ID              string   `json:"id"`
	Value           string   `json:"value"`
	Values          []string `json:"values,omitempty"`
	Label           string   `json:"label"`
	Labels          []string `json:"labels,omitempty"`
	ValueColor      string   `json:"valueColor"`
	LabelColor      string   `json:"labelColor"`
	ValueFontSize   int      `json:"valueFontSize"`
	LabelFontSize   int      `json:"labelFontSize"`
	BackgroundColor string   `json:"backgroundColor"`
}

func (s Stat) ValueSegments() []string {
	return segments(s.Values, s.Value)
}

func (s Stat) LabelSegments() []string {
	return segments(s.Labels, s.Label)
}

type StatsBlock struct {
	BaseBlock
	Stats []Stat `json:"stats"`
	Gap   int    `json:"gap"`
}

func (b *StatsBlock) regenerateNestedIDs() {
	for i := range b.Stats {
		b.Stats[i].ID = NewID()
	}
}

// Feature is one sub-item of a features block
type Feature struct {
	ID               string   `json:"id"`
	Icon             string   `json:"icon"`
	Icons            []string `json:"icons,omitempty"`
	Title            string   `json:"title"`
	Titles           []string `json:"titles,omitempty"`
	Description      string   `json:"description"`
	Descriptions     []string `json:"descriptions,omitempty"`
	IconSize         int      `json:"iconSize"`
	TitleColor       string   `json:"titleColor"`
	DescriptionColor string   `json:"descriptionColor"`
	BackgroundColor  string   `json:"backgroundColor"`
}

func (f Feature) IconSegments() []string {
	return segments(f.Icons, f.Icon)
}

func (f Feature) TitleSegments() []string {
	return segments(f.Titles, f.Title)
}

func (f Feature) DescriptionSegments() []string {
	return segments(f.Descriptions, f.Description)
}

type FeaturesBlock struct {
	BaseBlock
	Features []Feature `json:"features"`
	Gap      int       `json:"gap"`
}

func (b *FeaturesBlock) regenerateNestedIDs() {
	for i := range b.Features {
		b.Features[i].ID = NewID()
	}
}

type PromoBlock struct {
	BaseBlock
	PromoText           string   `json:"promoText"`
	PromoTexts          []string `json:"promoTexts,omitempty"`
	PromoCode           string   `json:"promoCode"`
	PromoCodes          []string `json:"promoCodes,omitempty"`
	TextColor           string   `json:"textColor"`
	CodeColor           string   `json:"codeColor"`
	CodeBackgroundColor string   `json:"codeBackgroundColor"`
	FontSize            int      `json:"fontSize"`
}

func (b *PromoBlock) TextSegments() []string {
	return segments(b.PromoTexts, b.PromoText)
}

func (b *PromoBlock) CodeSegments() []string {
	return segments(b.PromoCodes, b.PromoCode)
}

// Sub-element names accepted by ImageCardContent.ElementSpacing
const (
	ElementImage       = "image"
	ElementTitle       = "title"
	ElementDescription = "description"
	ElementButton      = "button"
)

// ImageCardContent is the payload shared by the centered and split image cards
type ImageCardContent struct {
	Image           string             `json:"image"`
	ImageAlt        string             `json:"imageAlt"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	ButtonText      string             `json:"buttonText"`
	ButtonLink      string             `json:"buttonLink"`
	TitleColor      string             `json:"titleColor"`
	TextColor       string             `json:"textColor"`
	ButtonColor     string             `json:"buttonColor"`
	ButtonTextColor string             `json:"buttonTextColor"`
	ElementSpacing  map[string]Spacing `json:"elementSpacing,omitempty"`
}

// SubElementSpacing returns the spacing override for one sub-element, zero when unset
func (c *ImageCardContent) SubElementSpacing(name string) Spacing {
	if c.ElementSpacing == nil {
		return Spacing{}
	}
	return c.ElementSpacing[name]
}

type CenteredImageCardBlock struct {
	BaseBlock
	ImageCardContent
}

type SplitImageCardBlock struct {
	BaseBlock
	ImageCardContent
	ImagePosition ImagePosition `json:"imagePosition"`
}

// HTMLBlock holds arbitrary markup passed through the rich-text collaborator
type HTMLBlock struct {
	BaseBlock
	Content string `json:"content"`
}

// VideoBlock renders a linked thumbnail, the email-safe stand-in for an embedded player
type VideoBlock struct {
	BaseBlock
	VideoURL  string `json:"videoUrl"`
	Thumbnail string `json:"thumbnail"`
	Alt       string `json:"alt"`
}

// UnknownBlock preserves a block whose type tag is not recognised.
// It renders to an empty fragment.
type UnknownBlock struct {
	BaseBlock
	Raw []byte `json:"-"`
}

// segments returns items when non-empty, otherwise the singular value as the sole element
func segments(items []string, single string) []string {
	if len(items) > 0 {
		return items
	}
	if single != "" {
		return []string{single}
	}
	return nil
}
