package blocks

import "fmt"

// Documented defaults shared by the factory
const (
	DefaultFontFamily      = "Arial, sans-serif"
	DefaultTextColor       = "#333333"
	DefaultHeadingColor    = "#000000"
	DefaultAccentColor     = "#1a73e8"
	DefaultButtonTextColor = "#ffffff"
	DefaultBorderColor     = "#000000"
	DefaultMutedColor      = "#666666"
	DefaultSurfaceColor    = "#f5f5f5"
)

func intPtr(v int) *int {
	return &v
}

func newBase(t BlockType) BaseBlock {
	return BaseBlock{
		ID:          NewID(),
		Type:        t,
		Visibility:  VisibilityAll,
		DisplayMode: DisplayModeBlock,
		Alignment:   AlignCenter,
		Width:       100,
		WidthUnit:   UnitPercent,
		HeightUnit:  UnitPx,
		Spacing:     Spacing{Padding: 10},
		BorderColor: DefaultBorderColor,
	}
}

// NewBlock creates a fully initialised block of the given type with a fresh id
func NewBlock(t BlockType) (Block, error) {
	base := newBase(t)

	switch t {
	case BlockTypeTitle:
		return &TitleBlock{
			BaseBlock: base,
			Content:   "Your title here",
			Level:     1,
			Typography: Typography{
				FontFamily: DefaultFontFamily,
				FontSize:   32,
				FontWeight: "bold",
				Color:      DefaultHeadingColor,
				TextAlign:  AlignCenter,
				LineHeight: 1.2,
			},
		}, nil

	case BlockTypeText:
		base.Alignment = AlignLeft
		return &TextBlock{
			BaseBlock: base,
			Content:   "Start typing your text here.",
			Typography: Typography{
				FontFamily: DefaultFontFamily,
				FontSize:   16,
				FontWeight: "normal",
				Color:      DefaultTextColor,
				TextAlign:  AlignLeft,
				LineHeight: 1.5,
			},
		}, nil

	case BlockTypeImage:
		return &ImageBlock{
			BaseBlock: base,
			Src:       "https://via.placeholder.com/600x200",
			Alt:       "Image",
		}, nil

	case BlockTypeButton:
		base.Width = 200
		base.WidthUnit = UnitPx
		base.Height = 44
		base.BorderRadius = 4
		base.BackgroundColor = DefaultAccentColor
		return &ButtonBlock{
			BaseBlock:  base,
			Text:       "Click here",
			Link:       "https://example.com",
			LinkType:   LinkTypeURL,
			Target:     "_blank",
			TextColor:  DefaultButtonTextColor,
			FontSize:   16,
			FontWeight: "bold",
		}, nil

	case BlockTypeDivider:
		base.Height = 1
		base.Spacing = Spacing{Padding: 0, Margin: 0, MarginTop: intPtr(20), MarginBottom: intPtr(20)}
		return &DividerBlock{
			BaseBlock: base,
			Color:     "#e0e0e0",
		}, nil

	case BlockTypeSpacer:
		base.Height = 40
		base.Spacing = Spacing{}
		return &SpacerBlock{BaseBlock: base}, nil

	case BlockTypeHeader:
		base.Padding = 20
		base.BackgroundColor = "#ffffff"
		return &HeaderBlock{
			BaseBlock:   base,
			Logo:        "https://via.placeholder.com/120x40",
			LogoAlt:     "Logo",
			LogoWidth:   120,
			CompanyName: "Your Company",
			Links: []NavLink{
				{ID: NewID(), Label: "Home", URL: "https://example.com"},
				{ID: NewID(), Label: "Shop", URL: "https://example.com/shop"},
				{ID: NewID(), Label: "Contact", URL: "https://example.com/contact"},
			},
			TextColor: DefaultTextColor,
			FontSize:  14,
		}, nil

	case BlockTypeFooter:
		base.Padding = 20
		base.BackgroundColor = DefaultSurfaceColor
		return &FooterBlock{
			BaseBlock:   base,
			CompanyName: "Your Company",
			Address:     "123 Main Street, City, Country",
			Copyright:   "© Your Company. All rights reserved.",
			Links: []NavLink{
				{ID: NewID(), Label: "Privacy", URL: "https://example.com/privacy"},
				{ID: NewID(), Label: "Unsubscribe", URL: "https://example.com/unsubscribe"},
			},
			Typography: Typography{
				FontFamily: DefaultFontFamily,
				FontSize:   12,
				FontWeight: "normal",
				Color:      DefaultMutedColor,
				TextAlign:  AlignCenter,
				LineHeight: 1.5,
			},
		}, nil

	case BlockTypeFooterWithSocial:
		base.Padding = 20
		base.BackgroundColor = DefaultSurfaceColor
		region := func(text string, size int, weight string) FooterRegion {
			return FooterRegion{
				Text:    text,
				Padding: 4,
				Typography: Typography{
					FontFamily: DefaultFontFamily,
					FontSize:   size,
					FontWeight: weight,
					Color:      DefaultMutedColor,
					TextAlign:  AlignCenter,
					LineHeight: 1.5,
				},
			}
		}
		unsubscribe := FooterLink{FooterRegion: region("Unsubscribe", 12, "normal"), URL: "https://example.com/unsubscribe"}
		unsubscribe.Color = DefaultAccentColor
		return &FooterWithSocialBlock{
			BaseBlock: base,
			Social: SocialSettings{
				Platforms:   defaultPlatforms(),
				IconSize:    32,
				IconShape:   IconShapeCircle,
				IconTheme:   IconThemeColor,
				IconSpacing: 8,
				Alignment:   AlignCenter,
				Padding:     10,
			},
			EnterpriseName:   region("Your Company", 14, "bold"),
			Address:          region("123 Main Street, City, Country", 12, "normal"),
			SubscriptionText: region("You received this email because you subscribed to our newsletter.", 12, "normal"),
			Unsubscribe:      unsubscribe,
		}, nil

	case BlockTypeSocial:
		return &SocialBlock{
			BaseBlock:   base,
			Platforms:   defaultPlatforms(),
			IconSize:    32,
			IconShape:   IconShapeCircle,
			IconTheme:   IconThemeColor,
			IconSpacing: 8,
		}, nil

	case BlockTypeProduct:
		base.Padding = 20
		return &ProductBlock{
			BaseBlock:       base,
			Image:           "https://via.placeholder.com/300x300",
			ImageAlt:        "Product",
			Title:           "Product name",
			Description:     "A short description of the product.",
			Price:           "$49.99",
			ButtonText:      "Buy now",
			ButtonLink:      "https://example.com/product",
			ImagePosition:   ImagePositionTop,
			TitleColor:      DefaultHeadingColor,
			TextColor:       DefaultMutedColor,
			PriceColor:      DefaultAccentColor,
			ButtonColor:     DefaultAccentColor,
			ButtonTextColor: DefaultButtonTextColor,
		}, nil

	case BlockTypeNavigation:
		return &NavigationBlock{
			BaseBlock: base,
			Items: []NavItem{
				{ID: NewID(), Label: "Home", Link: "https://example.com"},
				{ID: NewID(), Label: "Products", Link: "https://example.com/products"},
				{ID: NewID(), Label: "About", Link: "https://example.com/about"},
			},
			Separator: "|",
			ItemGap:   12,
			Typography: Typography{
				FontFamily: DefaultFontFamily,
				FontSize:   14,
				FontWeight: "normal",
				Color:      DefaultAccentColor,
				TextAlign:  AlignCenter,
				LineHeight: 1.5,
			},
		}, nil

	case BlockTypeTwoColumnCard:
		card := func(title string) Card {
			return Card{
				ID:              NewID(),
				Image:           "https://via.placeholder.com/280x160",
				ImageAlt:        title,
				Title:           title,
				Description:     "Describe this card.",
				ButtonText:      "Learn more",
				ButtonLink:      "https://example.com",
				BackgroundColor: DefaultSurfaceColor,
				TitleColor:      DefaultHeadingColor,
				TextColor:       DefaultMutedColor,
				BorderRadius:    8,
				Padding:         16,
			}
		}
		return &TwoColumnCardBlock{
			BaseBlock: base,
			Cards:     []Card{card("Card one"), card("Card two")},
			Gap:       16,
		}, nil

	case BlockTypeStats:
		stat := func(value, label string) Stat {
			return Stat{
				ID:            NewID(),
				Value:         value,
				Label:         label,
				ValueColor:    DefaultAccentColor,
				LabelColor:    DefaultMutedColor,
				ValueFontSize: 32,
				LabelFontSize: 14,
			}
		}
		return &StatsBlock{
			BaseBlock: base,
			Stats:     []Stat{stat("10K+", "Customers"), stat("99%", "Satisfaction"), stat("24/7", "Support")},
			Gap:       16,
		}, nil

	case BlockTypeFeatures:
		feature := func(icon, title string) Feature {
			return Feature{
				ID:               NewID(),
				Icon:             icon,
				Title:            title,
				Description:      "Describe this feature.",
				IconSize:         40,
				TitleColor:       DefaultHeadingColor,
				DescriptionColor: DefaultMutedColor,
			}
		}
		return &FeaturesBlock{
			BaseBlock: base,
			Features:  []Feature{feature("⚡", "Fast"), feature("🔒", "Secure"), feature("💬", "Supported")},
			Gap:       16,
		}, nil

	case BlockTypePromo:
		base.Padding = 24
		base.BackgroundColor = "#fff4e5"
		base.BorderWidth = 1
		base.BorderColor = "#ffb74d"
		base.BorderRadius = 8
		return &PromoBlock{
			BaseBlock:           base,
			PromoText:           "Get 20% off your next order",
			PromoCode:           "SAVE20",
			TextColor:           DefaultTextColor,
			CodeColor:           DefaultHeadingColor,
			CodeBackgroundColor: "#ffffff",
			FontSize:            18,
		}, nil

	case BlockTypeCenteredImageCard:
		base.Padding = 20
		return &CenteredImageCardBlock{
			BaseBlock:        base,
			ImageCardContent: defaultImageCardContent(),
		}, nil

	case BlockTypeSplitImageCard:
		base.Padding = 20
		return &SplitImageCardBlock{
			BaseBlock:        base,
			ImageCardContent: defaultImageCardContent(),
			ImagePosition:    ImagePositionLeft,
		}, nil

	case BlockTypeHTML:
		return &HTMLBlock{
			BaseBlock: base,
			Content:   "<p>Custom HTML</p>",
		}, nil

	case BlockTypeVideo:
		return &VideoBlock{
			BaseBlock: base,
			VideoURL:  "https://www.youtube.com/watch?v=",
			Thumbnail: "https://via.placeholder.com/600x340",
			Alt:       "Watch the video",
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlockType, t)
	}
}

func defaultPlatforms() []SocialPlatform {
	return []SocialPlatform{
		{ID: NewID(), Name: "Facebook", URL: "https://facebook.com", Icon: "facebook"},
		{ID: NewID(), Name: "X", URL: "https://x.com", Icon: "x"},
		{ID: NewID(), Name: "Instagram", URL: "https://instagram.com", Icon: "instagram"},
		{ID: NewID(), Name: "LinkedIn", URL: "https://linkedin.com", Icon: "linkedin"},
	}
}

func defaultImageCardContent() ImageCardContent {
	return ImageCardContent{
		Image:           "https://via.placeholder.com/560x280",
		ImageAlt:        "Card image",
		Title:           "Card title",
		Description:     "Tell your readers what this is about.",
		ButtonText:      "Read more",
		ButtonLink:      "https://example.com",
		TitleColor:      DefaultHeadingColor,
		TextColor:       DefaultMutedColor,
		ButtonColor:     DefaultAccentColor,
		ButtonTextColor: DefaultButtonTextColor,
		ElementSpacing: map[string]Spacing{
			ElementImage:       {PaddingBottom: intPtr(12)},
			ElementTitle:       {PaddingBottom: intPtr(8)},
			ElementDescription: {PaddingBottom: intPtr(16)},
			ElementButton:      {},
		},
	}
}
