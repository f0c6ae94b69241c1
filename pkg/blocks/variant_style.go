package blocks

import "strconv"

// Typography declarations, omitted field by field when unset
func (t Typography) declarations() Declarations {
	var out Declarations
	if t.FontFamily != "" {
		out = append(out, decl("font-family", t.FontFamily))
	}
	if t.FontSize > 0 {
		out = append(out, decl("font-size", px(t.FontSize)))
	}
	if t.FontWeight != "" {
		out = append(out, decl("font-weight", t.FontWeight))
	}
	if t.Color != "" {
		out = append(out, decl("color", t.Color))
	}
	if t.TextAlign != "" {
		out = append(out, decl("text-align", string(t.TextAlign)))
	}
	if t.LineHeight > 0 {
		out = append(out, decl("line-height", strconv.FormatFloat(t.LineHeight, 'f', -1, 64)))
	}
	return out
}

func (b *TitleBlock) variantStyle() Declarations {
	return b.Typography.declarations()
}

func (b *TextBlock) variantStyle() Declarations {
	return b.Typography.declarations()
}

func (b *ImageBlock) variantStyle() Declarations {
	return flexAlignment(b.Alignment)
}

func (b *ButtonBlock) variantStyle() Declarations {
	return flexAlignment(b.Alignment)
}

func (b *DividerBlock) variantStyle() Declarations {
	return nil
}

func (b *SpacerBlock) variantStyle() Declarations {
	return Declarations{decl("font-size", "0"), decl("line-height", "0")}
}

func (b *HeaderBlock) variantStyle() Declarations {
	return Declarations{
		decl(PropDisplay, "flex"),
		decl(PropJustifyContent, "space-between"),
		decl("align-items", "center"),
	}
}

func (b *FooterBlock) variantStyle() Declarations {
	return b.Typography.declarations()
}

func (b *FooterWithSocialBlock) variantStyle() Declarations {
	return Declarations{decl("text-align", "center")}
}

func (b *SocialBlock) variantStyle() Declarations {
	return flexAlignment(b.Alignment).With(decl("gap", px(b.IconSpacing)))
}

func (b *ProductBlock) variantStyle() Declarations {
	out := Declarations{decl(PropDisplay, "flex"), decl("gap", "16px")}
	switch b.ImagePosition {
	case ImagePositionLeft:
		return out.With(
			decl("flex-direction", "row"),
			decl(PropJustifyContent, FlexAlign(b.Alignment)),
			decl("align-items", "center"),
		)
	case ImagePositionRight:
		return out.With(
			decl("flex-direction", "row-reverse"),
			decl(PropJustifyContent, FlexAlign(b.Alignment)),
			decl("align-items", "center"),
		)
	default:
		return out.With(
			decl("flex-direction", "column"),
			decl("align-items", FlexAlign(b.Alignment)),
		)
	}
}

func (b *NavigationBlock) variantStyle() Declarations {
	out := flexAlignment(b.Alignment).With(
		decl("flex-wrap", "wrap"),
		decl("gap", px(b.ItemGap)),
	)
	return append(out, b.Typography.declarations()...)
}

func (b *TwoColumnCardBlock) variantStyle() Declarations {
	return Declarations{decl(PropDisplay, "flex"), decl("gap", px(b.Gap))}
}

func (b *StatsBlock) variantStyle() Declarations {
	return Declarations{decl(PropDisplay, "flex"), decl("gap", px(b.Gap)), decl("text-align", "center")}
}

func (b *FeaturesBlock) variantStyle() Declarations {
	return Declarations{decl(PropDisplay, "flex"), decl("flex-wrap", "wrap"), decl("gap", px(b.Gap))}
}

func (b *PromoBlock) variantStyle() Declarations {
	out := Declarations{decl("text-align", "center")}
	if b.TextColor != "" {
		out = append(out, decl("color", b.TextColor))
	}
	if b.FontSize > 0 {
		out = append(out, decl("font-size", px(b.FontSize)))
	}
	return out
}

func (b *CenteredImageCardBlock) variantStyle() Declarations {
	return Declarations{decl("text-align", "center")}
}

func (b *SplitImageCardBlock) variantStyle() Declarations {
	direction := "row"
	if b.ImagePosition == ImagePositionRight {
		direction = "row-reverse"
	}
	return Declarations{
		decl(PropDisplay, "flex"),
		decl("flex-direction", direction),
		decl("align-items", "center"),
		decl("gap", "20px"),
	}
}

func (b *HTMLBlock) variantStyle() Declarations {
	return nil
}

func (b *VideoBlock) variantStyle() Declarations {
	return flexAlignment(b.Alignment)
}

func (b *UnknownBlock) variantStyle() Declarations {
	return nil
}
