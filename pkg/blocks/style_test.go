package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStyle_Envelope(t *testing.T) {
	b := textBlock("a")
	b.Width = 50
	b.WidthUnit = UnitPercent
	b.Height = 120
	b.HeightUnit = UnitPx
	b.Padding = 10
	b.PaddingTop = intPtr(4)
	b.PaddingLeft = intPtr(0)
	b.Margin = 8
	b.BorderWidth = 2
	b.BorderColor = "#cccccc"
	b.BorderRadius = 6
	b.BackgroundColor = "#fafafa"

	style := ResolveStyle(b)
	assert.Equal(t, Declarations{
		{PropWidth, "50%"},
		{PropHeight, "120px"},
		{PropPadding, "4px 10px 10px 0px"},
		{PropMargin, "8px 8px 8px 8px"},
		{PropBorder, "2px solid #cccccc"},
		{PropBorderRadius, "6px"},
		{PropBackgroundColor, "#fafafa"},
	}, style)
}

func TestResolveStyle_PerSideFallsBackPerSide(t *testing.T) {
	s := Spacing{Padding: 12, PaddingTop: intPtr(1), PaddingLeft: intPtr(3)}
	assert.Equal(t, Box{Top: 1, Right: 12, Bottom: 12, Left: 3}, s.ResolvedPadding())

	m := Spacing{MarginBottom: intPtr(20)}
	assert.Equal(t, Box{Bottom: 20}, m.ResolvedMargin())
}

func TestResolveStyle_BorderOmitted(t *testing.T) {
	b := textBlock("a")
	b.BorderColor = "#ff0000"
	style := ResolveStyle(b)
	assert.False(t, style.Has(PropBorder))

	b.BorderWidth = 1
	b.BorderColor = ""
	v, ok := ResolveStyle(b).Get(PropBorder)
	require.True(t, ok)
	assert.Equal(t, "1px solid #000000", v)
}

func TestResolveStyle_ZeroSpacingOmitted(t *testing.T) {
	style := ResolveStyle(textBlock("a"))
	assert.False(t, style.Has(PropPadding))
	assert.False(t, style.Has(PropMargin))
}

func TestFlexAlign(t *testing.T) {
	assert.Equal(t, "flex-start", FlexAlign(AlignLeft))
	assert.Equal(t, "flex-end", FlexAlign(AlignRight))
	assert.Equal(t, "center", FlexAlign(AlignCenter))

	for _, bt := range []BlockType{BlockTypeImage, BlockTypeButton, BlockTypeSocial, BlockTypeVideo} {
		b := mustBlock(t, bt)
		b.GetBase().Alignment = AlignRight
		v, ok := ResolveStyle(b).Get(PropJustifyContent)
		require.True(t, ok, string(bt))
		assert.Equal(t, "flex-end", v, string(bt))
	}

	product := mustBlock(t, BlockTypeProduct).(*ProductBlock)
	product.Alignment = AlignLeft
	v, _ := ResolveStyle(product).Get("align-items")
	assert.Equal(t, "flex-start", v)
}

func TestResolveStyle_Idempotent(t *testing.T) {
	for _, bt := range AllBlockTypes {
		t.Run(string(bt), func(t *testing.T) {
			b := mustBlock(t, bt)
			b.GetBase().BorderWidth = 3
			b.GetBase().BorderColor = "#123456"
			b.GetBase().MarginLeft = intPtr(7)

			first := ResolveStyle(b)
			applied := first.ApplyTo(b)
			assert.Equal(t, first, ResolveStyle(applied))
			assert.Equal(t, first, ResolveStyle(first.ApplyTo(applied)))
		})
	}

	t.Run("colors written with spaces", func(t *testing.T) {
		b := textBlock("a")
		b.GetBase().BackgroundColor = "rgb(1, 2, 3)"
		b.GetBase().BorderWidth = 2
		b.GetBase().BorderColor = "rgba(10,  20, 30, 0.5)"

		first := ResolveStyle(b)
		second := ResolveStyle(first.ApplyTo(b))
		assert.Equal(t, first, second)
		assert.Contains(t, second.String(), "background-color:rgb(1, 2, 3)")
		assert.Contains(t, second.String(), "border:2px solid rgba(10,  20, 30, 0.5)")
	})
}

func TestDeclarations_ApplyTo(t *testing.T) {
	d := Declarations{
		{PropWidth, "33.5%"},
		{PropHeight, "40px"},
		{PropPadding, "1px 2px 3px 4px"},
		{PropMargin, "5px"},
		{PropBorder, "2px dashed red"},
		{PropBorderRadius, "9px"},
		{PropBackgroundColor, "rgb(1, 2, 3)"},
		{PropJustifyContent, "flex-end"},
	}

	applied := d.ApplyTo(textBlock("a")).GetBase()
	assert.Equal(t, 33.5, applied.Width)
	assert.Equal(t, UnitPercent, applied.WidthUnit)
	assert.Equal(t, 40.0, applied.Height)
	assert.Equal(t, UnitPx, applied.HeightUnit)
	assert.Equal(t, Box{1, 2, 3, 4}, applied.ResolvedPadding())
	assert.Equal(t, Box{5, 5, 5, 5}, applied.ResolvedMargin())
	assert.Equal(t, 2, applied.BorderWidth)
	assert.Equal(t, "red", applied.BorderColor)
	assert.Equal(t, 9, applied.BorderRadius)
	assert.Equal(t, "rgb(1, 2, 3)", applied.BackgroundColor)
	assert.Equal(t, AlignRight, applied.Alignment)

	applied = Declarations{{PropBorder, "rgb(4, 5, 6) 3px solid"}}.ApplyTo(textBlock("b")).GetBase()
	assert.Equal(t, 3, applied.BorderWidth)
	assert.Equal(t, "rgb(4, 5, 6)", applied.BorderColor)
}

func TestDeclarations_Helpers(t *testing.T) {
	d := Declarations{{PropWidth, "10px"}, {PropHeight, "20px"}, {PropPadding, "1px 1px 1px 1px"}}

	assert.Equal(t, Declarations{{PropPadding, "1px 1px 1px 1px"}}, d.Without(PropWidth, PropHeight))
	assert.Equal(t, Declarations{{PropWidth, "10px"}, {PropHeight, "20px"}}, d.Only(PropHeight, PropWidth))
	assert.Equal(t, "width:10px;height:20px;padding:1px 1px 1px 1px", d.String())
	assert.Len(t, d, 3)
}
