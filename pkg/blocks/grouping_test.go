package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBlocks_TwoInlineThenBlock(t *testing.T) {
	blocks := []Block{
		inlineText("a", AlignCenter),
		inlineText("b", AlignCenter),
		textBlock("c"),
	}

	units := GroupBlocks(blocks)
	require.Len(t, units, 2)
	assert.True(t, units[0].IsGroup())
	assert.Equal(t, []string{"a", "b"}, ids(units[0].Blocks))
	assert.False(t, units[1].IsGroup())
	assert.Equal(t, []string{"c"}, ids(units[1].Blocks))
	assert.Equal(t, 2, units[1].Start)
}

func TestGroupBlocks_RoundTrip(t *testing.T) {
	lists := [][]Block{
		nil,
		{textBlock("a")},
		{inlineText("a", AlignLeft)},
		{inlineText("a", AlignLeft), inlineText("b", AlignLeft)},
		{textBlock("a"), inlineText("b", AlignLeft), textBlock("c"), inlineText("d", AlignRight), inlineText("e", AlignCenter)},
		{inlineText("a", AlignLeft), inlineText("b", AlignLeft), inlineText("c", AlignLeft), textBlock("d"), inlineText("e", AlignLeft), inlineText("f", AlignLeft)},
	}

	for _, list := range lists {
		units := GroupBlocks(list)
		flat := Flatten(units)
		require.Len(t, flat, len(list))
		for i := range list {
			assert.Same(t, list[i], flat[i])
		}
		for _, u := range units {
			for k, b := range u.Blocks {
				assert.Same(t, list[u.Start+k], b)
			}
		}
	}
}

func TestGroupBlocks_SingleInlineIsStandalone(t *testing.T) {
	units := GroupBlocks([]Block{textBlock("a"), inlineText("b", AlignLeft), textBlock("c")})
	require.Len(t, units, 3)
	for _, u := range units {
		assert.False(t, u.IsGroup())
	}
}

func TestGroupBlocks_DoesNotShareBackingArray(t *testing.T) {
	blocks := []Block{inlineText("a", AlignLeft), inlineText("b", AlignLeft), textBlock("c")}
	units := GroupBlocks(blocks)

	grown := append(units[0].Blocks, textBlock("x"))
	assert.Equal(t, "c", blocks[2].GetID())
	assert.Len(t, grown, 3)
}

func TestRenderUnit_Direction(t *testing.T) {
	tests := []struct {
		name     string
		aligns   []Alignment
		expected FlexDirection
	}{
		{"all centered", []Alignment{AlignCenter, AlignCenter}, DirectionColumn},
		{"first left", []Alignment{AlignLeft, AlignCenter}, DirectionRow},
		{"later right", []Alignment{AlignCenter, AlignRight}, DirectionRow},
		{"unset", []Alignment{"", ""}, DirectionColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var blocks []Block
			for i, a := range tt.aligns {
				blocks = append(blocks, inlineText(string(rune('a'+i)), a))
			}
			units := GroupBlocks(blocks)
			require.Len(t, units, 1)
			assert.Equal(t, tt.expected, units[0].Direction())
		})
	}
}

func TestUnitOf(t *testing.T) {
	blocks := []Block{textBlock("a"), inlineText("b", AlignLeft), inlineText("c", AlignLeft)}

	u, ok := UnitOf(blocks, "c")
	require.True(t, ok)
	assert.Equal(t, 1, u.Start)
	assert.Equal(t, 3, u.End())

	_, ok = UnitOf(blocks, "missing")
	assert.False(t, ok)
}
