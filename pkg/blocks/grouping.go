package blocks

// FlexDirection is the layout axis of an inline group
type FlexDirection string

const (
	DirectionRow    FlexDirection = "row"
	DirectionColumn FlexDirection = "column"
)

// RenderUnit is either a single block or a run of two or more adjacent inline blocks
type RenderUnit struct {
	// Start is the flat-list index of the first block of the unit
	Start  int
	Blocks []Block
}

// IsGroup reports whether the unit is an inline group
func (u RenderUnit) IsGroup() bool {
	return len(u.Blocks) >= 2
}

// End is the flat-list index just past the last block of the unit
func (u RenderUnit) End() int {
	return u.Start + len(u.Blocks)
}

// Direction lays a group out as a row when any member is aligned left or right, and as a
// column otherwise. This reads declared alignment only; nothing is measured.
func (u RenderUnit) Direction() FlexDirection {
	for _, b := range u.Blocks {
		switch b.GetBase().Alignment {
		case AlignLeft, AlignRight:
			return DirectionRow
		}
	}
	return DirectionColumn
}

// GroupBlocks partitions the list into render units. Flattening the units in order
// yields the input list.
func GroupBlocks(blocks []Block) []RenderUnit {
	units := make([]RenderUnit, 0, len(blocks))
	for i := 0; i < len(blocks); {
		if !blocks[i].IsInline() {
			units = append(units, RenderUnit{Start: i, Blocks: blocks[i : i+1 : i+1]})
			i++
			continue
		}
		j := i + 1
		for j < len(blocks) && blocks[j].IsInline() {
			j++
		}
		units = append(units, RenderUnit{Start: i, Blocks: blocks[i:j:j]})
		i = j
	}
	return units
}

// Flatten concatenates the blocks of every unit in order
func Flatten(units []RenderUnit) []Block {
	out := make([]Block, 0, len(units))
	for _, u := range units {
		out = append(out, u.Blocks...)
	}
	return out
}

// UnitOf returns the render unit containing the block with the id
func UnitOf(blocks []Block, blockID string) (RenderUnit, bool) {
	for _, u := range GroupBlocks(blocks) {
		for _, b := range u.Blocks {
			if b.GetID() == blockID {
				return u, true
			}
		}
	}
	return RenderUnit{}, false
}
