package blocks

// Structural edits over an ordered block list. Every operation returns a new slice and
// never writes through to the input's backing array.

// Insert places block at position. A position outside [0, len] appends.
func Insert(blocks []Block, block Block, position int) []Block {
	out := make([]Block, 0, len(blocks)+1)
	if position < 0 || position > len(blocks) {
		out = append(out, blocks...)
		return append(out, block)
	}
	out = append(out, blocks[:position]...)
	out = append(out, block)
	return append(out, blocks[position:]...)
}

// Append is Insert without a position
func Append(blocks []Block, block Block) []Block {
	return Insert(blocks, block, -1)
}

// Update replaces the element with the same id. A missing id leaves the list unchanged.
func Update(blocks []Block, block Block) []Block {
	out := cloneList(blocks)
	if block == nil {
		return out
	}
	for i, b := range out {
		if b.GetID() == block.GetID() {
			out[i] = block
			break
		}
	}
	return out
}

// Delete removes the first element with the id. A missing id leaves the list unchanged.
func Delete(blocks []Block, blockID string) []Block {
	idx := IndexOf(blocks, blockID)
	out := make([]Block, 0, len(blocks))
	if idx < 0 {
		return append(out, blocks...)
	}
	out = append(out, blocks[:idx]...)
	return append(out, blocks[idx+1:]...)
}

// Duplicate inserts a deep copy of block with fresh ids at position and returns the
// new list together with the copy. A block that cannot be copied leaves the list
// unchanged and the copy nil.
func Duplicate(blocks []Block, block Block, position int) ([]Block, Block) {
	copied := RegenerateIDs(block)
	if copied == nil {
		return cloneList(blocks), nil
	}
	return Insert(blocks, copied, position), copied
}

// Move removes the element at from and re-inserts it at to, where to is an index into
// the list with the element already removed
func Move(blocks []Block, from, to int) ([]Block, error) {
	if from < 0 || from >= len(blocks) {
		return nil, &IndexOutOfRangeError{Index: from, Length: len(blocks)}
	}
	if to < 0 || to > len(blocks)-1 {
		return nil, &IndexOutOfRangeError{Index: to, Length: len(blocks) - 1}
	}
	moved := blocks[from]
	rest := make([]Block, 0, len(blocks))
	rest = append(rest, blocks[:from]...)
	rest = append(rest, blocks[from+1:]...)
	return Insert(rest, moved, to), nil
}

// IndexOf returns the position of the first block with the id, or -1
func IndexOf(blocks []Block, blockID string) int {
	for i, b := range blocks {
		if b != nil && b.GetID() == blockID {
			return i
		}
	}
	return -1
}

// Find returns the first block with the id
func Find(blocks []Block, blockID string) (Block, bool) {
	idx := IndexOf(blocks, blockID)
	if idx < 0 {
		return nil, false
	}
	return blocks[idx], true
}

// DuplicateUnit duplicates the render unit containing blockID. For an inline group every
// member is copied and the copies are inserted as a contiguous run right after the group.
// A missing id leaves the list unchanged.
func DuplicateUnit(blocks []Block, blockID string) []Block {
	unit, ok := UnitOf(blocks, blockID)
	if !ok {
		return cloneList(blocks)
	}
	return DuplicateUnitAt(blocks, blockID, unit.End())
}

// DuplicateUnitAt is DuplicateUnit with the copies inserted as one run at position.
// A position outside [0, len] appends.
func DuplicateUnitAt(blocks []Block, blockID string, position int) []Block {
	unit, ok := UnitOf(blocks, blockID)
	if !ok {
		return cloneList(blocks)
	}
	if position < 0 || position > len(blocks) {
		position = len(blocks)
	}
	copies := make([]Block, 0, len(unit.Blocks))
	for _, b := range unit.Blocks {
		copied := RegenerateIDs(b)
		if copied == nil {
			return cloneList(blocks)
		}
		copies = append(copies, copied)
	}
	out := make([]Block, 0, len(blocks)+len(copies))
	out = append(out, blocks[:position]...)
	out = append(out, copies...)
	return append(out, blocks[position:]...)
}

// InGroup reports whether blockID belongs to an inline group of two or more blocks
func InGroup(blocks []Block, blockID string) bool {
	unit, ok := UnitOf(blocks, blockID)
	return ok && unit.IsGroup()
}

// DeleteUnit removes the render unit containing blockID, the whole group when the block
// is an inline group member. A missing id leaves the list unchanged.
func DeleteUnit(blocks []Block, blockID string) []Block {
	unit, ok := UnitOf(blocks, blockID)
	if !ok {
		return cloneList(blocks)
	}
	out := make([]Block, 0, len(blocks))
	out = append(out, blocks[:unit.Start]...)
	return append(out, blocks[unit.End():]...)
}

func cloneList(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}
