package blocks

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is matched by errors.Is for every *IndexOutOfRangeError
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownBlockType is returned by the factory for tags it cannot build
	ErrUnknownBlockType = errors.New("unknown block type")
	// ErrSectionNotFound is returned when a section id does not exist in the document
	ErrSectionNotFound = errors.New("section not found")
)

// IndexOutOfRangeError reports a move issued with an index outside the list
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for list of length %d", e.Index, e.Length)
}

func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
