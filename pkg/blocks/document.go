package blocks

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Document is an email template: either a single ordered block list or, when
// UseSections is set, a list of independently ordered sections
type Document struct {
	ID                      string      `json:"id"`
	Name                    string      `json:"name"`
	Subject                 string      `json:"subject"`
	Blocks                  BlockList   `json:"blocks"`
	BackgroundColor         string      `json:"backgroundColor"`
	DocumentBackgroundColor string      `json:"documentBackgroundColor"`
	Padding                 int         `json:"padding"`
	UseSections             bool        `json:"useSections"`
	Sections                SectionList `json:"sections,omitempty"`
	CreatedAt               time.Time   `json:"createdAt"`
	UpdatedAt               time.Time   `json:"updatedAt"`
}

// Section is a named block list with its own background and padding
type Section struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Blocks          BlockList `json:"blocks"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	Padding         int       `json:"padding"`
}

// SectionList is stored as a single JSON column
type SectionList []Section

// Value implements driver.Valuer for JSONB columns
func (s SectionList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Section(s))
}

// Scan implements sql.Scanner for JSONB columns
func (s *SectionList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("type assertion to []byte failed")
	}
	var sections []Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return err
	}
	if len(sections) == 0 {
		*s = nil
		return nil
	}
	*s = sections
	return nil
}

// NewDocument returns an empty template with default styling
func NewDocument(name string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:                      NewID(),
		Name:                    name,
		Blocks:                  BlockList{},
		BackgroundColor:         "#ffffff",
		DocumentBackgroundColor: "#f4f4f4",
		Padding:                 20,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Clone returns a deep copy of the document, blocks included
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Blocks = cloneBlocks(d.Blocks)
	if d.Sections != nil {
		out.Sections = make(SectionList, len(d.Sections))
		for i, s := range d.Sections {
			s.Blocks = cloneBlocks(s.Blocks)
			out.Sections[i] = s
		}
	}
	return &out
}

func cloneBlocks(blocks BlockList) BlockList {
	if blocks == nil {
		return nil
	}
	out := make(BlockList, len(blocks))
	for i, b := range blocks {
		out[i] = Clone(b)
	}
	return out
}

// Touch stamps the update time
func (d *Document) Touch(now time.Time) {
	d.UpdatedAt = now.UTC()
}

// WithBlocks returns a shallow copy of the document holding the given top-level blocks
func (d *Document) WithBlocks(blocks []Block) *Document {
	out := *d
	out.Blocks = BlockList(blocks)
	return &out
}

// Section returns the section with the id
func (d *Document) Section(id string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// BlockList returns the list an edit targets: the section's blocks when the document
// uses sections, the top-level blocks otherwise
func (d *Document) BlockList(sectionID string) ([]Block, error) {
	if !d.UseSections {
		return d.Blocks, nil
	}
	section, ok := d.Section(sectionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
	}
	return section.Blocks, nil
}

// ReplaceBlockList returns a copy of the document whose targeted list is replaced
func (d *Document) ReplaceBlockList(sectionID string, blocks []Block) (*Document, error) {
	if !d.UseSections {
		return d.WithBlocks(blocks), nil
	}
	return d.ReplaceSectionBlocks(sectionID, blocks)
}

// ReplaceSectionBlocks returns a copy of the document with one section's blocks replaced
func (d *Document) ReplaceSectionBlocks(sectionID string, blocks []Block) (*Document, error) {
	idx := d.sectionIndex(sectionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
	}
	out := *d
	out.Sections = make(SectionList, len(d.Sections))
	copy(out.Sections, d.Sections)
	out.Sections[idx].Blocks = BlockList(blocks)
	return &out, nil
}

// AddSection appends a section and switches the document to sections mode. The first
// section of a document still in blocks mode takes over its top-level blocks.
func (d *Document) AddSection(name string) (*Document, Section) {
	section := Section{
		ID:     NewID(),
		Name:   name,
		Blocks: BlockList{},
	}
	out := *d
	if !d.UseSections && len(d.Sections) == 0 && len(d.Blocks) > 0 {
		section.Blocks = d.Blocks
		out.Blocks = BlockList{}
	}
	out.UseSections = true
	out.Sections = make(SectionList, 0, len(d.Sections)+1)
	out.Sections = append(out.Sections, d.Sections...)
	out.Sections = append(out.Sections, section)
	return &out, section
}

// RemoveSection drops a section and its blocks
func (d *Document) RemoveSection(sectionID string) (*Document, error) {
	idx := d.sectionIndex(sectionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
	}
	out := *d
	out.Sections = make(SectionList, 0, len(d.Sections)-1)
	out.Sections = append(out.Sections, d.Sections[:idx]...)
	out.Sections = append(out.Sections, d.Sections[idx+1:]...)
	return &out, nil
}

// DisableSections switches back to blocks mode, concatenating section blocks in order
func (d *Document) DisableSections() *Document {
	if !d.UseSections {
		return d
	}
	out := *d
	out.UseSections = false
	out.Blocks = BlockList(d.AllBlocks())
	if out.Blocks == nil {
		out.Blocks = BlockList{}
	}
	out.Sections = nil
	return &out
}

func (d *Document) sectionIndex(id string) int {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// MoveBetweenSections moves the block at fromIndex of one section to toIndex of another.
// toIndex may equal the destination length to append. Identical section ids use Move.
func MoveBetweenSections(d *Document, fromSection string, fromIndex int, toSection string, toIndex int) (*Document, error) {
	if fromSection == toSection {
		blocks, err := d.BlockList(fromSection)
		if err != nil {
			return nil, err
		}
		moved, err := Move(blocks, fromIndex, toIndex)
		if err != nil {
			return nil, err
		}
		return d.ReplaceBlockList(fromSection, moved)
	}

	src := d.sectionIndex(fromSection)
	if src < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, fromSection)
	}
	dst := d.sectionIndex(toSection)
	if dst < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, toSection)
	}

	source := d.Sections[src].Blocks
	if fromIndex < 0 || fromIndex >= len(source) {
		return nil, &IndexOutOfRangeError{Index: fromIndex, Length: len(source)}
	}
	dest := d.Sections[dst].Blocks
	if toIndex < 0 || toIndex > len(dest) {
		return nil, &IndexOutOfRangeError{Index: toIndex, Length: len(dest)}
	}

	block := source[fromIndex]
	out := *d
	out.Sections = make(SectionList, len(d.Sections))
	copy(out.Sections, d.Sections)
	remaining := make(BlockList, 0, len(source)-1)
	remaining = append(remaining, source[:fromIndex]...)
	out.Sections[src].Blocks = append(remaining, source[fromIndex+1:]...)
	out.Sections[dst].Blocks = BlockList(Insert(dest, block, toIndex))
	return &out, nil
}

// AllBlocks returns every block of the document in rendering order
func (d *Document) AllBlocks() []Block {
	if !d.UseSections {
		return d.Blocks
	}
	var out []Block
	for _, s := range d.Sections {
		out = append(out, s.Blocks...)
	}
	return out
}
