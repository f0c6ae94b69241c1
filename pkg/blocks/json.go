package blocks

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// newTypedBlock returns an empty variant for the tag, or nil when the tag is unknown
func newTypedBlock(t BlockType) Block {
	switch t {
	case BlockTypeTitle:
		return &TitleBlock{}
	case BlockTypeText:
		return &TextBlock{}
	case BlockTypeImage:
		return &ImageBlock{}
	case BlockTypeButton:
		return &ButtonBlock{}
	case BlockTypeDivider:
		return &DividerBlock{}
	case BlockTypeSpacer:
		return &SpacerBlock{}
	case BlockTypeHeader:
		return &HeaderBlock{}
	case BlockTypeFooter:
		return &FooterBlock{}
	case BlockTypeFooterWithSocial:
		return &FooterWithSocialBlock{}
	case BlockTypeSocial:
		return &SocialBlock{}
	case BlockTypeProduct:
		return &ProductBlock{}
	case BlockTypeNavigation:
		return &NavigationBlock{}
	case BlockTypeTwoColumnCard:
		return &TwoColumnCardBlock{}
	case BlockTypeStats:
		return &StatsBlock{}
	case BlockTypeFeatures:
		return &FeaturesBlock{}
	case BlockTypePromo:
		return &PromoBlock{}
	case BlockTypeCenteredImageCard:
		return &CenteredImageCardBlock{}
	case BlockTypeSplitImageCard:
		return &SplitImageCardBlock{}
	case BlockTypeHTML:
		return &HTMLBlock{}
	case BlockTypeVideo:
		return &VideoBlock{}
	default:
		return nil
	}
}

// UnmarshalBlock decodes a single block. Unknown type tags decode to *UnknownBlock
// so that the rest of a document stays usable.
func UnmarshalBlock(data []byte) (Block, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid block JSON")
	}
	tag := gjson.GetBytes(data, "type")
	if !tag.Exists() {
		return nil, fmt.Errorf("block is missing a type")
	}

	block := newTypedBlock(BlockType(tag.String()))
	if block == nil {
		unknown := &UnknownBlock{Raw: append([]byte(nil), data...)}
		if err := json.Unmarshal(data, &unknown.BaseBlock); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s block: %w", tag.String(), err)
		}
		return unknown, nil
	}

	if err := json.Unmarshal(data, block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s block: %w", tag.String(), err)
	}
	return block, nil
}

// MarshalJSON re-emits the original payload untouched
func (b *UnknownBlock) MarshalJSON() ([]byte, error) {
	if len(b.Raw) > 0 {
		return b.Raw, nil
	}
	return json.Marshal(b.BaseBlock)
}

// BlockList is an ordered sequence of blocks with polymorphic JSON support
type BlockList []Block

// UnmarshalJSON decodes each element by its type tag
func (l *BlockList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(BlockList, 0, len(raws))
	for i, raw := range raws {
		block, err := UnmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, block)
	}
	*l = out
	return nil
}

// MarshalJSON always produces an array, never null
func (l BlockList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Block(l))
}

// Value implements driver.Valuer for JSONB columns
func (l BlockList) Value() (driver.Value, error) {
	return l.MarshalJSON()
}

// Scan implements sql.Scanner for JSONB columns
func (l *BlockList) Scan(value interface{}) error {
	if value == nil {
		*l = BlockList{}
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
	return l.UnmarshalJSON(data)
}

// MarshalBlock encodes a single block
func MarshalBlock(b Block) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("block is nil")
	}
	return json.Marshal(b)
}

// UnmarshalBlocks decodes a JSON array of blocks
func UnmarshalBlocks(data []byte) ([]Block, error) {
	var list BlockList
	if err := list.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return list, nil
}
