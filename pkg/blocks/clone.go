package blocks

import "encoding/json"

// Clone returns a deep copy of the block. Ids are kept as they are. A block that cannot
// be copied yields nil, never the input itself.
func Clone(b Block) Block {
	if b == nil {
		return nil
	}
	if unknown, ok := b.(*UnknownBlock); ok {
		return cloneUnknown(unknown)
	}
	data, err := MarshalBlock(b)
	if err != nil {
		return nil
	}
	copied, err := UnmarshalBlock(data)
	if err != nil {
		return nil
	}
	return copied
}

// cloneUnknown copies the envelope and the raw payload without re-decoding it, so a
// payload that does not parse still gets its own copy
func cloneUnknown(u *UnknownBlock) Block {
	data, err := json.Marshal(u.BaseBlock)
	if err != nil {
		return nil
	}
	copied := &UnknownBlock{Raw: append([]byte(nil), u.Raw...)}
	if err := json.Unmarshal(data, &copied.BaseBlock); err != nil {
		return nil
	}
	return copied
}

// RegenerateIDs returns a deep copy of the block with a fresh id on the block and on
// every nested sub-item
func RegenerateIDs(b Block) Block {
	copied := Clone(b)
	if copied == nil {
		return nil
	}
	copied.SetID(NewID())
	copied.regenerateNestedIDs()
	if unknown, ok := copied.(*UnknownBlock); ok {
		// the raw payload is what gets persisted, keep its id in sync
		unknown.Raw = rewriteRawID(unknown.Raw, unknown.ID)
	}
	return copied
}

// CollectIDs returns the block id followed by every nested sub-item id
func CollectIDs(b Block) []string {
	if b == nil {
		return nil
	}
	ids := []string{b.GetID()}
	switch v := b.(type) {
	case *HeaderBlock:
		for _, l := range v.Links {
			ids = append(ids, l.ID)
		}
	case *FooterBlock:
		for _, l := range v.Links {
			ids = append(ids, l.ID)
		}
	case *FooterWithSocialBlock:
		for _, p := range v.Social.Platforms {
			ids = append(ids, p.ID)
		}
	case *SocialBlock:
		for _, p := range v.Platforms {
			ids = append(ids, p.ID)
		}
	case *NavigationBlock:
		for _, item := range v.Items {
			ids = append(ids, item.ID)
		}
	case *TwoColumnCardBlock:
		for _, c := range v.Cards {
			ids = append(ids, c.ID)
		}
	case *StatsBlock:
		for _, s := range v.Stats {
			ids = append(ids, s.ID)
		}
	case *FeaturesBlock:
		for _, f := range v.Features {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func rewriteRawID(raw []byte, id string) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	encoded, err := json.Marshal(id)
	if err != nil {
		return nil
	}
	fields["id"] = encoded
	out, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return out
}
