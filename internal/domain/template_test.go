package domain

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/mailblocks/pkg/blocks"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func newBlock(t *testing.T, bt blocks.BlockType) blocks.Block {
	t.Helper()
	b, err := blocks.NewBlock(bt)
	require.NoError(t, err)
	return b
}

func TestCreateTemplateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTemplateRequest
		wantErr string
	}{
		{
			name: "valid minimal",
			req:  CreateTemplateRequest{Name: "Welcome"},
		},
		{
			name:    "missing name",
			req:     CreateTemplateRequest{Name: "  "},
			wantErr: "name is required",
		},
		{
			name:    "id too long",
			req:     CreateTemplateRequest{ID: string(make([]byte, 65)), Name: "x"},
			wantErr: "id length",
		},
		{
			name:    "invalid background color",
			req:     CreateTemplateRequest{Name: "x", BackgroundColor: "blue-ish"},
			wantErr: "backgroundColor must be a color",
		},
		{
			name:    "negative padding",
			req:     CreateTemplateRequest{Name: "x", Padding: intPtr(-1)},
			wantErr: "padding must not be negative",
		},
		{
			name: "blocks with sections mode",
			req: CreateTemplateRequest{
				Name:        "x",
				UseSections: true,
				Blocks:      blocks.BlockList{&blocks.TextBlock{BaseBlock: blocks.BaseBlock{ID: "a", Type: blocks.BlockTypeText}}},
			},
			wantErr: "blocks must be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template, err := tt.req.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, template.ID)
			assert.Equal(t, tt.req.Name, template.Name)
		})
	}
}

func TestCreateTemplateRequest_ValidateFillsDefaults(t *testing.T) {
	req := CreateTemplateRequest{
		ID:              "tpl-1",
		Name:            "Welcome",
		Subject:         "Hello",
		BackgroundColor: "#fafafa",
		Padding:         intPtr(0),
		Blocks:          blocks.BlockList{newBlock(t, blocks.BlockTypeTitle)},
	}

	template, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", template.ID)
	assert.Equal(t, "Hello", template.Subject)
	assert.Equal(t, "#fafafa", template.BackgroundColor)
	assert.Equal(t, "#f4f4f4", template.DocumentBackgroundColor)
	assert.Equal(t, 0, template.Padding)
	assert.Len(t, template.Blocks, 1)
}

func TestListTemplatesRequest_FromURLParams(t *testing.T) {
	var req ListTemplatesRequest
	require.NoError(t, req.FromURLParams(url.Values{}))
	assert.Equal(t, defaultListLimit, req.Limit)
	assert.Equal(t, 0, req.Offset)

	require.NoError(t, req.FromURLParams(url.Values{"limit": {"1000"}, "offset": {"5"}, "search": {" news "}}))
	assert.Equal(t, maxListLimit, req.Limit)
	assert.Equal(t, 5, req.Offset)
	assert.Equal(t, "news", req.Search)

	assert.Error(t, req.FromURLParams(url.Values{"limit": {"zero"}}))
	assert.Error(t, req.FromURLParams(url.Values{"offset": {"-1"}}))
}

func TestGetTemplateRequest_FromURLParams(t *testing.T) {
	var req GetTemplateRequest
	assert.Error(t, req.FromURLParams(url.Values{}))
	require.NoError(t, req.FromURLParams(url.Values{"id": {"tpl-1"}}))
	assert.Equal(t, "tpl-1", req.ID)
}

func TestUpdateTemplateRequest(t *testing.T) {
	t.Run("validate", func(t *testing.T) {
		assert.Error(t, (&UpdateTemplateRequest{}).Validate())
		assert.Error(t, (&UpdateTemplateRequest{ID: "t", Name: strPtr("")}).Validate())
		assert.Error(t, (&UpdateTemplateRequest{ID: "t", DocumentBackgroundColor: strPtr("nope")}).Validate())
		assert.NoError(t, (&UpdateTemplateRequest{ID: "t", BackgroundColor: strPtr("rgb(0,0,0)")}).Validate())
	})

	t.Run("apply only changes set fields", func(t *testing.T) {
		template := blocks.NewDocument("Old")
		template.Subject = "Keep"
		req := UpdateTemplateRequest{ID: template.ID, Name: strPtr("New"), Padding: intPtr(32)}

		updated := req.Apply(template)
		assert.Equal(t, "New", updated.Name)
		assert.Equal(t, 32, updated.Padding)
		assert.Equal(t, "Keep", updated.Subject)
		assert.Equal(t, "Old", template.Name, "original untouched")
	})

	t.Run("toggle sections keeps blocks", func(t *testing.T) {
		title := newBlock(t, blocks.BlockTypeTitle)
		template := blocks.NewDocument("x").WithBlocks([]blocks.Block{title})

		on := (&UpdateTemplateRequest{ID: template.ID, UseSections: boolPtr(true)}).Apply(template)
		require.True(t, on.UseSections)
		require.Len(t, on.Sections, 1)
		assert.Equal(t, title.GetID(), on.Sections[0].Blocks[0].GetID())

		off := (&UpdateTemplateRequest{ID: template.ID, UseSections: boolPtr(false)}).Apply(on)
		assert.False(t, off.UseSections)
		require.Len(t, off.Blocks, 1)
		assert.Equal(t, title.GetID(), off.Blocks[0].GetID())
	})
}

func TestInsertBlockRequest(t *testing.T) {
	t.Run("decodes polymorphic block", func(t *testing.T) {
		payload := `{"templateId":"tpl-1","position":2,"block":{"id":"b1","type":"button","visibility":"all","text":"Go","link":"https://example.com","linkType":"url"}}`
		var req InsertBlockRequest
		require.NoError(t, json.Unmarshal([]byte(payload), &req))
		require.NoError(t, req.Validate())

		assert.Equal(t, "tpl-1", req.TemplateID)
		assert.Equal(t, 2, req.InsertPosition())
		button, ok := req.Block.(*blocks.ButtonBlock)
		require.True(t, ok)
		assert.Equal(t, "Go", button.Text)
	})

	t.Run("block type builds defaults", func(t *testing.T) {
		req := InsertBlockRequest{BlockTarget: BlockTarget{TemplateID: "tpl-1"}, BlockType: blocks.BlockTypeStats}
		require.NoError(t, req.Validate())
		assert.Equal(t, blocks.BlockTypeStats, req.Block.GetType())
		assert.Equal(t, -1, req.InsertPosition())
	})

	t.Run("unknown block type", func(t *testing.T) {
		req := InsertBlockRequest{BlockTarget: BlockTarget{TemplateID: "tpl-1"}, BlockType: "carousel"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("missing block and type", func(t *testing.T) {
		req := InsertBlockRequest{BlockTarget: BlockTarget{TemplateID: "tpl-1"}}
		assert.Error(t, req.Validate())
	})

	t.Run("block without type", func(t *testing.T) {
		var req InsertBlockRequest
		err := json.Unmarshal([]byte(`{"templateId":"t","block":{"id":"x"}}`), &req)
		require.Error(t, err)
	})
}

func TestUpdateBlockRequest(t *testing.T) {
	var req UpdateBlockRequest
	require.NoError(t, json.Unmarshal([]byte(`{"templateId":"t","sectionId":"s","block":{"id":"b","type":"text","visibility":"mobile","content":"hi"}}`), &req))
	require.NoError(t, req.Validate())
	assert.Equal(t, "s", req.SectionID)
	assert.Equal(t, blocks.VisibilityMobile, req.Block.GetBase().Visibility)

	var empty UpdateBlockRequest
	require.NoError(t, json.Unmarshal([]byte(`{"templateId":"t"}`), &empty))
	assert.Error(t, empty.Validate())
}

func TestBlockEditRequests_Validate(t *testing.T) {
	target := BlockTarget{TemplateID: "tpl-1"}

	assert.NoError(t, (&DeleteBlockRequest{BlockTarget: target, BlockID: "b"}).Validate())
	assert.Error(t, (&DeleteBlockRequest{BlockTarget: target}).Validate())
	assert.Error(t, (&DeleteBlockRequest{BlockID: "b"}).Validate())

	assert.NoError(t, (&DuplicateBlockRequest{BlockTarget: target, BlockID: "b", Position: intPtr(0)}).Validate())
	assert.NoError(t, (&DuplicateBlockRequest{BlockTarget: target, BlockID: "b", Position: intPtr(0), SingleBlock: true}).Validate())
	assert.Error(t, (&DuplicateBlockRequest{BlockTarget: target}).Validate())

	assert.NoError(t, (&MoveBlockRequest{BlockTarget: target, FromIndex: 9, ToIndex: 0}).Validate(), "indices are checked by the editor")

	assert.NoError(t, (&AddSectionRequest{TemplateID: "t", Name: "Hero"}).Validate())
	assert.Error(t, (&AddSectionRequest{TemplateID: "t"}).Validate())
	assert.Error(t, (&RemoveSectionRequest{TemplateID: "t"}).Validate())
	assert.Error(t, (&MoveBetweenSectionsRequest{TemplateID: "t", FromSectionID: "a"}).Validate())
	assert.NoError(t, (&MoveBetweenSectionsRequest{TemplateID: "t", FromSectionID: "a", ToSectionID: "b"}).Validate())
}

func TestRenderRequest_FromURLParams(t *testing.T) {
	tests := []struct {
		name    string
		mode    blocks.Mode
		params  url.Values
		wantErr bool
		check   func(t *testing.T, r RenderRequest)
	}{
		{
			name:   "preview defaults to desktop html",
			mode:   blocks.ModePreview,
			params: url.Values{"id": {"t"}},
			check: func(t *testing.T, r RenderRequest) {
				assert.Equal(t, blocks.DeviceDesktop, r.Device)
				assert.Equal(t, ExportFormatHTML, r.Format)
				assert.False(t, r.Download)
			},
		},
		{
			name:   "export mjml download",
			mode:   blocks.ModeExport,
			params: url.Values{"id": {"t"}, "format": {"mjml"}, "download": {"true"}},
			check: func(t *testing.T, r RenderRequest) {
				assert.Equal(t, ExportFormatMJML, r.Format)
				assert.True(t, r.Download)
			},
		},
		{name: "missing id", mode: blocks.ModePreview, params: url.Values{}, wantErr: true},
		{name: "unknown device", mode: blocks.ModePreview, params: url.Values{"id": {"t"}, "device": {"watch"}}, wantErr: true},
		{name: "unknown format", mode: blocks.ModeExport, params: url.Values{"id": {"t"}, "format": {"pdf"}}, wantErr: true},
		{name: "mjml outside export", mode: blocks.ModeSource, params: url.Values{"id": {"t"}, "format": {"mjml"}}, wantErr: true},
		{name: "bad download flag", mode: blocks.ModeExport, params: url.Values{"id": {"t"}, "download": {"maybe"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RenderRequest{Mode: tt.mode}
			err := req.FromURLParams(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestValidateBlock(t *testing.T) {
	image := newBlock(t, blocks.BlockTypeImage).(*blocks.ImageBlock)
	image.Src = "javascript:alert(1)"

	button := newBlock(t, blocks.BlockTypeButton).(*blocks.ButtonBlock)
	button.LinkType = blocks.LinkTypeEmail
	button.Link = "not-an-email"

	okButton := newBlock(t, blocks.BlockTypeButton).(*blocks.ButtonBlock)
	okButton.LinkType = blocks.LinkTypeEmail
	okButton.Link = "hello@example.com"

	badUnit := newBlock(t, blocks.BlockTypeText)
	badUnit.GetBase().WidthUnit = "em"

	badVisibility := newBlock(t, blocks.BlockTypeText)
	badVisibility.GetBase().Visibility = "tv"

	noID := newBlock(t, blocks.BlockTypeDivider)
	noID.SetID("")

	unknown, err := blocks.UnmarshalBlock([]byte(`{"id":"u","type":"carousel"}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		block   blocks.Block
		wantErr bool
	}{
		{"nil", nil, true},
		{"every default is valid", newBlock(t, blocks.BlockTypeFooterWithSocial), false},
		{"unsafe image src", image, true},
		{"bad email link", button, true},
		{"good email link", okButton, false},
		{"unknown unit", badUnit, true},
		{"unknown visibility", badVisibility, true},
		{"missing id", noID, true},
		{"unknown type", unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlock(tt.block)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	for _, bt := range blocks.AllBlockTypes {
		assert.NoError(t, ValidateBlock(newBlock(t, bt)), "default %s block", bt)
	}

	err = ValidateBlock(unknown)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), `unknown type "carousel"`)
}

func TestErrors(t *testing.T) {
	notFound := &ErrTemplateNotFound{ID: "tpl-9"}
	assert.Equal(t, "template not found with ID: tpl-9", notFound.Error())
	assert.True(t, IsNotFound(errors.Join(errors.New("ctx"), notFound)))
	assert.False(t, IsNotFound(errors.New("other")))

	validation := NewValidationError("bad input")
	assert.Equal(t, "validation error: bad input", validation.Error())
	assert.True(t, IsValidationError(validation))
	assert.False(t, IsValidationError(notFound))
}
