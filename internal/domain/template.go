package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/Notifuse/mailblocks/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_template_service.go -package mocks github.com/Notifuse/mailblocks/internal/domain TemplateService
//go:generate mockgen -destination mocks/mock_template_repository.go -package mocks github.com/Notifuse/mailblocks/internal/domain TemplateRepository

// Template is the persisted email document
type Template = blocks.Document

const (
	maxIDLength      = 64
	maxNameLength    = 255
	maxSubjectLength = 998 // RFC 5322 line limit
	defaultListLimit = 50
	maxListLimit     = 200
)

// TemplateService provides the editing, listing and rendering operations on templates
type TemplateService interface {
	// CreateTemplate stores a new template, generating an id when none is set
	CreateTemplate(ctx context.Context, template *Template) error

	// GetTemplate retrieves a template by ID
	GetTemplate(ctx context.Context, id string) (*Template, error)

	// ListTemplates retrieves templates ordered by last update
	ListTemplates(ctx context.Context, params ListTemplatesRequest) ([]*Template, error)

	// UpdateTemplateSettings changes template-level fields, blocks are left untouched
	UpdateTemplateSettings(ctx context.Context, req UpdateTemplateRequest) (*Template, error)

	// DeleteTemplate deletes a template by ID
	DeleteTemplate(ctx context.Context, id string) error

	InsertBlock(ctx context.Context, req InsertBlockRequest) (*Template, error)
	UpdateBlock(ctx context.Context, req UpdateBlockRequest) (*Template, error)
	DeleteBlock(ctx context.Context, req DeleteBlockRequest) (*Template, error)
	DuplicateBlock(ctx context.Context, req DuplicateBlockRequest) (*Template, error)
	MoveBlock(ctx context.Context, req MoveBlockRequest) (*Template, error)

	AddSection(ctx context.Context, req AddSectionRequest) (*Template, *blocks.Section, error)
	RemoveSection(ctx context.Context, req RemoveSectionRequest) (*Template, error)
	MoveBlockBetweenSections(ctx context.Context, req MoveBetweenSectionsRequest) (*Template, error)

	// Render serializes a template for preview, source view or export
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
}

// TemplateRepository is the persistence collaborator, keyed by template id.
// Implementations store whole documents.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template *Template) error
	GetTemplateByID(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, params ListTemplatesRequest) ([]*Template, error)
	UpdateTemplate(ctx context.Context, template *Template) error
	DeleteTemplate(ctx context.Context, id string) error
}

// --- Template requests ---

type CreateTemplateRequest struct {
	ID                      string             `json:"id,omitempty"`
	Name                    string             `json:"name"`
	Subject                 string             `json:"subject"`
	Blocks                  blocks.BlockList   `json:"blocks,omitempty"`
	BackgroundColor         string             `json:"backgroundColor,omitempty"`
	DocumentBackgroundColor string             `json:"documentBackgroundColor,omitempty"`
	Padding                 *int               `json:"padding,omitempty"`
	UseSections             bool               `json:"useSections,omitempty"`
	Sections                blocks.SectionList `json:"sections,omitempty"`
}

// Validate checks the request and builds the template it describes, defaults filled in
func (r *CreateTemplateRequest) Validate() (*Template, error) {
	if r.ID != "" {
		if err := validateID("id", r.ID); err != nil {
			return nil, fmt.Errorf("invalid create template request: %w", err)
		}
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, NewValidationError("invalid create template request: name is required")
	}
	if len(r.Name) > maxNameLength {
		return nil, NewValidationError(fmt.Sprintf("invalid create template request: name length must be between 1 and %d", maxNameLength))
	}
	if len(r.Subject) > maxSubjectLength {
		return nil, NewValidationError(fmt.Sprintf("invalid create template request: subject length must be at most %d", maxSubjectLength))
	}
	if err := validateColor("backgroundColor", r.BackgroundColor); err != nil {
		return nil, fmt.Errorf("invalid create template request: %w", err)
	}
	if err := validateColor("documentBackgroundColor", r.DocumentBackgroundColor); err != nil {
		return nil, fmt.Errorf("invalid create template request: %w", err)
	}
	if r.Padding != nil && *r.Padding < 0 {
		return nil, NewValidationError("invalid create template request: padding must not be negative")
	}
	for _, b := range r.Blocks {
		if err := ValidateBlock(b); err != nil {
			return nil, fmt.Errorf("invalid create template request: %w", err)
		}
	}
	for _, s := range r.Sections {
		if err := validateSection(s); err != nil {
			return nil, fmt.Errorf("invalid create template request: %w", err)
		}
	}
	if r.UseSections && len(r.Blocks) > 0 {
		return nil, NewValidationError("invalid create template request: blocks must be empty when useSections is set")
	}

	template := blocks.NewDocument(r.Name)
	if r.ID != "" {
		template.ID = r.ID
	}
	template.Subject = r.Subject
	if r.Blocks != nil {
		template.Blocks = r.Blocks
	}
	if r.BackgroundColor != "" {
		template.BackgroundColor = r.BackgroundColor
	}
	if r.DocumentBackgroundColor != "" {
		template.DocumentBackgroundColor = r.DocumentBackgroundColor
	}
	if r.Padding != nil {
		template.Padding = *r.Padding
	}
	template.UseSections = r.UseSections
	template.Sections = r.Sections
	return template, nil
}

type GetTemplateRequest struct {
	ID string `json:"id"`
}

func (r *GetTemplateRequest) FromURLParams(queryParams url.Values) error {
	r.ID = queryParams.Get("id")
	if err := validateID("id", r.ID); err != nil {
		return fmt.Errorf("invalid get template request: %w", err)
	}
	return nil
}

type ListTemplatesRequest struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func (r *ListTemplatesRequest) FromURLParams(queryParams url.Values) error {
	r.Search = strings.TrimSpace(queryParams.Get("search"))
	r.Limit = defaultListLimit

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return NewValidationError("invalid list templates request: limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		r.Limit = limit
	}

	if offsetStr := queryParams.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return NewValidationError("invalid list templates request: offset must be a non-negative integer")
		}
		r.Offset = offset
	}

	if len(r.Search) > maxNameLength {
		return NewValidationError("invalid list templates request: search is too long")
	}
	return nil
}

// UpdateTemplateRequest changes template-level fields. Nil fields are left as they are.
type UpdateTemplateRequest struct {
	ID                      string  `json:"id"`
	Name                    *string `json:"name,omitempty"`
	Subject                 *string `json:"subject,omitempty"`
	BackgroundColor         *string `json:"backgroundColor,omitempty"`
	DocumentBackgroundColor *string `json:"documentBackgroundColor,omitempty"`
	Padding                 *int    `json:"padding,omitempty"`
	UseSections             *bool   `json:"useSections,omitempty"`
}

func (r *UpdateTemplateRequest) Validate() error {
	if err := validateID("id", r.ID); err != nil {
		return fmt.Errorf("invalid update template request: %w", err)
	}
	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" || len(*r.Name) > maxNameLength {
			return NewValidationError(fmt.Sprintf("invalid update template request: name length must be between 1 and %d", maxNameLength))
		}
	}
	if r.Subject != nil && len(*r.Subject) > maxSubjectLength {
		return NewValidationError(fmt.Sprintf("invalid update template request: subject length must be at most %d", maxSubjectLength))
	}
	if r.BackgroundColor != nil {
		if err := validateColor("backgroundColor", *r.BackgroundColor); err != nil {
			return fmt.Errorf("invalid update template request: %w", err)
		}
	}
	if r.DocumentBackgroundColor != nil {
		if err := validateColor("documentBackgroundColor", *r.DocumentBackgroundColor); err != nil {
			return fmt.Errorf("invalid update template request: %w", err)
		}
	}
	if r.Padding != nil && *r.Padding < 0 {
		return NewValidationError("invalid update template request: padding must not be negative")
	}
	return nil
}

// Apply returns a copy of the template with the requested fields changed
func (r *UpdateTemplateRequest) Apply(template *Template) *Template {
	out := template.Clone()
	if r.Name != nil {
		out.Name = *r.Name
	}
	if r.Subject != nil {
		out.Subject = *r.Subject
	}
	if r.BackgroundColor != nil {
		out.BackgroundColor = *r.BackgroundColor
	}
	if r.DocumentBackgroundColor != nil {
		out.DocumentBackgroundColor = *r.DocumentBackgroundColor
	}
	if r.Padding != nil {
		out.Padding = *r.Padding
	}
	if r.UseSections != nil && *r.UseSections != out.UseSections {
		if *r.UseSections {
			out, _ = out.AddSection("Main")
		} else {
			out = out.DisableSections()
		}
	}
	return out
}

type DeleteTemplateRequest struct {
	ID string `json:"id"`
}

func (r *DeleteTemplateRequest) Validate() error {
	if err := validateID("id", r.ID); err != nil {
		return fmt.Errorf("invalid delete template request: %w", err)
	}
	return nil
}

// --- Block edit requests ---

// BlockTarget names the block list an edit applies to. SectionID is only read when
// the template uses sections.
type BlockTarget struct {
	TemplateID string `json:"templateId"`
	SectionID  string `json:"sectionId,omitempty"`
}

func (t BlockTarget) validate(request string) error {
	if err := validateID("templateId", t.TemplateID); err != nil {
		return fmt.Errorf("invalid %s request: %w", request, err)
	}
	if len(t.SectionID) > maxIDLength {
		return NewValidationError(fmt.Sprintf("invalid %s request: sectionId is too long", request))
	}
	return nil
}

// InsertBlockRequest inserts Block, or a freshly defaulted block of BlockType when
// Block is nil. A nil Position appends.
type InsertBlockRequest struct {
	BlockTarget
	Block     blocks.Block     `json:"-"`
	BlockType blocks.BlockType `json:"blockType,omitempty"`
	Position  *int             `json:"position,omitempty"`
}

func (r *InsertBlockRequest) Validate() error {
	if err := r.BlockTarget.validate("insert block"); err != nil {
		return err
	}
	if r.Block == nil {
		if r.BlockType == "" {
			return NewValidationError("invalid insert block request: block or blockType is required")
		}
		b, err := blocks.NewBlock(r.BlockType)
		if err != nil {
			return NewValidationError(fmt.Sprintf("invalid insert block request: %v", err))
		}
		r.Block = b
	}
	if err := ValidateBlock(r.Block); err != nil {
		return fmt.Errorf("invalid insert block request: %w", err)
	}
	return nil
}

// InsertPosition returns the requested position, -1 meaning append
func (r *InsertBlockRequest) InsertPosition() int {
	if r.Position == nil {
		return -1
	}
	return *r.Position
}

type UpdateBlockRequest struct {
	BlockTarget
	Block blocks.Block `json:"-"`
}

func (r *UpdateBlockRequest) Validate() error {
	if err := r.BlockTarget.validate("update block"); err != nil {
		return err
	}
	if r.Block == nil {
		return NewValidationError("invalid update block request: block is required")
	}
	if err := ValidateBlock(r.Block); err != nil {
		return fmt.Errorf("invalid update block request: %w", err)
	}
	return nil
}

// DeleteBlockRequest removes a block. A member of an inline group takes the whole group
// with it unless SingleBlock is set.
type DeleteBlockRequest struct {
	BlockTarget
	BlockID     string `json:"blockId"`
	SingleBlock bool   `json:"singleBlock,omitempty"`
}

func (r *DeleteBlockRequest) Validate() error {
	if err := r.BlockTarget.validate("delete block"); err != nil {
		return err
	}
	if err := validateID("blockId", r.BlockID); err != nil {
		return fmt.Errorf("invalid delete block request: %w", err)
	}
	return nil
}

// DuplicateBlockRequest copies a block with fresh ids. A member of an inline group copies
// the whole group unless SingleBlock is set. The copies land right after the original
// unit unless Position is set.
type DuplicateBlockRequest struct {
	BlockTarget
	BlockID     string `json:"blockId"`
	Position    *int   `json:"position,omitempty"`
	SingleBlock bool   `json:"singleBlock,omitempty"`
}

func (r *DuplicateBlockRequest) Validate() error {
	if err := r.BlockTarget.validate("duplicate block"); err != nil {
		return err
	}
	if err := validateID("blockId", r.BlockID); err != nil {
		return fmt.Errorf("invalid duplicate block request: %w", err)
	}
	return nil
}

type MoveBlockRequest struct {
	BlockTarget
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

func (r *MoveBlockRequest) Validate() error {
	return r.BlockTarget.validate("move block")
}

// --- Section requests ---

type AddSectionRequest struct {
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
}

func (r *AddSectionRequest) Validate() error {
	if err := validateID("templateId", r.TemplateID); err != nil {
		return fmt.Errorf("invalid add section request: %w", err)
	}
	if strings.TrimSpace(r.Name) == "" || len(r.Name) > maxNameLength {
		return NewValidationError(fmt.Sprintf("invalid add section request: name length must be between 1 and %d", maxNameLength))
	}
	return nil
}

type RemoveSectionRequest struct {
	TemplateID string `json:"templateId"`
	SectionID  string `json:"sectionId"`
}

func (r *RemoveSectionRequest) Validate() error {
	if err := validateID("templateId", r.TemplateID); err != nil {
		return fmt.Errorf("invalid remove section request: %w", err)
	}
	if err := validateID("sectionId", r.SectionID); err != nil {
		return fmt.Errorf("invalid remove section request: %w", err)
	}
	return nil
}

type MoveBetweenSectionsRequest struct {
	TemplateID    string `json:"templateId"`
	FromSectionID string `json:"fromSectionId"`
	FromIndex     int    `json:"fromIndex"`
	ToSectionID   string `json:"toSectionId"`
	ToIndex       int    `json:"toIndex"`
}

func (r *MoveBetweenSectionsRequest) Validate() error {
	if err := validateID("templateId", r.TemplateID); err != nil {
		return fmt.Errorf("invalid move between sections request: %w", err)
	}
	if err := validateID("fromSectionId", r.FromSectionID); err != nil {
		return fmt.Errorf("invalid move between sections request: %w", err)
	}
	if err := validateID("toSectionId", r.ToSectionID); err != nil {
		return fmt.Errorf("invalid move between sections request: %w", err)
	}
	return nil
}

// --- Render ---

// ExportFormat selects the markup flavour of an export
type ExportFormat string

const (
	ExportFormatHTML ExportFormat = "html"
	ExportFormatMJML ExportFormat = "mjml"
)

type RenderRequest struct {
	ID       string        `json:"id"`
	Mode     blocks.Mode   `json:"mode"`
	Device   blocks.Device `json:"device,omitempty"`
	Format   ExportFormat  `json:"format,omitempty"`
	Download bool          `json:"download,omitempty"`
}

// FromURLParams reads id, device, format and download; the mode is set by the route
func (r *RenderRequest) FromURLParams(queryParams url.Values) error {
	r.ID = queryParams.Get("id")
	if err := validateID("id", r.ID); err != nil {
		return fmt.Errorf("invalid render request: %w", err)
	}

	r.Device = blocks.Device(queryParams.Get("device"))
	if r.Device == "" {
		r.Device = blocks.DeviceDesktop
	}
	if !r.Device.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid render request: unknown device %q", r.Device))
	}

	r.Format = ExportFormat(queryParams.Get("format"))
	if r.Format == "" {
		r.Format = ExportFormatHTML
	}
	if r.Format != ExportFormatHTML && r.Format != ExportFormatMJML {
		return NewValidationError(fmt.Sprintf("invalid render request: unknown format %q", r.Format))
	}
	if r.Format == ExportFormatMJML && r.Mode != blocks.ModeExport {
		return NewValidationError("invalid render request: mjml is only available for export")
	}

	if d := queryParams.Get("download"); d != "" {
		download, err := strconv.ParseBool(d)
		if err != nil {
			return NewValidationError("invalid render request: download must be a boolean")
		}
		r.Download = download
	}

	return nil
}

type RenderResult struct {
	TemplateID string        `json:"templateId"`
	Mode       blocks.Mode   `json:"mode"`
	Device     blocks.Device `json:"device,omitempty"`
	Format     ExportFormat  `json:"format,omitempty"`
	Subject    string        `json:"subject"`
	Markup     string        `json:"markup"`
	MJML       string        `json:"mjml,omitempty"`
	// EmptyBlocks lists blocks that rendered to nothing, such as unknown types
	EmptyBlocks []string `json:"emptyBlocks,omitempty"`
}

// Clone returns a copy that shares nothing mutable with r
func (r *RenderResult) Clone() *RenderResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.EmptyBlocks != nil {
		out.EmptyBlocks = append([]string(nil), r.EmptyBlocks...)
	}
	return &out
}

// --- Validation helpers ---

func validateID(field, id string) error {
	if id == "" {
		return NewValidationError(fmt.Sprintf("%s is required", field))
	}
	if len(id) > maxIDLength {
		return NewValidationError(fmt.Sprintf("%s length must be between 1 and %d", field, maxIDLength))
	}
	return nil
}

// validateColor accepts an empty value, a hex color, rgb()/rgba() or transparent
func validateColor(field, color string) error {
	if color == "" || color == "transparent" {
		return nil
	}
	if govalidator.IsHexcolor(color) && strings.HasPrefix(color, "#") {
		return nil
	}
	if govalidator.IsRGBcolor(color) || strings.HasPrefix(color, "rgba(") {
		return nil
	}
	return NewValidationError(fmt.Sprintf("%s must be a color, got %q", field, color))
}

// validateLink accepts an empty value, an anchor, a relative path, a merge tag or an absolute URL
func validateLink(field, link string) error {
	if link == "" || link == "#" || strings.HasPrefix(link, "/") || strings.HasPrefix(link, "{{") {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(link))
	for _, scheme := range []string{"javascript:", "vbscript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return NewValidationError(fmt.Sprintf("%s uses a forbidden scheme", field))
		}
	}
	if govalidator.IsURL(link) {
		return nil
	}
	return NewValidationError(fmt.Sprintf("%s must be a valid URL, got %q", field, link))
}

func validateSection(s blocks.Section) error {
	if err := validateID("section id", s.ID); err != nil {
		return err
	}
	if err := validateColor("section backgroundColor", s.BackgroundColor); err != nil {
		return err
	}
	for _, b := range s.Blocks {
		if err := ValidateBlock(b); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBlock checks what the editing surface is trusted to guarantee for blocks
// arriving over the API: known type, an id, known units and safe links.
func ValidateBlock(b blocks.Block) error {
	if b == nil {
		return NewValidationError("block is required")
	}
	if !b.GetType().IsKnown() {
		return NewValidationError(fmt.Sprintf("block %s: unknown type %q", b.GetID(), b.GetType()))
	}
	if err := validateID("block id", b.GetID()); err != nil {
		return err
	}

	base := b.GetBase()
	for _, unit := range []blocks.Unit{base.WidthUnit, base.HeightUnit} {
		if unit != "" && unit != blocks.UnitPx && unit != blocks.UnitPercent {
			return NewValidationError(fmt.Sprintf("block %s: unknown unit %q", base.ID, unit))
		}
	}
	switch base.Visibility {
	case "", blocks.VisibilityAll, blocks.VisibilityDesktop, blocks.VisibilityMobile:
	default:
		return NewValidationError(fmt.Sprintf("block %s: unknown visibility %q", base.ID, base.Visibility))
	}
	if base.BorderWidth < 0 || base.BorderRadius < 0 {
		return NewValidationError(fmt.Sprintf("block %s: border values must not be negative", base.ID))
	}
	if err := validateColor("backgroundColor", base.BackgroundColor); err != nil {
		return fmt.Errorf("block %s: %w", base.ID, err)
	}

	switch v := b.(type) {
	case *blocks.ImageBlock:
		if err := validateLink("src", v.Src); err != nil {
			return fmt.Errorf("block %s: %w", base.ID, err)
		}
		if err := validateLink("link", v.Link); err != nil {
			return fmt.Errorf("block %s: %w", base.ID, err)
		}
	case *blocks.ButtonBlock:
		switch v.LinkType {
		case blocks.LinkTypeEmail:
			if v.Link != "" && !govalidator.IsEmail(v.Link) {
				return NewValidationError(fmt.Sprintf("block %s: link must be an email address", base.ID))
			}
		case blocks.LinkTypePhone:
		default:
			if err := validateLink("link", v.Link); err != nil {
				return fmt.Errorf("block %s: %w", base.ID, err)
			}
		}
	case *blocks.VideoBlock:
		if err := validateLink("videoUrl", v.VideoURL); err != nil {
			return fmt.Errorf("block %s: %w", base.ID, err)
		}
		if err := validateLink("thumbnail", v.Thumbnail); err != nil {
			return fmt.Errorf("block %s: %w", base.ID, err)
		}
	}
	return nil
}

type blockPayload struct {
	Block json.RawMessage `json:"block,omitempty"`
}

func decodeBlock(raw json.RawMessage) (blocks.Block, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	b, err := blocks.UnmarshalBlock(raw)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid block: %v", err))
	}
	return b, nil
}

// UnmarshalJSON decodes the polymorphic block payload
func (r *InsertBlockRequest) UnmarshalJSON(data []byte) error {
	type alias InsertBlockRequest
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var payload blockPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	b, err := decodeBlock(payload.Block)
	if err != nil {
		return err
	}
	*r = InsertBlockRequest(aux)
	r.Block = b
	return nil
}

// UnmarshalJSON decodes the polymorphic block payload
func (r *UpdateBlockRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateBlockRequest
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var payload blockPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	b, err := decodeBlock(payload.Block)
	if err != nil {
		return err
	}
	*r = UpdateBlockRequest(aux)
	r.Block = b
	return nil
}
