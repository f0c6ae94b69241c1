package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Notifuse/mailblocks/internal/domain"
	"github.com/Notifuse/mailblocks/pkg/blocks"
	"github.com/Notifuse/mailblocks/pkg/cache"
	"github.com/Notifuse/mailblocks/pkg/logger"
	"github.com/Notifuse/mailblocks/pkg/mjml"
	"github.com/Notifuse/mailblocks/pkg/richtext"
	"github.com/Notifuse/mailblocks/pkg/tracing"
)

const serviceName = "TemplateService"

// RenderSettings are the serializer knobs that come from configuration
type RenderSettings struct {
	GroupGap     int
	ContentWidth int
	IconBaseURL  string
	MergeData    map[string]interface{}
}

type TemplateService struct {
	repo     domain.TemplateRepository
	logger   logger.Logger
	tracer   tracing.Tracer
	render   RenderSettings
	richText blocks.RichText
	cache    *cache.TTL[*domain.RenderResult]
	now      func() time.Time
}

type TemplateServiceConfig struct {
	Repository domain.TemplateRepository
	Logger     logger.Logger
	Tracer     tracing.Tracer
	Render     RenderSettings
	// RichText defaults to a richtext.Processor over Render.MergeData
	RichText blocks.RichText
	// RenderCache memoizes stored template renders; nil disables it
	RenderCache *cache.TTL[*domain.RenderResult]
	// Now defaults to time.Now
	Now func() time.Time
}

func NewTemplateService(cfg TemplateServiceConfig) *TemplateService {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = tracing.GetTracer()
	}

	richText := cfg.RichText
	if richText == nil {
		richText = richtext.NewProcessor(
			richtext.WithMergeData(cfg.Render.MergeData),
			richtext.WithLogger(cfg.Logger),
		)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TemplateService{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		tracer:   tracer,
		render:   cfg.Render,
		richText: richText,
		cache:    cfg.RenderCache,
		now:      now,
	}
}

func (s *TemplateService) CreateTemplate(ctx context.Context, template *domain.Template) error {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "CreateTemplate")
	defer span.End()

	if template.ID == "" {
		template.ID = blocks.NewID()
	}
	s.tracer.AddAttribute(ctx, "template.id", template.ID)

	now := s.now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now
	if template.Blocks == nil {
		template.Blocks = blocks.BlockList{}
	}

	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		s.tracer.MarkSpanError(ctx, err)
		s.logger.WithField("template_id", template.ID).Error(fmt.Sprintf("Failed to create template: %v", err))
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "GetTemplate")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", id)

	return s.load(ctx, id)
}

func (s *TemplateService) ListTemplates(ctx context.Context, params domain.ListTemplatesRequest) ([]*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "ListTemplates")
	defer span.End()

	templates, err := s.repo.ListTemplates(ctx, params)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		s.logger.Error(fmt.Sprintf("Failed to list templates: %v", err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	s.tracer.AddAttribute(ctx, "templates.count", len(templates))
	return templates, nil
}

func (s *TemplateService) UpdateTemplateSettings(ctx context.Context, req domain.UpdateTemplateRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "UpdateTemplateSettings")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.ID)

	template, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req.Apply(template))
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "DeleteTemplate")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", id)

	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		s.tracer.MarkSpanError(ctx, err)
		if domain.IsNotFound(err) {
			return err
		}
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to delete template: %v", err))
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if s.cache != nil {
		s.cache.DeletePrefix(id + "|")
	}
	return nil
}

func (s *TemplateService) InsertBlock(ctx context.Context, req domain.InsertBlockRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "InsertBlock")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)
	s.tracer.AddAttribute(ctx, "block.type", string(req.Block.GetType()))

	return s.editBlocks(ctx, req.BlockTarget, func(list []blocks.Block) ([]blocks.Block, error) {
		return blocks.Insert(list, req.Block, req.InsertPosition()), nil
	})
}

// UpdateBlock replaces the block with the same id. An id that is no longer in the
// list leaves the template as it is.
func (s *TemplateService) UpdateBlock(ctx context.Context, req domain.UpdateBlockRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "UpdateBlock")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)
	s.tracer.AddAttribute(ctx, "block.id", req.Block.GetID())

	return s.editBlocks(ctx, req.BlockTarget, func(list []blocks.Block) ([]blocks.Block, error) {
		if blocks.IndexOf(list, req.Block.GetID()) < 0 {
			s.logMissingBlock(req.TemplateID, req.Block.GetID(), "update")
			return nil, nil
		}
		return blocks.Update(list, req.Block), nil
	})
}

func (s *TemplateService) DeleteBlock(ctx context.Context, req domain.DeleteBlockRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "DeleteBlock")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)
	s.tracer.AddAttribute(ctx, "block.id", req.BlockID)

	return s.editBlocks(ctx, req.BlockTarget, func(list []blocks.Block) ([]blocks.Block, error) {
		if blocks.IndexOf(list, req.BlockID) < 0 {
			s.logMissingBlock(req.TemplateID, req.BlockID, "delete")
			return nil, nil
		}
		if !req.SingleBlock && blocks.InGroup(list, req.BlockID) {
			return blocks.DeleteUnit(list, req.BlockID), nil
		}
		return blocks.Delete(list, req.BlockID), nil
	})
}

// DuplicateBlock copies the block with fresh ids, right after the original unless a
// position is given. A group member copies its whole group as one run.
func (s *TemplateService) DuplicateBlock(ctx context.Context, req domain.DuplicateBlockRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "DuplicateBlock")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)
	s.tracer.AddAttribute(ctx, "block.id", req.BlockID)

	return s.editBlocks(ctx, req.BlockTarget, func(list []blocks.Block) ([]blocks.Block, error) {
		idx := blocks.IndexOf(list, req.BlockID)
		if idx < 0 {
			s.logMissingBlock(req.TemplateID, req.BlockID, "duplicate")
			return nil, nil
		}
		if !req.SingleBlock && blocks.InGroup(list, req.BlockID) {
			if req.Position != nil {
				return blocks.DuplicateUnitAt(list, req.BlockID, *req.Position), nil
			}
			return blocks.DuplicateUnit(list, req.BlockID), nil
		}
		position := idx + 1
		if req.Position != nil {
			position = *req.Position
		}
		out, _ := blocks.Duplicate(list, list[idx], position)
		return out, nil
	})
}

func (s *TemplateService) MoveBlock(ctx context.Context, req domain.MoveBlockRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "MoveBlock")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)

	return s.editBlocks(ctx, req.BlockTarget, func(list []blocks.Block) ([]blocks.Block, error) {
		out, err := blocks.Move(list, req.FromIndex, req.ToIndex)
		if err != nil {
			s.logRejectedMove(req.TemplateID, req.FromIndex, req.ToIndex, err)
			return nil, err
		}
		return out, nil
	})
}

func (s *TemplateService) AddSection(ctx context.Context, req domain.AddSectionRequest) (*domain.Template, *blocks.Section, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "AddSection")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)

	template, err := s.load(ctx, req.TemplateID)
	if err != nil {
		return nil, nil, err
	}

	next, section := template.AddSection(req.Name)
	saved, err := s.save(ctx, next)
	if err != nil {
		return nil, nil, err
	}
	return saved, &section, nil
}

func (s *TemplateService) RemoveSection(ctx context.Context, req domain.RemoveSectionRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "RemoveSection")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)
	s.tracer.AddAttribute(ctx, "section.id", req.SectionID)

	template, err := s.load(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	next, err := template.RemoveSection(req.SectionID)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *TemplateService) MoveBlockBetweenSections(ctx context.Context, req domain.MoveBetweenSectionsRequest) (*domain.Template, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "MoveBlockBetweenSections")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.TemplateID)

	template, err := s.load(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if !template.UseSections {
		return nil, domain.NewValidationError("template does not use sections")
	}

	next, err := blocks.MoveBetweenSections(template, req.FromSectionID, req.FromIndex, req.ToSectionID, req.ToIndex)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		if errors.Is(err, blocks.ErrIndexOutOfRange) {
			s.logRejectedMove(req.TemplateID, req.FromIndex, req.ToIndex, err)
		}
		return nil, err
	}
	return s.save(ctx, next)
}

// Render serializes the template. Preview filters by device, source and export keep
// every block; an export is either a standalone HTML page or compiled MJML.
func (s *TemplateService) Render(ctx context.Context, req domain.RenderRequest) (*domain.RenderResult, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "Render")
	defer span.End()
	s.tracer.AddAttribute(ctx, "template.id", req.ID)
	s.tracer.AddAttribute(ctx, "render.mode", string(req.Mode))

	if !req.Mode.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown render mode %q", req.Mode))
	}

	template, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	if s.cache == nil {
		result, err := s.renderDocument(ctx, template, req)
		if err == nil {
			tracing.RecordRender(ctx, string(req.Mode), string(result.Format), false, time.Since(started), len(result.EmptyBlocks))
		}
		return result, err
	}

	result, hit, err := s.cache.GetOrCompute(renderCacheKey(template, req), func() (*domain.RenderResult, error) {
		return s.renderDocument(ctx, template, req)
	})
	if err != nil {
		return nil, err
	}
	s.tracer.AddAttribute(ctx, "render.cache_hit", hit)
	tracing.RecordRender(ctx, string(req.Mode), string(result.Format), hit, time.Since(started), len(result.EmptyBlocks))
	return result.Clone(), nil
}

// renderCacheKey starts with the template id so a delete can drop every entry of a
// template. UpdatedAt changes on each save, which retires stale renders.
func renderCacheKey(template *domain.Template, req domain.RenderRequest) string {
	device := ""
	if req.Mode == blocks.ModePreview {
		device = string(req.Device)
		if device == "" {
			device = string(blocks.DeviceDesktop)
		}
	}
	format := ""
	if req.Mode == blocks.ModeExport {
		format = string(req.Format)
		if format == "" {
			format = string(domain.ExportFormatHTML)
		}
	}
	return fmt.Sprintf("%s|%d|%s|%s|%s", template.ID, template.UpdatedAt.UnixNano(), req.Mode, device, format)
}

// RenderDocument serializes a document that is not stored, such as a file given to the CLI.
// req.ID is ignored.
func (s *TemplateService) RenderDocument(ctx context.Context, template *domain.Template, req domain.RenderRequest) (*domain.RenderResult, error) {
	ctx, span := s.tracer.StartServiceSpan(ctx, serviceName, "RenderDocument")
	defer span.End()

	if !req.Mode.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown render mode %q", req.Mode))
	}
	return s.renderDocument(ctx, template, req)
}

func (s *TemplateService) renderDocument(ctx context.Context, template *domain.Template, req domain.RenderRequest) (*domain.RenderResult, error) {
	opts := s.serializeOptions(req.Mode, req.Device)
	result := &domain.RenderResult{
		TemplateID: template.ID,
		Mode:       req.Mode,
		Subject:    template.Subject,
	}
	if req.Mode == blocks.ModePreview {
		result.Device = req.Device
		if result.Device == "" {
			result.Device = blocks.DeviceDesktop
		}
	}

	switch {
	case req.Mode == blocks.ModeExport && req.Format == domain.ExportFormatMJML:
		result.Format = domain.ExportFormatMJML
		compiled, err := mjml.CompileDocument(ctx, template, opts)
		if err != nil {
			s.tracer.MarkSpanError(ctx, err)
			s.logger.WithField("template_id", template.ID).Error(fmt.Sprintf("Failed to compile mjml: %v", err))
			return nil, fmt.Errorf("failed to compile mjml: %w", err)
		}
		if compiled.Error != nil {
			err := fmt.Errorf("failed to compile mjml: %s", compiled.Error.Message)
			s.tracer.MarkSpanError(ctx, err)
			s.logger.WithField("template_id", template.ID).Error(err.Error())
			return nil, err
		}
		result.MJML = compiled.MJML
		result.Markup = compiled.HTML
	case req.Mode == blocks.ModeExport:
		result.Format = domain.ExportFormatHTML
		result.Markup = BuildStandaloneHTML(template, blocks.Serialize(template, opts))
	default:
		result.Markup = blocks.Serialize(template, opts)
	}

	result.EmptyBlocks = s.emptyBlocks(template, opts)
	return result, nil
}

func (s *TemplateService) serializeOptions(mode blocks.Mode, device blocks.Device) blocks.SerializeOptions {
	return blocks.SerializeOptions{
		Mode:         mode,
		Device:       device,
		RichText:     s.richText,
		GroupGap:     s.render.GroupGap,
		ContentWidth: s.render.ContentWidth,
		IconBaseURL:  s.render.IconBaseURL,
	}
}

// emptyBlocks lists the blocks that rendered to nothing and logs them; the serializer
// fails closed on them without reporting anything
func (s *TemplateService) emptyBlocks(template *domain.Template, opts blocks.SerializeOptions) []string {
	var ids []string
	for _, b := range template.AllBlocks() {
		if blocks.RenderBlock(b, opts) != "" {
			continue
		}
		ids = append(ids, b.GetID())
		s.logger.WithFields(map[string]interface{}{
			"template_id": template.ID,
			"block_id":    b.GetID(),
			"block_type":  string(b.GetType()),
		}).Warn("Block rendered to an empty fragment")
	}
	return ids
}

func (s *TemplateService) load(ctx context.Context, id string) (*domain.Template, error) {
	template, err := s.repo.GetTemplateByID(ctx, id)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to get template: %v", err))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) save(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	template.Touch(s.now())
	if err := s.repo.UpdateTemplate(ctx, template); err != nil {
		s.tracer.MarkSpanError(ctx, err)
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("template_id", template.ID).Error(fmt.Sprintf("Failed to update template: %v", err))
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

// editBlocks loads the template, hands the targeted block list to edit and saves the
// replacement. A nil list from edit means nothing changed and nothing is written.
func (s *TemplateService) editBlocks(ctx context.Context, target domain.BlockTarget, edit func([]blocks.Block) ([]blocks.Block, error)) (*domain.Template, error) {
	template, err := s.load(ctx, target.TemplateID)
	if err != nil {
		return nil, err
	}

	list, err := template.BlockList(target.SectionID)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		return nil, err
	}

	updated, err := edit(list)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		return nil, err
	}
	if updated == nil {
		return template, nil
	}

	next, err := template.ReplaceBlockList(target.SectionID, updated)
	if err != nil {
		s.tracer.MarkSpanError(ctx, err)
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *TemplateService) logMissingBlock(templateID, blockID, op string) {
	s.logger.WithFields(map[string]interface{}{
		"template_id": templateID,
		"block_id":    blockID,
		"operation":   op,
	}).Debug("Block not found, edit ignored")
}

func (s *TemplateService) logRejectedMove(templateID string, from, to int, err error) {
	s.logger.WithFields(map[string]interface{}{
		"template_id": templateID,
		"from_index":  from,
		"to_index":    to,
		"error":       err.Error(),
	}).Warn("Move rejected")
}
