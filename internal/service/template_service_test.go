package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/mailblocks/internal/domain"
	domainmocks "github.com/Notifuse/mailblocks/internal/domain/mocks"
	"github.com/Notifuse/mailblocks/internal/service"
	"github.com/Notifuse/mailblocks/pkg/blocks"
	"github.com/Notifuse/mailblocks/pkg/cache"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func setupTemplateServiceTest(ctrl *gomock.Controller) (*service.TemplateService, *domainmocks.MockTemplateRepository, *domainmocks.MockLogger) {
	mockRepo := domainmocks.NewMockTemplateRepository(ctrl)
	mockLogger := domainmocks.NewMockLogger(ctrl)

	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	svc := service.NewTemplateService(service.TemplateServiceConfig{
		Repository: mockRepo,
		Logger:     mockLogger,
		Render: service.RenderSettings{
			MergeData: map[string]interface{}{"first_name": "Ada"},
		},
		Now: func() time.Time { return fixedNow },
	})
	return svc, mockRepo, mockLogger
}

func newBlock(t *testing.T, bt blocks.BlockType, id string) blocks.Block {
	t.Helper()
	b, err := blocks.NewBlock(bt)
	require.NoError(t, err)
	b.SetID(id)
	return b
}

func testTemplate(t *testing.T, ids ...string) *domain.Template {
	t.Helper()
	template := blocks.NewDocument("Newsletter")
	template.ID = "tpl-1"
	template.Subject = "Weekly news"
	for _, id := range ids {
		template.Blocks = append(template.Blocks, newBlock(t, blocks.BlockTypeText, id))
	}
	return template
}

func blockIDs(list []blocks.Block) []string {
	ids := make([]string, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.GetID())
	}
	return ids
}

// savedTemplate captures the document handed to UpdateTemplate
func savedTemplate(repo *domainmocks.MockTemplateRepository, out **domain.Template) {
	repo.EXPECT().UpdateTemplate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, template *domain.Template) error {
			*out = template
			return nil
		})
}

func TestTemplateService_CreateTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("generates an id and stamps timestamps", func(t *testing.T) {
		template := &domain.Template{Name: "Fresh"}
		mockRepo.EXPECT().CreateTemplate(gomock.Any(), template).Return(nil)

		err := svc.CreateTemplate(ctx, template)
		require.NoError(t, err)
		assert.NotEmpty(t, template.ID)
		assert.Equal(t, fixedNow, template.CreatedAt)
		assert.Equal(t, fixedNow, template.UpdatedAt)
		assert.NotNil(t, template.Blocks)
	})

	t.Run("repository error", func(t *testing.T) {
		template := testTemplate(t)
		mockRepo.EXPECT().CreateTemplate(gomock.Any(), template).Return(errors.New("db down"))
		mockLogger.EXPECT().Error(gomock.Any())

		err := svc.CreateTemplate(ctx, template)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create template")
		assert.Equal(t, "tpl-1", template.ID)
	})
}

func TestTemplateService_GetTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		template := testTemplate(t, "a")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)

		got, err := svc.GetTemplate(ctx, "tpl-1")
		require.NoError(t, err)
		assert.Same(t, template, got)
	})

	t.Run("not found passes through", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "missing").
			Return(nil, &domain.ErrTemplateNotFound{ID: "missing"})

		_, err := svc.GetTemplate(ctx, "missing")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("repository error is wrapped and logged", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(nil, errors.New("timeout"))
		mockLogger.EXPECT().Error(gomock.Any())

		_, err := svc.GetTemplate(ctx, "tpl-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get template: timeout")
	})
}

func TestTemplateService_ListTemplates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()
	params := domain.ListTemplatesRequest{Search: "news", Limit: 10}

	mockRepo.EXPECT().ListTemplates(gomock.Any(), params).Return([]*domain.Template{testTemplate(t)}, nil)
	got, err := svc.ListTemplates(ctx, params)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	mockRepo.EXPECT().ListTemplates(gomock.Any(), params).Return(nil, errors.New("boom"))
	mockLogger.EXPECT().Error(gomock.Any())
	_, err = svc.ListTemplates(ctx, params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list templates")
}

func TestTemplateService_UpdateTemplateSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	template := testTemplate(t, "a", "b")
	mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)
	var saved *domain.Template
	savedTemplate(mockRepo, &saved)

	subject := "Changed"
	useSections := true
	got, err := svc.UpdateTemplateSettings(ctx, domain.UpdateTemplateRequest{
		ID:          "tpl-1",
		Subject:     &subject,
		UseSections: &useSections,
	})
	require.NoError(t, err)
	assert.Same(t, saved, got)
	assert.Equal(t, "Changed", got.Subject)
	assert.Equal(t, fixedNow, got.UpdatedAt)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, []string{"a", "b"}, blockIDs(got.Sections[0].Blocks))
	assert.Equal(t, "Weekly news", template.Subject, "the loaded template is not modified")
}

func TestTemplateService_DeleteTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	mockRepo.EXPECT().DeleteTemplate(gomock.Any(), "tpl-1").Return(nil)
	require.NoError(t, svc.DeleteTemplate(ctx, "tpl-1"))

	mockRepo.EXPECT().DeleteTemplate(gomock.Any(), "tpl-2").Return(&domain.ErrTemplateNotFound{ID: "tpl-2"})
	err := svc.DeleteTemplate(ctx, "tpl-2")
	assert.True(t, domain.IsNotFound(err))

	mockRepo.EXPECT().DeleteTemplate(gomock.Any(), "tpl-3").Return(errors.New("locked"))
	mockLogger.EXPECT().Error(gomock.Any())
	err = svc.DeleteTemplate(ctx, "tpl-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete template")
}

func TestTemplateService_InsertBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("at a position", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a", "b"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		position := 1
		got, err := svc.InsertBlock(ctx, domain.InsertBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			Block:       newBlock(t, blocks.BlockTypeButton, "new"),
			Position:    &position,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "new", "b"}, blockIDs(got.Blocks))
		assert.Equal(t, fixedNow, saved.UpdatedAt)
	})

	t.Run("appends without a position", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.InsertBlock(ctx, domain.InsertBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			Block:       newBlock(t, blocks.BlockTypeDivider, "new"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "new"}, blockIDs(got.Blocks))
	})

	t.Run("into a section", func(t *testing.T) {
		template, section := testTemplate(t, "a").AddSection("Main")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.InsertBlock(ctx, domain.InsertBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1", SectionID: section.ID},
			Block:       newBlock(t, blocks.BlockTypeSpacer, "new"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "new"}, blockIDs(got.Sections[0].Blocks))
		assert.Empty(t, got.Blocks)
	})

	t.Run("unknown section", func(t *testing.T) {
		template, _ := testTemplate(t, "a").AddSection("Main")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)

		_, err := svc.InsertBlock(ctx, domain.InsertBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1", SectionID: "nope"},
			Block:       newBlock(t, blocks.BlockTypeSpacer, "new"),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, blocks.ErrSectionNotFound))
	})
}

func TestTemplateService_UpdateBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("replaces the block with the same id", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a", "b"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		replacement := newBlock(t, blocks.BlockTypeText, "b").(*blocks.TextBlock)
		replacement.Content = "updated"

		got, err := svc.UpdateBlock(ctx, domain.UpdateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			Block:       replacement,
		})
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Blocks[1].(*blocks.TextBlock).Content)
	})

	t.Run("missing id is a silent no-op", func(t *testing.T) {
		template := testTemplate(t, "a")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)

		got, err := svc.UpdateBlock(ctx, domain.UpdateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			Block:       newBlock(t, blocks.BlockTypeText, "gone"),
		})
		require.NoError(t, err)
		assert.Same(t, template, got)
	})
}

func TestTemplateService_DeleteBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	inlineTemplate := func() *domain.Template {
		template := testTemplate(t, "a", "b", "c")
		template.Blocks[0].GetBase().DisplayMode = blocks.DisplayModeInline
		template.Blocks[1].GetBase().DisplayMode = blocks.DisplayModeInline
		return template
	}

	t.Run("group member takes its group by default", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(inlineTemplate(), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.DeleteBlock(ctx, domain.DeleteBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "a",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, blockIDs(got.Blocks))
		require.NotNil(t, saved)
		assert.Equal(t, []string{"c"}, blockIDs(saved.Blocks))
	})

	t.Run("single block opt-out", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(inlineTemplate(), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.DeleteBlock(ctx, domain.DeleteBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "b",
			SingleBlock: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, blockIDs(got.Blocks))
	})

	t.Run("standalone block", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(inlineTemplate(), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.DeleteBlock(ctx, domain.DeleteBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "c",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, blockIDs(got.Blocks))
	})

	t.Run("missing id is a silent no-op", func(t *testing.T) {
		template := inlineTemplate()
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)

		got, err := svc.DeleteBlock(ctx, domain.DeleteBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "gone",
		})
		require.NoError(t, err)
		assert.Len(t, got.Blocks, 3)
	})
}

func TestTemplateService_DuplicateBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, _ := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("copy lands after the original", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a", "b"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.DuplicateBlock(ctx, domain.DuplicateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "a",
		})
		require.NoError(t, err)
		require.Len(t, got.Blocks, 3)
		assert.Equal(t, "a", got.Blocks[0].GetID())
		assert.NotEqual(t, "a", got.Blocks[1].GetID())
		assert.Equal(t, blocks.BlockTypeText, got.Blocks[1].GetType())
		assert.Equal(t, "b", got.Blocks[2].GetID())
	})

	t.Run("explicit position", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a", "b"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		position := 0
		got, err := svc.DuplicateBlock(ctx, domain.DuplicateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "b",
			Position:    &position,
		})
		require.NoError(t, err)
		require.Len(t, got.Blocks, 3)
		assert.Equal(t, []string{"a", "b"}, blockIDs(got.Blocks[1:]))
	})

	inlineTemplate := func() *domain.Template {
		template := testTemplate(t, "a", "b", "c")
		template.Blocks[0].GetBase().DisplayMode = blocks.DisplayModeInline
		template.Blocks[1].GetBase().DisplayMode = blocks.DisplayModeInline
		return template
	}

	t.Run("group member copies its group by default", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(inlineTemplate(), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.DuplicateBlock(ctx, domain.DuplicateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "a",
		})
		require.NoError(t, err)
		require.Len(t, got.Blocks, 5)
		assert.Equal(t, []string{"a", "b"}, blockIDs(got.Blocks[:2]))
		assert.Equal(t, "c", got.Blocks[4].GetID())
		assert.NotContains(t, []string{"a", "b", "c"}, got.Blocks[2].GetID())
		assert.NotContains(t, []string{"a", "b", "c"}, got.Blocks[3].GetID())
		assert.True(t, got.Blocks[2].IsInline())
		assert.True(t, got.Blocks[3].IsInline())

		units := blocks.GroupBlocks(got.Blocks)
		require.Len(t, units, 2)
		assert.Len(t, units[0].Blocks, 4)
	})

	t.Run("group copy honors an explicit position", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(inlineTemplate(), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		position := 3
		got, err := svc.DuplicateBlock(ctx, domain.DuplicateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "b",
			Position:    &position,
		})
		require.NoError(t, err)
		require.Len(t, got.Blocks, 5)
		assert.Equal(t, []string{"a", "b", "c"}, blockIDs(got.Blocks[:3]))
		assert.True(t, got.Blocks[3].IsInline())
		assert.True(t, got.Blocks[4].IsInline())
	})

	t.Run("single block opt-out", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(inlineTemplate(), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.DuplicateBlock(ctx, domain.DuplicateBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			BlockID:     "a",
			SingleBlock: true,
		})
		require.NoError(t, err)
		require.Len(t, got.Blocks, 4)
		assert.Equal(t, "a", got.Blocks[0].GetID())
		assert.NotEqual(t, "a", got.Blocks[1].GetID())
		assert.Equal(t, []string{"b", "c"}, blockIDs(got.Blocks[2:]))
	})
}

func TestTemplateService_MoveBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("reorders the list", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a", "b", "c"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.MoveBlock(ctx, domain.MoveBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			FromIndex:   0,
			ToIndex:     2,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, blockIDs(got.Blocks))
	})

	t.Run("out of range is rejected and logged", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a", "b"), nil)
		mockLogger.EXPECT().Warn("Move rejected")

		_, err := svc.MoveBlock(ctx, domain.MoveBlockRequest{
			BlockTarget: domain.BlockTarget{TemplateID: "tpl-1"},
			FromIndex:   0,
			ToIndex:     2,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, blocks.ErrIndexOutOfRange))
	})
}

func TestTemplateService_Sections(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("add section adopts top-level blocks", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a"), nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, section, err := svc.AddSection(ctx, domain.AddSectionRequest{TemplateID: "tpl-1", Name: "Hero"})
		require.NoError(t, err)
		require.NotNil(t, section)
		assert.Equal(t, "Hero", section.Name)
		assert.True(t, got.UseSections)
		assert.Equal(t, []string{"a"}, blockIDs(got.Sections[0].Blocks))
	})

	t.Run("remove section", func(t *testing.T) {
		template, first := testTemplate(t, "a").AddSection("One")
		template, _ = template.AddSection("Two")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.RemoveSection(ctx, domain.RemoveSectionRequest{TemplateID: "tpl-1", SectionID: first.ID})
		require.NoError(t, err)
		require.Len(t, got.Sections, 1)
		assert.Equal(t, "Two", got.Sections[0].Name)
	})

	t.Run("remove unknown section", func(t *testing.T) {
		template, _ := testTemplate(t).AddSection("One")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)

		_, err := svc.RemoveSection(ctx, domain.RemoveSectionRequest{TemplateID: "tpl-1", SectionID: "nope"})
		assert.True(t, errors.Is(err, blocks.ErrSectionNotFound))
	})

	t.Run("move between sections", func(t *testing.T) {
		template, first := testTemplate(t, "a", "b").AddSection("One")
		template, second := template.AddSection("Two")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)
		var saved *domain.Template
		savedTemplate(mockRepo, &saved)

		got, err := svc.MoveBlockBetweenSections(ctx, domain.MoveBetweenSectionsRequest{
			TemplateID:    "tpl-1",
			FromSectionID: first.ID,
			FromIndex:     1,
			ToSectionID:   second.ID,
			ToIndex:       0,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, blockIDs(got.Sections[0].Blocks))
		assert.Equal(t, []string{"b"}, blockIDs(got.Sections[1].Blocks))
	})

	t.Run("move between sections out of range", func(t *testing.T) {
		template, first := testTemplate(t, "a").AddSection("One")
		template, second := template.AddSection("Two")
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)
		mockLogger.EXPECT().Warn("Move rejected")

		_, err := svc.MoveBlockBetweenSections(ctx, domain.MoveBetweenSectionsRequest{
			TemplateID:    "tpl-1",
			FromSectionID: first.ID,
			FromIndex:     0,
			ToSectionID:   second.ID,
			ToIndex:       3,
		})
		assert.True(t, errors.Is(err, blocks.ErrIndexOutOfRange))
	})

	t.Run("move between sections needs sections", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(testTemplate(t, "a"), nil)

		_, err := svc.MoveBlockBetweenSections(ctx, domain.MoveBetweenSectionsRequest{
			TemplateID:    "tpl-1",
			FromSectionID: "x",
			ToSectionID:   "y",
		})
		assert.True(t, domain.IsValidationError(err))
	})
}

func visibilityTemplate(t *testing.T) *domain.Template {
	t.Helper()
	title := newBlock(t, blocks.BlockTypeTitle, "title").(*blocks.TitleBlock)
	title.Content = "Title"
	text := newBlock(t, blocks.BlockTypeText, "text").(*blocks.TextBlock)
	text.Content = "Hello {{ first_name }}"
	text.Visibility = blocks.VisibilityDesktop
	image := newBlock(t, blocks.BlockTypeImage, "image")
	image.GetBase().Visibility = blocks.VisibilityMobile

	template := testTemplate(t)
	template.Blocks = blocks.BlockList{title, text, image}
	return template
}

func TestTemplateService_Render(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockRepo, mockLogger := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("preview filters by device", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(visibilityTemplate(t), nil)

		got, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModePreview, Device: blocks.DeviceMobile})
		require.NoError(t, err)
		assert.Equal(t, blocks.DeviceMobile, got.Device)
		assert.Contains(t, got.Markup, `data-block-id="title"`)
		assert.Contains(t, got.Markup, `data-block-id="image"`)
		assert.NotContains(t, got.Markup, `data-block-id="text"`)
		assert.Empty(t, got.EmptyBlocks)
	})

	t.Run("preview compiles merge tags", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(visibilityTemplate(t), nil)

		got, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModePreview})
		require.NoError(t, err)
		assert.Equal(t, blocks.DeviceDesktop, got.Device)
		assert.Contains(t, got.Markup, "Hello Ada")
	})

	t.Run("source keeps every block", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(visibilityTemplate(t), nil)

		got, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModeSource})
		require.NoError(t, err)
		for _, id := range []string{"title", "text", "image"} {
			assert.Contains(t, got.Markup, `data-block-id="`+id+`"`)
		}
		assert.Empty(t, got.Device)
	})

	t.Run("export is a standalone page", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(visibilityTemplate(t), nil)

		got, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModeExport, Format: domain.ExportFormatHTML})
		require.NoError(t, err)
		assert.Equal(t, domain.ExportFormatHTML, got.Format)
		assert.Contains(t, got.Markup, "<!DOCTYPE html>")
		assert.Contains(t, got.Markup, "<title>Weekly news</title>")
		for _, id := range []string{"title", "text", "image"} {
			assert.Contains(t, got.Markup, `data-block-id="`+id+`"`)
		}
	})

	t.Run("export as mjml", func(t *testing.T) {
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(visibilityTemplate(t), nil)

		got, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModeExport, Format: domain.ExportFormatMJML})
		require.NoError(t, err)
		assert.Equal(t, domain.ExportFormatMJML, got.Format)
		assert.Contains(t, got.MJML, "<mjml>")
		assert.Contains(t, got.Markup, "<!doctype html>")
	})

	t.Run("unknown blocks are reported", func(t *testing.T) {
		unknown, err := blocks.UnmarshalBlock([]byte(`{"id":"u1","type":"countdown","visibility":"all"}`))
		require.NoError(t, err)
		template := visibilityTemplate(t)
		template.Blocks = append(template.Blocks, unknown)
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil)
		mockLogger.EXPECT().Warn("Block rendered to an empty fragment")

		got, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModeSource})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, got.EmptyBlocks)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := svc.Render(ctx, domain.RenderRequest{ID: "tpl-1", Mode: "print"})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestTemplateService_RenderDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := setupTemplateServiceTest(ctrl)
	ctx := context.Background()

	t.Run("renders without touching the repository", func(t *testing.T) {
		got, err := svc.RenderDocument(ctx, visibilityTemplate(t), domain.RenderRequest{Mode: blocks.ModePreview, Device: blocks.DeviceMobile})
		require.NoError(t, err)
		assert.Equal(t, "tpl-1", got.TemplateID)
		assert.NotContains(t, got.Markup, `data-block-id="text"`)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := svc.RenderDocument(ctx, visibilityTemplate(t), domain.RenderRequest{Mode: "print"})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestTemplateService_RenderCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domainmocks.NewMockTemplateRepository(ctrl)
	mockLogger := domainmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()

	renderCache := cache.New[*domain.RenderResult](time.Minute, 10)
	defer renderCache.Stop()

	svc := service.NewTemplateService(service.TemplateServiceConfig{
		Repository:  mockRepo,
		Logger:      mockLogger,
		RenderCache: renderCache,
		Now:         func() time.Time { return fixedNow },
	})
	ctx := context.Background()
	req := domain.RenderRequest{ID: "tpl-1", Mode: blocks.ModeExport, Format: domain.ExportFormatHTML}

	template := visibilityTemplate(t)
	template.UpdatedAt = fixedNow
	mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(template, nil).Times(2)

	first, err := svc.Render(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, renderCache.Len())

	first.Markup = "mutated"
	second, err := svc.Render(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, second.Markup, "<!DOCTYPE html>", "callers get copies of cached results")
	assert.Equal(t, 1, renderCache.Len())

	t.Run("a newer revision misses", func(t *testing.T) {
		updated := visibilityTemplate(t)
		updated.UpdatedAt = fixedNow.Add(time.Second)
		mockRepo.EXPECT().GetTemplateByID(gomock.Any(), "tpl-1").Return(updated, nil)

		_, err := svc.Render(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 2, renderCache.Len())
	})

	t.Run("delete drops the template entries", func(t *testing.T) {
		mockRepo.EXPECT().DeleteTemplate(gomock.Any(), "tpl-1").Return(nil)

		require.NoError(t, svc.DeleteTemplate(ctx, "tpl-1"))
		assert.Equal(t, 0, renderCache.Len())
	})
}

func TestBuildStandaloneHTML(t *testing.T) {
	doc := blocks.NewDocument("Shell")
	doc.Subject = `Deals & "offers"`
	doc.DocumentBackgroundColor = "#eeeeee"

	out := service.BuildStandaloneHTML(doc, "<div>body</div>")
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `<meta charset="utf-8">`)
	assert.Contains(t, out, `name="viewport"`)
	assert.Contains(t, out, "<title>Deals &amp; &#34;offers&#34;</title>")
	assert.Contains(t, out, "background-color:#eeeeee;")
	assert.Contains(t, out, "<div>body</div>")
}
