package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Notifuse/mailblocks/internal/domain"
)

var templateColumns = []string{
	"id",
	"name",
	"subject",
	"blocks",
	"background_color",
	"document_background_color",
	"padding",
	"use_sections",
	"sections",
	"created_at",
	"updated_at",
}

type templateRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewTemplateRepository creates a new PostgreSQL template repository.
// Blocks and sections are stored as JSONB documents.
func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *templateRepository) CreateTemplate(ctx context.Context, template *domain.Template) error {
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}
	if template.UpdatedAt.IsZero() {
		template.UpdatedAt = template.CreatedAt
	}

	query, args, err := r.psql.Insert("templates").
		Columns(templateColumns...).
		Values(
			template.ID,
			template.Name,
			template.Subject,
			template.Blocks,
			template.BackgroundColor,
			template.DocumentBackgroundColor,
			template.Padding,
			template.UseSections,
			template.Sections,
			template.CreatedAt,
			template.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	query, args, err := r.psql.Select(templateColumns...).
		From("templates").
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrTemplateNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (r *templateRepository) ListTemplates(ctx context.Context, params domain.ListTemplatesRequest) ([]*domain.Template, error) {
	selectBuilder := r.psql.Select(templateColumns...).
		From("templates").
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("updated_at DESC", "id")

	if params.Search != "" {
		selectBuilder = selectBuilder.Where(sq.Or{
			sq.ILike{"name": "%" + params.Search + "%"},
			sq.ILike{"subject": "%" + params.Search + "%"},
		})
	}
	if params.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(params.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*domain.Template, 0)
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}
	return templates, nil
}

// UpdateTemplate replaces the stored document as a whole
func (r *templateRepository) UpdateTemplate(ctx context.Context, template *domain.Template) error {
	query, args, err := r.psql.Update("templates").
		SetMap(map[string]interface{}{
			"name":                      template.Name,
			"subject":                   template.Subject,
			"blocks":                    template.Blocks,
			"background_color":          template.BackgroundColor,
			"document_background_color": template.DocumentBackgroundColor,
			"padding":                   template.Padding,
			"use_sections":              template.UseSections,
			"sections":                  template.Sections,
			"updated_at":                template.UpdatedAt,
		}).
		Where(sq.Eq{"id": template.ID, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrTemplateNotFound{ID: template.ID}
	}
	return nil
}

// DeleteTemplate soft deletes by setting deleted_at
func (r *templateRepository) DeleteTemplate(ctx context.Context, id string) error {
	query, args, err := r.psql.Update("templates").
		Set("deleted_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrTemplateNotFound{ID: id}
	}
	return nil
}

// scanTemplate scans a template from a database row
func scanTemplate(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Template, error) {
	var template domain.Template

	err := scanner.Scan(
		&template.ID,
		&template.Name,
		&template.Subject,
		&template.Blocks,
		&template.BackgroundColor,
		&template.DocumentBackgroundColor,
		&template.Padding,
		&template.UseSections,
		&template.Sections,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &template, nil
}
