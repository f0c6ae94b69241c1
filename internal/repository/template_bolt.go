package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Notifuse/mailblocks/internal/domain"
)

var bucketTemplates = []byte("templates")

// BoltTemplateRepository keeps templates as JSON documents in a single bbolt bucket.
// It backs the CLI and single-node deployments that run without Postgres.
type BoltTemplateRepository struct {
	db *bolt.DB
}

// OpenBoltTemplateRepository opens (or creates) the database file at path
func OpenBoltTemplateRepository(path string) (*BoltTemplateRepository, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	repo, err := NewBoltTemplateRepository(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewBoltTemplateRepository creates the templates bucket if needed
func NewBoltTemplateRepository(db *bolt.DB) (*BoltTemplateRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTemplates)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template bucket: %w", err)
	}
	return &BoltTemplateRepository{db: db}, nil
}

// Close releases the underlying database file
func (r *BoltTemplateRepository) Close() error {
	return r.db.Close()
}

func (r *BoltTemplateRepository) CreateTemplate(ctx context.Context, template *domain.Template) error {
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}
	if template.UpdatedAt.IsZero() {
		template.UpdatedAt = template.CreatedAt
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		if bucket.Get([]byte(template.ID)) != nil {
			return fmt.Errorf("failed to create template: id %q already exists", template.ID)
		}
		return putTemplate(bucket, template)
	})
}

func (r *BoltTemplateRepository) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	var template *domain.Template

	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTemplates).Get([]byte(id))
		if data == nil {
			return &domain.ErrTemplateNotFound{ID: id}
		}

		template = &domain.Template{}
		if err := json.Unmarshal(data, template); err != nil {
			return fmt.Errorf("failed to decode template: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

// ListTemplates returns the newest templates first, the same order as the Postgres repository
func (r *BoltTemplateRepository) ListTemplates(ctx context.Context, params domain.ListTemplatesRequest) ([]*domain.Template, error) {
	templates := make([]*domain.Template, 0)
	search := strings.ToLower(params.Search)

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTemplates).ForEach(func(k, v []byte) error {
			var template domain.Template
			if err := json.Unmarshal(v, &template); err != nil {
				return fmt.Errorf("failed to decode template %s: %w", k, err)
			}

			if search != "" &&
				!strings.Contains(strings.ToLower(template.Name), search) &&
				!strings.Contains(strings.ToLower(template.Subject), search) {
				return nil
			}

			templates = append(templates, &template)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(templates, func(i, j int) bool {
		if !templates[i].UpdatedAt.Equal(templates[j].UpdatedAt) {
			return templates[i].UpdatedAt.After(templates[j].UpdatedAt)
		}
		return templates[i].ID < templates[j].ID
	})

	if params.Offset > 0 {
		if params.Offset >= len(templates) {
			return templates[:0], nil
		}
		templates = templates[params.Offset:]
	}
	if params.Limit > 0 && len(templates) > params.Limit {
		templates = templates[:params.Limit]
	}
	return templates, nil
}

func (r *BoltTemplateRepository) UpdateTemplate(ctx context.Context, template *domain.Template) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		if bucket.Get([]byte(template.ID)) == nil {
			return &domain.ErrTemplateNotFound{ID: template.ID}
		}
		return putTemplate(bucket, template)
	})
}

func (r *BoltTemplateRepository) DeleteTemplate(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		if bucket.Get([]byte(id)) == nil {
			return &domain.ErrTemplateNotFound{ID: id}
		}
		return bucket.Delete([]byte(id))
	})
}

func putTemplate(bucket *bolt.Bucket, template *domain.Template) error {
	data, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}
	return bucket.Put([]byte(template.ID), data)
}
