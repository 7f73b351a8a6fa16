package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"gorm.io/gorm"
)

var contentSortColumns = map[string]bool{
	"created_at": true,
	"difficulty": true,
	"title":      true,
}

type ContentPostgreSQL struct {
	db *gorm.DB
}

func NewContentPostgreSQL(db *gorm.DB) repositories.ContentRepository {
	return &ContentPostgreSQL{db: db}
}

func (c *ContentPostgreSQL) Create(ctx context.Context, content *models.ExerciseContent) error {
	if err := c.db.WithContext(ctx).Create(content).Error; err != nil {
		return fmt.Errorf("failed to create content: %w", translateError(err))
	}
	return nil
}

// CreateBatch stores every content or none.
func (c *ContentPostgreSQL) CreateBatch(ctx context.Context, contents []*models.ExerciseContent) error {
	if len(contents) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(contents, 50).Error; err != nil {
			return fmt.Errorf("failed to create contents: %w", translateError(err))
		}
		return nil
	})
}

func (c *ContentPostgreSQL) GetByID(ctx context.Context, id string) (*models.ExerciseContent, error) {
	var content models.ExerciseContent
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&content).Error; err != nil {
		return nil, translateError(err)
	}
	return &content, nil
}

func (c *ContentPostgreSQL) List(ctx context.Context, filters repositories.ContentFilters) ([]*models.ExerciseContent, int64, error) {
	var contents []*models.ExerciseContent
	var total int64

	query := c.db.WithContext(ctx).Model(&models.ExerciseContent{})
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Topic != "" {
		query = query.Where("topic ILIKE ?", "%"+filters.Topic+"%")
	}
	if filters.Language != "" {
		query = query.Where("language = ?", filters.Language)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, contentSortColumns, filters.Limit, filters.Offset)
	if err := query.Find(&contents).Error; err != nil {
		return nil, 0, err
	}

	return contents, total, nil
}

func (c *ContentPostgreSQL) Delete(ctx context.Context, id string) error {
	result := c.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ExerciseContent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
