package repository

import (
	"context"
	"time"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/storage"
	"github.com/google/uuid"
)

type CalculationRepository struct {
	db *storage.Postgres
}

func NewCalculationRepository(db *storage.Postgres) *CalculationRepository {
	return &CalculationRepository{db: db}
}

// Inserts a new calculation record
func (r *CalculationRepository) Create(ctx context.Context, calc *models.Calculation) error {
	return r.db.DB.WithContext(ctx).Create(calc).Error
}

// Retrieves calculations for a user, most recent first
func (r *CalculationRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Calculation, error) {
	var calcs []models.Calculation
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&calcs).Error

	return calcs, err
}

// Retrieves calculations for a tool within a time range
func (r *CalculationRepository) FindByTool(ctx context.Context, toolSlug string, from, to time.Time, limit, offset int) ([]models.Calculation, error) {
	var calcs []models.Calculation
	err := r.db.DB.WithContext(ctx).
		Where("tool_slug = ? AND created_at BETWEEN ? AND ?", toolSlug, from, to).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&calcs).Error

	return calcs, err
}

// Counts calculations for a tool within a time range
func (r *CalculationRepository) CountByTool(ctx context.Context, toolSlug string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Calculation{}).
		Where("tool_slug = ? AND created_at BETWEEN ? AND ?", toolSlug, from, to).
		Count(&count).Error

	return count, err
}

// Deletes calculations older than the specified time
func (r *CalculationRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.Calculation{})

	return result.RowsAffected, result.Error
}
