package repository

import (
	"context"
	"time"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/storage"
	"github.com/google/uuid"
)

type UsageLogRepository struct {
	db *storage.Postgres
}

func NewUsageLogRepository(db *storage.Postgres) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// Inserts a new usage log
func (r *UsageLogRepository) Create(ctx context.Context, entry *models.UsageLog) error {
	return r.db.DB.WithContext(ctx).Create(entry).Error
}

// Inserts multiple usage logs (for batch insertion)
func (r *UsageLogRepository) CreateBatch(ctx context.Context, entries []*models.UsageLog) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.DB.WithContext(ctx).Create(&entries).Error
}

// Retrieves logs within a time range
func (r *UsageLogRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.UsageLog, error) {
	var entries []models.UsageLog
	err := r.db.DB.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}

// Retrieves logs for a specific user
func (r *UsageLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time, limit, offset int) ([]models.UsageLog, error) {
	var entries []models.UsageLog
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ? AND created_at BETWEEN ? AND ?", userID, from, to).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}

// Counts logs in a time range
func (r *UsageLogRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.UsageLog{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}

// Counts logs per action in a time range
func (r *UsageLogRepository) CountByAction(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.UsageLog{}).
		Select("action, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("action").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var action string
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}

	return counts, rows.Err()
}

// Returns the most used tools in a time range
func (r *UsageLogRepository) GetTopTools(ctx context.Context, from, to time.Time, limit int) ([]map[string]interface{}, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.UsageLog{}).
		Select("tool_slug, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("tool_slug").
		Order("count DESC").
		Limit(limit).
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var slug string
		var count int64
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, err
		}
		results = append(results, map[string]interface{}{
			"tool_slug": slug,
			"count":     count,
		})
	}

	return results, rows.Err()
}

// Returns the usage count grouped by day
func (r *UsageLogRepository) GetDailySeries(ctx context.Context, from, to time.Time) ([]map[string]interface{}, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.UsageLog{}).
		Select("DATE_TRUNC('day', created_at) as day, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("day").
		Order("day ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		results = append(results, map[string]interface{}{
			"day":   day,
			"count": count,
		})
	}

	return results, rows.Err()
}

// Returns the usage count grouped by day for a single tool
func (r *UsageLogRepository) GetToolDailySeries(ctx context.Context, toolSlug string, from, to time.Time) ([]map[string]interface{}, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.UsageLog{}).
		Select("DATE_TRUNC('day', created_at) as day, COUNT(*) as count").
		Where("tool_slug = ? AND created_at BETWEEN ? AND ?", toolSlug, from, to).
		Group("day").
		Order("day ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		results = append(results, map[string]interface{}{
			"day":   day,
			"count": count,
		})
	}

	return results, rows.Err()
}

// Deletes logs older than the specified time
func (r *UsageLogRepository) DeleteOldLogs(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.UsageLog{})

	return result.RowsAffected, result.Error
}
