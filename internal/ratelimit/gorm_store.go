package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps usage counters in the rate_limits table. Counters are
// read-modify-written under a row lock; the unique index on
// (tool_slug, requester_key, period) closes the create race between two
// first-in-window requests.
type GormStore struct {
	db *storage.Postgres
}

func NewGormStore(db *storage.Postgres) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) IncrementIfBelow(ctx context.Context, toolSlug, requesterKey string, period Period, ceiling int) (int, bool, error) {
	var (
		count   int
		allowed bool
	)

	attempt := func() error {
		return g.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now()

			var rec models.RateLimit
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("tool_slug = ? AND requester_key = ? AND period = ?",
					toolSlug, requesterKey, string(period)).
				First(&rec).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if ceiling < 1 {
					count, allowed = 0, false
					return nil
				}
				rec = models.RateLimit{
					ToolSlug:     toolSlug,
					RequesterKey: requesterKey,
					Period:       string(period),
					Count:        1,
					ResetAt:      period.ResetTime(now),
				}
				if err := tx.Create(&rec).Error; err != nil {
					return err
				}
				count, allowed = 1, true
				return nil

			case err != nil:
				return err
			}

			if !now.Before(rec.ResetAt) {
				if ceiling < 1 {
					count, allowed = 0, false
					return nil
				}
				// Window passed: overwrite in place rather than accumulate.
				rec.Count = 1
				rec.ResetAt = period.ResetTime(now)
				if err := tx.Save(&rec).Error; err != nil {
					return err
				}
				count, allowed = 1, true
				return nil
			}

			if rec.Count >= ceiling {
				count, allowed = rec.Count, false
				return nil
			}

			rec.Count++
			if err := tx.Save(&rec).Error; err != nil {
				return err
			}
			count, allowed = rec.Count, true
			return nil
		})
	}

	err := attempt()
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the create race; the row exists now, take the update path.
		err = attempt()
	}
	if err != nil {
		return 0, false, err
	}
	return count, allowed, nil
}

func (g *GormStore) Count(ctx context.Context, toolSlug, requesterKey string, period Period) (int, error) {
	var rec models.RateLimit
	err := g.db.DB.WithContext(ctx).
		Where("tool_slug = ? AND requester_key = ? AND period = ? AND reset_at > ?",
			toolSlug, requesterKey, string(period), time.Now()).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Count, nil
}

func (g *GormStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	result := g.db.DB.WithContext(ctx).
		Where("reset_at < ?", now).
		Delete(&models.RateLimit{})

	return result.RowsAffected, result.Error
}
