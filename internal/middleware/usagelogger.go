package middleware

import (
	"context"
	"log"
	"time"

	"github.com/biztools-dev/biztools/internal/models"
	"github.com/biztools-dev/biztools/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const usageBatchSize = 100

// UsageLogger queues usage events on a buffered channel and flushes them to
// Postgres in batches so logging never blocks a request.
type UsageLogger struct {
	repo    *repository.UsageLogRepository
	entries chan models.UsageLog
	done    chan struct{}
}

func NewUsageLogger(repo *repository.UsageLogRepository, bufferSize int) *UsageLogger {
	l := &UsageLogger{
		repo:    repo,
		entries: make(chan models.UsageLog, bufferSize),
		done:    make(chan struct{}),
	}

	go l.worker()

	return l
}

func (l *UsageLogger) worker() {
	batch := make([]*models.UsageLog, 0, usageBatchSize)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := l.repo.CreateBatch(context.Background(), batch); err != nil {
			log.Printf("usage logger: batch insert failed: %v", err)
		}
		batch = make([]*models.UsageLog, 0, usageBatchSize)
	}

	for {
		select {
		case entry, ok := <-l.entries:
			if !ok {
				flush()
				close(l.done)
				return
			}
			e := entry
			batch = append(batch, &e)
			if len(batch) >= usageBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Record queues one usage event. Drops the event if the buffer is full.
func (l *UsageLogger) Record(entry models.UsageLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	select {
	case l.entries <- entry:
	default:
		log.Printf("usage logger: buffer full, dropping %s event for %s", entry.Action, entry.ToolSlug)
	}
}

// Close stops the worker after flushing whatever is queued.
func (l *UsageLogger) Close() {
	close(l.entries)
	<-l.done
}

// TrackViews logs a view event for every tool detail request
func TrackViews(logger *UsageLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		slug := c.Param("slug")
		if slug == "" || c.Writer.Status() != 200 {
			return
		}

		var userID *uuid.UUID
		if raw, exists := c.Get("user_id"); exists {
			if s, ok := raw.(string); ok {
				if id, err := uuid.Parse(s); err == nil {
					userID = &id
				}
			}
		}

		logger.Record(models.UsageLog{
			UserID:    userID,
			ToolSlug:  slug,
			Action:    models.ActionView,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
	}
}
