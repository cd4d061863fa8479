package models

import (
	"time"
)

// RateLimit is one usage counter for a (tool, requester, period) window.
// Expired rows count as zero and are overwritten in place or removed by the
// periodic cleanup sweep.
type RateLimit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ToolSlug     string    `gorm:"uniqueIndex:idx_rate_limit_counter;not null" json:"tool_slug"`
	RequesterKey string    `gorm:"uniqueIndex:idx_rate_limit_counter;not null" json:"requester_key"`
	Period       string    `gorm:"uniqueIndex:idx_rate_limit_counter;not null" json:"period"`
	Count        int       `gorm:"not null" json:"count"`
	ResetAt      time.Time `gorm:"index;not null" json:"reset_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (RateLimit) TableName() string {
	return "rate_limits"
}
