package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Usage log actions.
const (
	ActionView      = "view"
	ActionCalculate = "calculate"
	ActionGenerate  = "generate"
)

// UsageLog is an append-only record of a tool interaction, used for
// analytics.
type UsageLog struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ToolSlug  string          `gorm:"index;not null" json:"tool_slug"`
	Action    string          `gorm:"index;not null" json:"action"`
	Metadata  json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	UserAgent string          `json:"user_agent,omitempty"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}
