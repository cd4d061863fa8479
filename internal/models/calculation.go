package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Calculation is one persisted tool result: the validated inputs and the
// produced outputs, attributed to whoever ran the tool.
type Calculation struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ToolSlug   string          `gorm:"index;not null" json:"tool_slug"`
	InputData  json.RawMessage `gorm:"type:jsonb" json:"input_data"`
	ResultData json.RawMessage `gorm:"type:jsonb" json:"result_data"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

func (Calculation) TableName() string {
	return "calculations"
}
