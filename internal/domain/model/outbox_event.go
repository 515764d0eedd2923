package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		*j = make(JSONB)
		return nil
	}
}

// OutboxEvent is a notification or activation signal written in the
// same database transaction as the state change that caused it, then
// published to the message broker by a background flusher. This is what
// makes approval side effects at-least-once instead of best-effort.
type OutboxEvent struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoutingKey  string     `gorm:"not null;size:100" json:"routing_key"`
	Payload     JSONB      `gorm:"type:jsonb;not null" json:"payload"`
	Published   bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
