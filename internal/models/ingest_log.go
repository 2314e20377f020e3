package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	IngestAccepted = "accepted"
	IngestRejected = "rejected"
)

// IngestLog is the append-only audit trail of ingestion attempts.
type IngestLog struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	StationID  uint           `gorm:"not null;index" json:"-"`
	ReceivedAt time.Time      `gorm:"not null" json:"received_at"`
	Status     string         `gorm:"size:16;not null" json:"status"`
	Error      *string        `gorm:"type:text" json:"error"`
	Raw        datatypes.JSON `gorm:"type:jsonb" json:"raw,omitempty"`
}

func (IngestLog) TableName() string {
	return "ingest_log"
}
