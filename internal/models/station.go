package models

import (
	"time"
)

// Station is a field site submitting periodic telemetry snapshots.
// Names are stored upper-cased. Rotating TokenSalt invalidates every
// previously issued bearer token for the station.
type Station struct {
	ID                uint       `gorm:"primaryKey" json:"-"`
	Name              string     `gorm:"size:128;not null;uniqueIndex" json:"name"`
	PasswordHash      string     `gorm:"size:256;not null" json:"-"`
	TokenSalt         string     `gorm:"size:64;not null;default:''" json:"-"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"-"`
	LastSeenAt        *time.Time `json:"last_seen_at"`
	LastDefaultOrigin *string    `gorm:"size:8" json:"last_default_origin"`
	LastOriginLat     *float64   `json:"last_origin_lat"`
	LastOriginLon     *float64   `json:"last_origin_lon"`

	Snapshots []Snapshot      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Flights   []Flight        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Inventory []InventoryItem `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
