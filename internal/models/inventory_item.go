package models

import (
	"time"
)

// InventoryItem is a per-station on-hand quantity/weight record. The
// station's inventory is replaced wholesale on every ingestion that carries
// an inventory section.
type InventoryItem struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	StationID  uint      `gorm:"not null;uniqueIndex:uq_inventory_station_cat_item,priority:1" json:"-"`
	Category   *string   `gorm:"size:128;uniqueIndex:uq_inventory_station_cat_item,priority:2" json:"category"`
	CategoryID *int64    `json:"category_id"`
	Item       string    `gorm:"size:128;not null;uniqueIndex:uq_inventory_station_cat_item,priority:3" json:"item"`
	Qty        *float64  `json:"qty"`
	WeightLbs  *float64  `json:"weight_lbs"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
