package models

// Airport is a global reference table mapping an airport code (ICAO/IATA/
// FAA) to coordinates. Upserted opportunistically whenever an ingestion
// reports a default origin with coordinates.
type Airport struct {
	Code string  `gorm:"size:8;primaryKey" json:"code"`
	Lat  float64 `gorm:"not null" json:"lat"`
	Lon  float64 `gorm:"not null" json:"lon"`
}
