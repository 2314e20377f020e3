package service

import (
	"fmt"
	"strings"
	"time"
)

// OriginCoords is the reported coordinate pair for a station's default
// origin airport.
type OriginCoords struct {
	Lat float64 `json:"lat" binding:"required"`
	Lon float64 `json:"lon" binding:"required"`
}

// FlowRow is one aggregate cargo edge inside a snapshot.
type FlowRow struct {
	Origin    string  `json:"origin" binding:"required"`
	Dest      string  `json:"dest" binding:"required"`
	Direction string  `json:"direction" binding:"required,oneof=inbound outbound"`
	Legs      int     `json:"legs"`
	WeightLbs float64 `json:"weight_lbs"`
}

// ManifestRow is one flight's reported cargo/schedule data inside a
// snapshot. All fields are optional; empty strings and nil pointers mean
// "not reported this cycle".
type ManifestRow struct {
	FlightID       *int64     `json:"flight_id"`
	FlightCode     string     `json:"flight_code"`
	Tail           string     `json:"tail"`
	Direction      string     `json:"direction" binding:"omitempty,oneof=inbound outbound"`
	Origin         string     `json:"origin"`
	Dest           string     `json:"dest"`
	CargoType      string     `json:"cargo_type"`
	CargoWeightLbs *float64   `json:"cargo_weight_lbs"`
	TakeoffHHMM    string     `json:"takeoff_hhmm"`
	EtaHHMM        string     `json:"eta_hhmm"`
	IsRampEntry    *int       `json:"is_ramp_entry"`
	Complete       *int       `json:"complete"`
	Remarks        string     `json:"remarks"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// InventoryRow is one on-hand item inside an inventory section.
type InventoryRow struct {
	Item       string     `json:"item" binding:"required"`
	Category   string     `json:"category"`
	CategoryID *int64     `json:"category_id"`
	Qty        *float64   `json:"qty"`
	WeightLbs  *float64   `json:"weight_lbs"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// IngestionRequest is one full-state snapshot pushed by a station. A nil
// Inventory means "no inventory update this cycle"; an empty non-nil list
// clears the station's inventory.
type IngestionRequest struct {
	Station             string          `json:"station" binding:"required"`
	GeneratedAt         time.Time       `json:"generated_at" binding:"required"`
	DefaultOrigin       string          `json:"default_origin"`
	OriginCoords        *OriginCoords   `json:"origin_coords"`
	InventoryLastUpdate string          `json:"inventory_last_update"`
	WindowHours         int             `json:"window_hours"`
	Flows               []FlowRow       `json:"flows"`
	Manifests           []ManifestRow   `json:"manifests"`
	Inventory           *[]InventoryRow `json:"inventory"`
}

// IngestionResult summarizes an accepted ingestion.
type IngestionResult struct {
	SnapshotID      uint `json:"snapshot_id"`
	SnapshotCreated bool `json:"snapshot_created"`
	Flows           int  `json:"flows"`
	FlightsMerged   int  `json:"flights_merged"`
	FlightsCreated  int  `json:"flights_created"`
	InventoryItems  int  `json:"inventory_items"`
}

// NormalizeHHMM validates a 3-4 digit local time fragment and zero-pads it
// to 4 digits. The empty string passes through untouched.
func NormalizeHHMM(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if len(v) != 3 && len(v) != 4 {
		return "", fmt.Errorf("%w: HHMM must be 3-4 digits, got %q", ErrValidation, v)
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: HHMM must be 3-4 digits, got %q", ErrValidation, v)
		}
	}
	if len(v) == 3 {
		v = "0" + v
	}
	return v, nil
}

// Normalize validates and canonicalizes the request in place: HHMM fields
// are zero-padded, directions checked, the generation timestamp forced to
// UTC. The transport layer validates shape before the core runs, but the
// core re-checks so a malformed row can never be partially applied.
func (r *IngestionRequest) Normalize() error {
	if r.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: generated_at is required", ErrValidation)
	}
	r.GeneratedAt = r.GeneratedAt.UTC()
	if r.WindowHours <= 0 {
		r.WindowHours = 24
	}
	for i := range r.Flows {
		f := &r.Flows[i]
		if err := checkDirection(f.Direction, false); err != nil {
			return err
		}
		if f.Legs < 0 {
			return fmt.Errorf("%w: legs must be non-negative", ErrValidation)
		}
	}
	for i := range r.Manifests {
		m := &r.Manifests[i]
		if err := checkDirection(m.Direction, true); err != nil {
			return err
		}
		var err error
		if m.TakeoffHHMM, err = NormalizeHHMM(m.TakeoffHHMM); err != nil {
			return err
		}
		if m.EtaHHMM, err = NormalizeHHMM(m.EtaHHMM); err != nil {
			return err
		}
	}
	return nil
}

func checkDirection(d string, allowEmpty bool) error {
	switch d {
	case "inbound", "outbound":
		return nil
	case "":
		if allowEmpty {
			return nil
		}
	}
	return fmt.Errorf("%w: direction must be inbound or outbound, got %q", ErrValidation, d)
}
