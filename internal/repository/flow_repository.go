package repository

import (
	"context"
	"time"

	"netops/internal/models"

	"gorm.io/gorm"
)

// FlowAggregate is one row of the windowed flow report: totals per
// (origin, dest, direction) over the latest snapshot of each station.
type FlowAggregate struct {
	Origin    string  `json:"origin"`
	Dest      string  `json:"dest"`
	Direction string  `json:"direction"`
	Legs      int64   `json:"legs"`
	WeightLbs float64 `json:"weight_lbs"`
}

// FlowFilter narrows the aggregation. Zero values mean "no filter";
// Direction accepts inbound or outbound.
type FlowFilter struct {
	Direction string
	Origin    string
	Dest      string
}

type FlowRepository interface {
	ListForSnapshot(ctx context.Context, snapshotID uint) ([]models.Flow, error)
	Aggregate(ctx context.Context, start, end time.Time, filter FlowFilter) ([]FlowAggregate, error)
}

type flowRepository struct {
	db *gorm.DB
}

func NewFlowRepository(db *gorm.DB) FlowRepository {
	return &flowRepository{db: db}
}

func (r *flowRepository) ListForSnapshot(ctx context.Context, snapshotID uint) ([]models.Flow, error) {
	var flows []models.Flow
	err := r.db.WithContext(ctx).
		Where("snapshot_id = ?", snapshotID).
		Order("origin ASC, dest ASC").
		Find(&flows).
		Error
	return flows, err
}

// Aggregate sums flows over the window using only the latest snapshot per
// station, so a station that pushed twice inside the window is counted
// once, with its freshest numbers.
func (r *flowRepository) Aggregate(ctx context.Context, start, end time.Time, filter FlowFilter) ([]FlowAggregate, error) {
	latest := r.db.Model(&models.Snapshot{}).
		Select("station_id, MAX(generated_at) AS mx").
		Where("generated_at >= ? AND generated_at <= ?", start, end).
		Group("station_id")

	q := r.db.WithContext(ctx).
		Model(&models.Flow{}).
		Select("flows.origin, flows.dest, flows.direction, SUM(flows.legs) AS legs, SUM(flows.weight_lbs) AS weight_lbs").
		Joins("JOIN snapshots ON snapshots.id = flows.snapshot_id").
		Joins("JOIN (?) latest ON latest.station_id = snapshots.station_id AND latest.mx = snapshots.generated_at", latest).
		Group("flows.origin, flows.dest, flows.direction").
		Order("flows.origin ASC, flows.dest ASC, flows.direction ASC")

	if filter.Direction == models.DirectionInbound || filter.Direction == models.DirectionOutbound {
		q = q.Where("flows.direction = ?", filter.Direction)
	}
	if filter.Origin != "" {
		q = q.Where("flows.origin = ?", filter.Origin)
	}
	if filter.Dest != "" {
		q = q.Where("flows.dest = ?", filter.Dest)
	}

	var rows []FlowAggregate
	err := q.Scan(&rows).Error
	return rows, err
}
