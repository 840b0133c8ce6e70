package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"santas-pos/internal/models"
)

// DB owns the eventos table.
type DB struct {
	Bun *bun.DB
}

// GetByID returns an event regardless of its active flag.
func (d *DB) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var ev models.Event
	err := d.Bun.NewSelect().
		Model(&ev).
		Where("ev.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event read: %w", err)
	}
	return &ev, nil
}

// DeactivateBefore flips activo off for every still-active event dated
// before the cutoff. Safe to run repeatedly.
func (d *DB) DeactivateBefore(ctx context.Context, cutoff time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("activo = ?", false).
		Where("fecha < ?", cutoff).
		Where("activo = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("event deactivation: %w", err)
	}
	return nil
}

// ActiveOnDate finds the earliest active event within [dayStart, dayEnd).
func (d *DB) ActiveOnDate(ctx context.Context, dayStart, dayEnd time.Time) (*models.Event, error) {
	var ev models.Event
	err := d.Bun.NewSelect().
		Model(&ev).
		Where("fecha >= ? AND fecha < ?", dayStart, dayEnd).
		Where("activo = ?", true).
		Order("fecha ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("event read: %w", err)
	}
	return &ev, nil
}

// InsertIgnore inserts the event, ignoring a duplicate fecha. Concurrent
// provisioning of the same Saturday races to a single row.
func (d *DB) InsertIgnore(ctx context.Context, ev *models.Event) error {
	_, err := d.Bun.NewInsert().
		Model(ev).
		On("CONFLICT (fecha) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("event insert: %w", err)
	}
	return nil
}

// ListActiveBetween returns active events within the window, soonest first.
func (d *DB) ListActiveBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	var evs []models.Event
	err := d.Bun.NewSelect().
		Model(&evs).
		Where("fecha >= ? AND fecha < ?", from, to).
		Where("activo = ?", true).
		Order("fecha ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("event listing: %w", err)
	}
	return evs, nil
}

// ListActive returns every active event, soonest first.
func (d *DB) ListActive(ctx context.Context) ([]models.Event, error) {
	var evs []models.Event
	err := d.Bun.NewSelect().
		Model(&evs).
		Where("activo = ?", true).
		Order("fecha ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("event listing: %w", err)
	}
	return evs, nil
}

// ListActiveFrom returns active events dated at or after the cutoff.
func (d *DB) ListActiveFrom(ctx context.Context, from time.Time) ([]models.Event, error) {
	var evs []models.Event
	err := d.Bun.NewSelect().
		Model(&evs).
		Where("fecha >= ?", from).
		Where("activo = ?", true).
		Order("fecha ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("event listing: %w", err)
	}
	return evs, nil
}

// Insert creates a manually scheduled event.
func (d *DB) Insert(ctx context.Context, ev *models.Event) error {
	if _, err := d.Bun.NewInsert().Model(ev).Exec(ctx); err != nil {
		return fmt.Errorf("event insert: %w", err)
	}
	return nil
}

// Update applies the non-nil fields and returns the updated row.
func (d *DB) Update(ctx context.Context, id int64, req models.EventUpsertRequest) (*models.Event, error) {
	ev, err := d.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		ev.Name = *req.Name
	}
	if req.Detail != nil {
		ev.Detail = *req.Detail
	}
	if req.Capacity != nil {
		ev.Capacity = *req.Capacity
	}

	_, err = d.Bun.NewUpdate().
		Model(ev).
		Column("nombre", "detalle", "capacidad").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("event update: %w", err)
	}
	return ev, nil
}

// Deactivate soft-deletes one event.
func (d *DB) Deactivate(ctx context.Context, id int64) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("activo = ?", false).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("event deactivation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
