package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"santas-pos/internal/models"
)

// DB reads the entradas catalog. The pre-sale and sales flows only ever
// read this table; administration of ticket types happens elsewhere.
type DB struct {
	Bun *bun.DB
}

// FindByName resolves a ticket type by exact, case-insensitive name.
func (d *DB) FindByName(ctx context.Context, name string) (*models.TicketType, error) {
	var tt models.TicketType
	err := d.Bun.NewSelect().
		Model(&tt).
		Where("LOWER(nombre) = LOWER(?)", name).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ticket type lookup: %w", err)
	}
	return &tt, nil
}

// GetActiveByID returns the ticket type only if it exists and is active.
func (d *DB) GetActiveByID(ctx context.Context, id int64) (*models.TicketType, error) {
	var tt models.TicketType
	err := d.Bun.NewSelect().
		Model(&tt).
		Where("id = ?", id).
		Where("activo = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ticket type lookup: %w", err)
	}
	return &tt, nil
}

// ListActive returns the active catalog ordered by name, the shape the
// sales board consumes.
func (d *DB) ListActive(ctx context.Context) ([]models.TicketType, error) {
	var tts []models.TicketType
	err := d.Bun.NewSelect().
		Model(&tts).
		Where("activo = ?", true).
		Order("nombre ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ticket type listing: %w", err)
	}
	return tts, nil
}
