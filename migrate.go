package main

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"santas-pos/internal/models"
)

// ensureSchema creates the tables and the unique indexes the insert-or-
// ignore paths rely on. Everything is IfNotExists so startup is idempotent
// against an already-provisioned database.
func ensureSchema(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.UserRole)(nil),
		(*models.User)(nil),
		(*models.TicketType)(nil),
		(*models.Event)(nil),
		(*models.PromoterQuota)(nil),
		(*models.PreSale)(nil),
		(*models.SaleRecord)(nil),
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", m, err)
		}
	}

	// The quota ledger's get-or-create and the Saturday provisioning both
	// lean on ON CONFLICT DO NOTHING, which needs these unique constraints.
	if _, err := db.NewCreateIndex().
		Model((*models.PromoterQuota)(nil)).
		Index("ux_promotores_cupos_triple").
		Unique().
		IfNotExists().
		Column("usuario_id", "evento_id", "entrada_id").
		Exec(ctx); err != nil {
		return fmt.Errorf("create quota index: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*models.Event)(nil)).
		Index("ux_eventos_fecha").
		Unique().
		IfNotExists().
		Column("fecha").
		Exec(ctx); err != nil {
		return fmt.Errorf("create event index: %w", err)
	}
	return nil
}
