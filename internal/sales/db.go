package sales

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"santas-pos/internal/models"
)

// DB appends to and aggregates the ventas_entradas ledger. Rows are never
// updated or deleted here; downstream reporting only ever sums them.
type DB struct {
	Bun *bun.DB
}

// Insert appends one sale line.
func (d *DB) Insert(ctx context.Context, sale *models.SaleRecord) error {
	if _, err := d.Bun.NewInsert().Model(sale).Exec(ctx); err != nil {
		return fmt.Errorf("sale insert: %w", err)
	}
	return nil
}

// Aggregates returns units sold summed per (evento, entrada) pair.
func (d *DB) Aggregates(ctx context.Context) ([]models.SaleAggregate, error) {
	var aggs []models.SaleAggregate
	err := d.Bun.NewSelect().
		Model((*models.SaleRecord)(nil)).
		ColumnExpr("v.evento_id, v.entrada_id").
		ColumnExpr("COALESCE(SUM(v.cantidad), 0) AS total_vendido").
		GroupExpr("v.evento_id, v.entrada_id").
		Scan(ctx, &aggs)
	if err != nil {
		return nil, fmt.Errorf("sale aggregates: %w", err)
	}
	return aggs, nil
}
