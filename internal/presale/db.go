package presale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"santas-pos/internal/models"
	"santas-pos/internal/quota"
)

// DB owns the anticipadas table and the business transaction around it:
// quota reservation, pre-sale insert and sales-ledger insert commit or roll
// back together.
type DB struct {
	Bun *bun.DB
	// DefaultQuota seeds lazily created quota rows.
	DefaultQuota int
	// ReleaseQuotaOnDelete restores quota on administrative deletion. Off by
	// default: a reserved cupo stays spent whether or not the pre-sale is
	// ever redeemed.
	ReleaseQuotaOnDelete bool
}

func detailIn(ctx context.Context, idb bun.IDB, id int64) (*models.PreSaleDetail, error) {
	var detail models.PreSaleDetail
	err := idb.NewSelect().
		Model(&detail).
		ColumnExpr("a.id, a.nombre, a.dni, a.entrada_id, a.evento_id, a.promotor_id, a.cantidad, a.incluye_trago").
		ColumnExpr("COALESCE(e.nombre, '') AS entrada_nombre").
		ColumnExpr("COALESCE(e.precio_base, 0) AS entrada_precio").
		ColumnExpr("COALESCE(ev.nombre, '') AS evento_nombre").
		Join("LEFT JOIN entradas AS e ON e.id = a.entrada_id").
		Join("LEFT JOIN eventos AS ev ON ev.id = a.evento_id").
		Where("a.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("presale read: %w", err)
	}
	return &detail, nil
}

// CreateWithQuota performs the pre-sale creation transaction: reserve qty
// units of the promoter's quota, insert the anticipada, append the sales
// ledger line, re-read the row with joined names. Any failure rolls the
// whole thing back, including the quota increment.
func (d *DB) CreateWithQuota(ctx context.Context, req models.PreSaleRequest, tt *models.TicketType) (*models.PreSaleDetail, error) {
	var detail *models.PreSaleDetail
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := quota.ReserveIn(ctx, tx, d.DefaultQuota, *req.PromoterID, *req.EventID, tt.ID, req.Quantity)
		if err != nil {
			return err
		}

		row := &models.PreSale{
			BuyerName:     req.BuyerName,
			NationalID:    req.NationalID,
			TicketTypeID:  tt.ID,
			EventID:       req.EventID,
			PromoterID:    req.PromoterID,
			Quantity:      req.Quantity,
			IncludesDrink: req.IncludesDrink,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("presale insert: %w", err)
		}

		sale := &models.SaleRecord{
			TicketTypeID:  tt.ID,
			EventID:       req.EventID,
			Quantity:      req.Quantity,
			UnitPrice:     tt.BasePrice,
			IncludesDrink: req.IncludesDrink,
		}
		if _, err := tx.NewInsert().Model(sale).Exec(ctx); err != nil {
			return fmt.Errorf("sale insert: %w", err)
		}

		detail, err = detailIn(ctx, tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// GetDetail reads one pre-sale with its joined ticket-type and event names.
func (d *DB) GetDetail(ctx context.Context, id int64) (*models.PreSaleDetail, error) {
	return detailIn(ctx, d.Bun, id)
}

// List returns all pending pre-sales in arrival order.
func (d *DB) List(ctx context.Context) ([]models.PreSaleDetail, error) {
	var details []models.PreSaleDetail
	err := d.Bun.NewSelect().
		Model(&details).
		ColumnExpr("a.id, a.nombre, a.dni, a.entrada_id, a.evento_id, a.promotor_id, a.cantidad, a.incluye_trago").
		ColumnExpr("COALESCE(e.nombre, '') AS entrada_nombre").
		ColumnExpr("COALESCE(e.precio_base, 0) AS entrada_precio").
		ColumnExpr("COALESCE(ev.nombre, '') AS evento_nombre").
		Join("LEFT JOIN entradas AS e ON e.id = a.entrada_id").
		Join("LEFT JOIN eventos AS ev ON ev.id = a.evento_id").
		OrderExpr("a.created_at ASC, a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("presale listing: %w", err)
	}
	return details, nil
}

// Delete removes a pre-sale administratively, honoring the release policy.
func (d *DB) Delete(ctx context.Context, id int64) error {
	return d.delete(ctx, id, d.ReleaseQuotaOnDelete)
}

// DeleteRedeemed removes a pre-sale after successful printing. Redeemed
// quota is sold quota; it is never released, regardless of policy.
func (d *DB) DeleteRedeemed(ctx context.Context, id int64) error {
	return d.delete(ctx, id, false)
}

func (d *DB) delete(ctx context.Context, id int64, release bool) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var row models.PreSale
		err := tx.NewSelect().Model(&row).Where("a.id = ?", id).Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("presale read: %w", err)
		}

		if release && row.PromoterID != nil && row.EventID != nil {
			if err := quota.ReleaseIn(ctx, tx, *row.PromoterID, *row.EventID, row.TicketTypeID, row.Quantity); err != nil {
				return err
			}
		}

		res, err := tx.NewDelete().
			Model((*models.PreSale)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("presale delete: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}
