package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"santas-pos/internal/models"
)

// DB is the quota ledger. Every mutation of promotores_cupos in the system
// goes through this type; availability decisions happen under a row lock in
// the backing store so concurrent reservations against the same
// (promotor, evento, entrada) triple serialize even across processes.
type DB struct {
	Bun *bun.DB
	// DefaultTotal seeds cupo_total when a row is created lazily.
	DefaultTotal int
}

// lockedQuota reads the quota row for the triple with an exclusive row lock.
// SQLite has no FOR UPDATE; its single writer serializes transactions, so
// the clause is only emitted on Postgres.
func lockedQuota(ctx context.Context, idb bun.IDB, promoterID, eventID, ticketTypeID int64) (*models.PromoterQuota, error) {
	var row models.PromoterQuota
	q := idb.NewSelect().
		Model(&row).
		Where("usuario_id = ?", promoterID).
		Where("evento_id = ?", eventID).
		Where("entrada_id = ?", ticketTypeID).
		Order("id ASC").
		Limit(1)
	if idb.Dialect().Name() == dialect.PG {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetOrCreateIn resolves the quota row for a triple inside an existing
// transaction, creating it with the default total on first access. The
// insert-or-ignore plus re-read keeps concurrent first accesses from
// producing duplicate rows.
func GetOrCreateIn(ctx context.Context, idb bun.IDB, defaultTotal int, promoterID, eventID, ticketTypeID int64) (*models.PromoterQuota, error) {
	row, err := lockedQuota(ctx, idb, promoterID, eventID, ticketTypeID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quota lookup: %w", err)
	}

	fresh := &models.PromoterQuota{
		PromoterID:   promoterID,
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
		Total:        defaultTotal,
		Consumed:     0,
	}
	_, err = idb.NewInsert().
		Model(fresh).
		On("CONFLICT (usuario_id, evento_id, entrada_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("quota create: %w", err)
	}

	row, err = lockedQuota(ctx, idb, promoterID, eventID, ticketTypeID)
	if err != nil {
		return nil, fmt.Errorf("quota re-read: %w", err)
	}
	return row, nil
}

// ReserveIn atomically consumes qty units of a promoter's quota inside an
// existing transaction. Callers that also write pre-sale or ledger rows run
// this in the same transaction so the whole business operation is
// all-or-nothing. Returns a QuotaExceededError carrying the current
// available count when qty cannot be satisfied; the row is left untouched.
func ReserveIn(ctx context.Context, idb bun.IDB, defaultTotal int, promoterID, eventID, ticketTypeID int64, qty int) (*models.PromoterQuota, error) {
	if qty < 1 {
		return nil, &models.ValidationError{Msg: "La cantidad debe ser al menos 1."}
	}

	row, err := GetOrCreateIn(ctx, idb, defaultTotal, promoterID, eventID, ticketTypeID)
	if err != nil {
		return nil, err
	}

	if qty > row.Available() {
		return nil, &models.QuotaExceededError{Available: row.Available()}
	}

	row.Consumed += qty
	_, err = idb.NewUpdate().
		Model(row).
		Column("cupo_vendido").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("quota update: %w", err)
	}
	return row, nil
}

// ReleaseIn returns qty units to the promoter's available quota, flooring
// cupo_vendido at zero. Only exercised when the release-on-delete policy is
// enabled; the stock behavior never calls it.
func ReleaseIn(ctx context.Context, idb bun.IDB, promoterID, eventID, ticketTypeID int64, qty int) error {
	row, err := lockedQuota(ctx, idb, promoterID, eventID, ticketTypeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("quota lookup: %w", err)
	}

	row.Consumed -= qty
	if row.Consumed < 0 {
		row.Consumed = 0
	}
	_, err = idb.NewUpdate().
		Model(row).
		Column("cupo_vendido").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("quota release: %w", err)
	}
	return nil
}

// GetOrCreate runs GetOrCreateIn in its own transaction.
func (d *DB) GetOrCreate(ctx context.Context, promoterID, eventID, ticketTypeID int64) (*models.PromoterQuota, error) {
	var row *models.PromoterQuota
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		row, err = GetOrCreateIn(ctx, tx, d.DefaultTotal, promoterID, eventID, ticketTypeID)
		return err
	})
	return row, err
}

// Reserve runs ReserveIn in its own transaction.
func (d *DB) Reserve(ctx context.Context, promoterID, eventID, ticketTypeID int64, qty int) (*models.PromoterQuota, error) {
	var row *models.PromoterQuota
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		row, err = ReserveIn(ctx, tx, d.DefaultTotal, promoterID, eventID, ticketTypeID, qty)
		return err
	})
	return row, err
}

// SetTotal upserts cupo_total for a triple. cupo_vendido is preserved on
// update and zero on create. The new total is not validated against current
// consumption: lowering it below cupo_vendido is allowed and makes the
// available reading negative until sales catch up.
func (d *DB) SetTotal(ctx context.Context, promoterID, eventID, ticketTypeID int64, total int) (*models.PromoterQuota, error) {
	var row *models.PromoterQuota
	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing, err := lockedQuota(ctx, tx, promoterID, eventID, ticketTypeID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("quota lookup: %w", err)
		}

		if existing != nil {
			existing.Total = total
			if _, err := tx.NewUpdate().
				Model(existing).
				Column("cupo_total").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("quota update: %w", err)
			}
			row = existing
			return nil
		}

		fresh := &models.PromoterQuota{
			PromoterID:   promoterID,
			EventID:      eventID,
			TicketTypeID: ticketTypeID,
			Total:        total,
			Consumed:     0,
		}
		if _, err := tx.NewInsert().
			Model(fresh).
			On("CONFLICT (usuario_id, evento_id, entrada_id) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("quota create: %w", err)
		}
		row, err = lockedQuota(ctx, tx, promoterID, eventID, ticketTypeID)
		if err != nil {
			return fmt.Errorf("quota re-read: %w", err)
		}
		row.Total = total
		_, err = tx.NewUpdate().Model(row).Column("cupo_total").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ListForEvent returns one quota view per active promoter-role user for the
// given event and ticket type, lazily creating missing rows. The promoter
// set comes from the user catalog; role names are resolved to capabilities
// once, here, instead of being substring-matched downstream.
func (d *DB) ListForEvent(ctx context.Context, eventID, ticketTypeID int64) ([]models.PromoterQuotaView, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		ColumnExpr("u.id, u.nombre").
		ColumnExpr("COALESCE(r.nombre, '') AS rol_nombre").
		Join("LEFT JOIN roles AS r ON u.rol_id = r.id").
		Where("u.activo = ?", true).
		Order("u.nombre ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("promoter listing: %w", err)
	}

	promoters := users[:0]
	for _, u := range users {
		if u.Capability() == models.RolePromoter {
			promoters = append(promoters, u)
		}
	}
	if len(promoters) == 0 {
		return []models.PromoterQuotaView{}, nil
	}

	views := make([]models.PromoterQuotaView, 0, len(promoters))
	err = d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, p := range promoters {
			row, err := GetOrCreateIn(ctx, tx, d.DefaultTotal, p.ID, eventID, ticketTypeID)
			if err != nil {
				return err
			}
			views = append(views, models.PromoterQuotaView{
				ID:           row.ID,
				PromoterID:   p.ID,
				PromoterName: p.Name,
				EventID:      eventID,
				TicketTypeID: ticketTypeID,
				Total:        row.Total,
				Consumed:     row.Consumed,
				Available:    row.Available(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
