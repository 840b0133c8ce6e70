package presale_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"santas-pos/internal/models"
	"santas-pos/internal/presale"
	"santas-pos/internal/quota"
)

func setupTestDB(t *testing.T) *presale.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, m := range []interface{}{
		(*models.TicketType)(nil),
		(*models.Event)(nil),
		(*models.PromoterQuota)(nil),
		(*models.PreSale)(nil),
		(*models.SaleRecord)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, m))
	}
	_, err = bunDB.NewCreateIndex().
		Model((*models.PromoterQuota)(nil)).
		Index("ux_promotores_cupos_triple").
		Unique().
		IfNotExists().
		Column("usuario_id", "evento_id", "entrada_id").
		Exec(ctx)
	require.NoError(t, err)

	return &presale.DB{Bun: bunDB, DefaultQuota: 50}
}

func anticipadaType(t *testing.T, db *presale.DB) *models.TicketType {
	t.Helper()
	tt := &models.TicketType{Name: "Anticipada", BasePrice: 5000, Active: true}
	_, err := db.Bun.NewInsert().Model(tt).Exec(context.Background())
	require.NoError(t, err)
	return tt
}

func presaleRequest(promoterID, eventID int64, qty int) models.PreSaleRequest {
	return models.PreSaleRequest{
		BuyerName:     "Lucía Pérez",
		NationalID:    "30123456",
		EventID:       &eventID,
		PromoterID:    &promoterID,
		Quantity:      qty,
		IncludesDrink: true,
	}
}

func TestCreateWithQuotaWritesAllThreeRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tt := anticipadaType(t, db)

	ev := &models.Event{Name: "Evento", Capacity: 1000, Active: true}
	_, err := db.Bun.NewInsert().Model(ev).Exec(ctx)
	require.NoError(t, err)

	detail, err := db.CreateWithQuota(ctx, presaleRequest(7, ev.ID, 2), tt)
	require.NoError(t, err)
	assert.Equal(t, "Lucía Pérez", detail.BuyerName)
	assert.Equal(t, 2, detail.Quantity)
	assert.Equal(t, "Anticipada", detail.TicketTypeName)
	assert.Equal(t, float64(5000), detail.TicketTypePrice)
	assert.Equal(t, "Evento", detail.EventName)

	quotaRow, err := (&quota.DB{Bun: db.Bun, DefaultTotal: 50}).GetOrCreate(ctx, 7, ev.ID, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, quotaRow.Consumed)

	var sales []models.SaleRecord
	require.NoError(t, db.Bun.NewSelect().Model(&sales).Scan(ctx))
	require.Len(t, sales, 1)
	assert.Equal(t, 2, sales[0].Quantity)
	assert.Equal(t, float64(5000), sales[0].UnitPrice)
}

func TestCreateWithQuotaRollsBackOnOverdraw(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tt := anticipadaType(t, db)

	qdb := &quota.DB{Bun: db.Bun, DefaultTotal: 50}
	_, err := qdb.SetTotal(ctx, 7, 1, tt.ID, 1)
	require.NoError(t, err)

	_, err = db.CreateWithQuota(ctx, presaleRequest(7, 1, 2), tt)
	var quotaErr *models.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, 1, quotaErr.Available)

	// Nothing may survive the rollback: no pre-sale, no ledger line, no
	// consumed quota.
	count, err := db.Bun.NewSelect().Model((*models.PreSale)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = db.Bun.NewSelect().Model((*models.SaleRecord)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	row, err := qdb.GetOrCreate(ctx, 7, 1, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Consumed)
}

func TestDeleteKeepsQuotaSpent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tt := anticipadaType(t, db)

	detail, err := db.CreateWithQuota(ctx, presaleRequest(7, 1, 3), tt)
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, detail.ID))

	_, err = db.GetDetail(ctx, detail.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	row, err := (&quota.DB{Bun: db.Bun, DefaultTotal: 50}).GetOrCreate(ctx, 7, 1, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Consumed)
}

func TestDeleteReleasesQuotaWhenPolicyEnabled(t *testing.T) {
	db := setupTestDB(t)
	db.ReleaseQuotaOnDelete = true
	ctx := context.Background()
	tt := anticipadaType(t, db)

	detail, err := db.CreateWithQuota(ctx, presaleRequest(7, 1, 3), tt)
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, detail.ID))

	row, err := (&quota.DB{Bun: db.Bun, DefaultTotal: 50}).GetOrCreate(ctx, 7, 1, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Consumed)
}

func TestDeleteRedeemedNeverReleases(t *testing.T) {
	db := setupTestDB(t)
	db.ReleaseQuotaOnDelete = true
	ctx := context.Background()
	tt := anticipadaType(t, db)

	detail, err := db.CreateWithQuota(ctx, presaleRequest(7, 1, 2), tt)
	require.NoError(t, err)

	require.NoError(t, db.DeleteRedeemed(ctx, detail.ID))

	row, err := (&quota.DB{Bun: db.Bun, DefaultTotal: 50}).GetOrCreate(ctx, 7, 1, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Consumed)
}

func TestDeleteMissingRowReturnsNotFound(t *testing.T) {
	db := setupTestDB(t)
	assert.ErrorIs(t, db.Delete(context.Background(), 999), models.ErrNotFound)
}

func TestListReturnsArrivalOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tt := anticipadaType(t, db)

	first, err := db.CreateWithQuota(ctx, presaleRequest(7, 1, 1), tt)
	require.NoError(t, err)
	second, err := db.CreateWithQuota(ctx, presaleRequest(8, 1, 1), tt)
	require.NoError(t, err)

	details, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, first.ID, details[0].ID)
	assert.Equal(t, second.ID, details[1].ID)
}
