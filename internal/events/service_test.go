package events_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"santas-pos/internal/events"
	"santas-pos/internal/models"
)

func setupTestService(t *testing.T, now time.Time) *events.Service {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Event)(nil)))
	_, err = bunDB.NewCreateIndex().
		Model((*models.Event)(nil)).
		Index("ux_eventos_fecha").
		Unique().
		IfNotExists().
		Column("fecha").
		Exec(ctx)
	require.NoError(t, err)

	svc := events.NewService(&events.DB{Bun: bunDB}, time.UTC, 5, 1000)
	svc.Now = func() time.Time { return now }
	return svc
}

// 2026-09-01 is a Tuesday; the following Saturday is 2026-09-05.
var tuesday = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func TestEnsureUpcomingSaturdaysProvisionsFive(t *testing.T) {
	svc := setupTestService(t, tuesday)
	ctx := context.Background()

	evs, err := svc.EnsureUpcomingSaturdays(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 5)

	expected := time.Date(2026, 9, 5, 23, 0, 0, 0, time.UTC)
	for i, ev := range evs {
		assert.Equal(t, "Evento", ev.Name)
		assert.Equal(t, 1000, ev.Capacity)
		assert.True(t, ev.Active)
		assert.Equal(t, expected.AddDate(0, 0, 7*i), ev.Date.UTC(), "event %d", i)
		assert.Equal(t, time.Saturday, ev.Date.UTC().Weekday())
	}
}

func TestEnsureUpcomingSaturdaysIsIdempotent(t *testing.T) {
	svc := setupTestService(t, tuesday)
	ctx := context.Background()

	first, err := svc.EnsureUpcomingSaturdays(ctx)
	require.NoError(t, err)
	second, err := svc.EnsureUpcomingSaturdays(ctx)
	require.NoError(t, err)

	require.Len(t, second, 5)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	count, err := svc.DB.Bun.NewSelect().Model((*models.Event)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestEnsureUpcomingSaturdaysKeepsManualEvents(t *testing.T) {
	svc := setupTestService(t, tuesday)
	ctx := context.Background()

	manual, err := svc.Create(ctx, "Fiesta Especial", "", time.Date(2026, 9, 5, 21, 0, 0, 0, time.UTC), 800)
	require.NoError(t, err)

	evs, err := svc.EnsureUpcomingSaturdays(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 5)
	assert.Equal(t, manual.ID, evs[0].ID)
	assert.Equal(t, "Fiesta Especial", evs[0].Name)
}

func TestSaturdayTodayCountsAsFirst(t *testing.T) {
	saturdayNoon := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	svc := setupTestService(t, saturdayNoon)

	evs, err := svc.EnsureUpcomingSaturdays(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 5)
	assert.Equal(t, time.Date(2026, 9, 5, 23, 0, 0, 0, time.UTC), evs[0].Date.UTC())
}

func TestDeactivatePastEvents(t *testing.T) {
	svc := setupTestService(t, tuesday)
	ctx := context.Background()

	past, err := svc.Create(ctx, "Vieja", "", tuesday.AddDate(0, 0, -7), 1000)
	require.NoError(t, err)
	future, err := svc.Create(ctx, "Nueva", "", tuesday.AddDate(0, 0, 7), 1000)
	require.NoError(t, err)

	require.NoError(t, svc.DeactivatePastEvents(ctx))

	got, err := svc.GetByID(ctx, past.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	got, err = svc.GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestUpcomingDeactivatesThenProvisions(t *testing.T) {
	svc := setupTestService(t, tuesday)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Vieja", "", tuesday.AddDate(0, 0, -3), 1000)
	require.NoError(t, err)

	evs, err := svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, evs, 5)
	for _, ev := range evs {
		assert.True(t, ev.Date.After(tuesday))
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := setupTestService(t, tuesday)

	_, err := svc.Create(context.Background(), "", "", tuesday, 1000)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestDeactivateMissingEvent(t *testing.T) {
	svc := setupTestService(t, tuesday)
	assert.ErrorIs(t, svc.Deactivate(context.Background(), 404), models.ErrNotFound)
}
