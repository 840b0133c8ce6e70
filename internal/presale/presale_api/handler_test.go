package presale_api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"santas-pos/internal/models"
	"santas-pos/internal/presale"
	"santas-pos/internal/presale/presale_api"
	"santas-pos/internal/printer"
)

type stubCatalog struct{ tt *models.TicketType }

func (s *stubCatalog) ResolveAnticipada(ctx context.Context) (*models.TicketType, error) {
	return s.tt, nil
}

type noopPrinter struct{}

func (noopPrinter) Print(ctx context.Context, t printer.Ticket) error { return nil }

func setupHandler(t *testing.T) *presale_api.Handler {
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

	tt := &models.TicketType{Name: "Anticipada", BasePrice: 5000, Active: true}
	_, err = bunDB.NewInsert().Model(tt).Exec(ctx)
	require.NoError(t, err)

	svc := presale.NewService(
		&presale.DB{Bun: bunDB, DefaultQuota: 2},
		&stubCatalog{tt: tt},
		noopPrinter{},
		nil,
		nil,
	)
	return &presale_api.Handler{Service: svc}
}

func post(t *testing.T, h *presale_api.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/anticipadas", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandleCreateRespondsWithDetail(t *testing.T) {
	h := setupHandler(t)

	rec := post(t, h, `{"nombre":"Ana","dni":"30111222","evento_id":1,"promotor_id":7,"cantidad":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success    bool                 `json:"success"`
		Message    string               `json:"mensaje"`
		Anticipada models.PreSaleDetail `json:"anticipada"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Anticipada registrada correctamente.", body.Message)
	assert.Equal(t, "Ana", body.Anticipada.BuyerName)
	assert.Equal(t, 2, body.Anticipada.Quantity)
}

func TestHandleQuotaConflictCarriesAvailable(t *testing.T) {
	h := setupHandler(t)

	rec := post(t, h, `{"nombre":"Ana","evento_id":1,"promotor_id":7,"cantidad":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, h, `{"nombre":"Beto","evento_id":1,"promotor_id":7,"cantidad":1}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error          string `json:"error"`
		CupoDisponible *int   `json:"cupo_disponible"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No hay cupo suficiente para esta venta.", body.Error)
	require.NotNil(t, body.CupoDisponible)
	assert.Equal(t, 0, *body.CupoDisponible)
}

func TestHandleMissingNameIsBadRequest(t *testing.T) {
	h := setupHandler(t)

	rec := post(t, h, `{"evento_id":1,"promotor_id":7}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Debe indicar un nombre.")
}

func TestHandleUnknownActionIsBadRequest(t *testing.T) {
	h := setupHandler(t)

	rec := post(t, h, `{"accion":"reimprimir"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acción no soportada.")
}

func TestHandleRedeemRemovesRow(t *testing.T) {
	h := setupHandler(t)

	rec := post(t, h, `{"nombre":"Ana","evento_id":1,"promotor_id":7,"cantidad":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Anticipada models.PreSaleDetail `json:"anticipada"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = post(t, h, `{"accion":"imprimir","id":`+jsonInt(created.Anticipada.ID)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ticket enviado a impresión y retirado del listado.")

	rec = post(t, h, `{"accion":"imprimir","id":`+jsonInt(created.Anticipada.ID)+`}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
