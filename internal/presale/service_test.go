package presale_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santas-pos/internal/models"
	"santas-pos/internal/presale"
	"santas-pos/internal/printer"
)

type stubCatalog struct {
	tt  *models.TicketType
	err error
}

func (s *stubCatalog) ResolveAnticipada(ctx context.Context) (*models.TicketType, error) {
	return s.tt, s.err
}

type recordingPrinter struct {
	tickets []printer.Ticket
	failAt  int // 1-based print call that fails; 0 never fails
}

func (p *recordingPrinter) Print(ctx context.Context, t printer.Ticket) error {
	if p.failAt > 0 && len(p.tickets)+1 >= p.failAt {
		return errors.New("printer offline")
	}
	p.tickets = append(p.tickets, t)
	return nil
}

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(topic, key string, value interface{}) error {
	p.topics = append(p.topics, topic)
	return nil
}

func newTestService(t *testing.T) (*presale.Service, *recordingPrinter, *recordingPublisher) {
	t.Helper()
	db := setupTestDB(t)
	tt := anticipadaType(t, db)

	prn := &recordingPrinter{}
	pub := &recordingPublisher{}
	svc := presale.NewService(db, &stubCatalog{tt: tt}, prn, pub, nil)
	return svc, prn, pub
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	promoter, event := int64(7), int64(1)

	cases := []struct {
		name string
		req  models.PreSaleRequest
		msg  string
	}{
		{"missing name", models.PreSaleRequest{PromoterID: &promoter, EventID: &event}, "Debe indicar un nombre."},
		{"missing promoter", models.PreSaleRequest{BuyerName: "Ana", EventID: &event}, "Debe indicar un promotor para asignar el cupo."},
		{"missing event", models.PreSaleRequest{BuyerName: "Ana", PromoterID: &promoter}, "Debe indicar un evento para validar el cupo."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.msg, validationErr.Msg)
		})
	}
}

func TestCreateDefaultsQuantityToOne(t *testing.T) {
	svc, _, pub := newTestService(t)

	detail, err := svc.Create(context.Background(), presaleRequest(7, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Quantity)
	assert.Equal(t, []string{"santas.anticipada.creada"}, pub.topics)
}

func TestCreateSurfacesMissingAnticipadaType(t *testing.T) {
	db := setupTestDB(t)
	svc := presale.NewService(db,
		&stubCatalog{err: &models.ConfigurationError{Msg: "No existe una entrada llamada Anticipada."}},
		&recordingPrinter{}, nil, nil)

	_, err := svc.Create(context.Background(), presaleRequest(7, 1, 1))
	var configErr *models.ConfigurationError
	require.True(t, errors.As(err, &configErr))
}

func TestRedeemPrintsOneTicketPerUnit(t *testing.T) {
	svc, prn, pub := newTestService(t)
	ctx := context.Background()

	detail, err := svc.Create(ctx, presaleRequest(7, 1, 3))
	require.NoError(t, err)

	redeemed, err := svc.Redeem(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, detail.ID, redeemed.ID)
	require.Len(t, prn.tickets, 3)
	for _, ticket := range prn.tickets {
		assert.Equal(t, "Anticipada", ticket.TicketTypeName)
		assert.Equal(t, float64(5000), ticket.UnitPrice)
		assert.True(t, ticket.IncludesDrink)
		assert.NotEmpty(t, ticket.QRPayload)
	}
	assert.Contains(t, pub.topics, "santas.anticipada.impresa")

	// Redeeming removes the row from the pending listing.
	_, err = svc.Redeem(ctx, detail.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRedeemKeepsRowWhenPrinterFails(t *testing.T) {
	svc, prn, _ := newTestService(t)
	prn.failAt = 2
	ctx := context.Background()

	detail, err := svc.Create(ctx, presaleRequest(7, 1, 3))
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, detail.ID)
	var printErr *models.PrintingError
	require.True(t, errors.As(err, &printErr))

	// The pre-sale stays pending so the door can retry once the printer
	// is back.
	pending, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, detail.ID, pending[0].ID)
}

func TestDeletePublishesAudit(t *testing.T) {
	svc, prn, pub := newTestService(t)
	ctx := context.Background()

	detail, err := svc.Create(ctx, presaleRequest(7, 1, 1))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, detail.ID))
	assert.Empty(t, prn.tickets)
	assert.Contains(t, pub.topics, "santas.anticipada.eliminada")
}
