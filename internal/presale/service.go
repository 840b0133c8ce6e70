package presale

import (
	"context"
	"fmt"
	"strconv"

	"santas-pos/internal/kafka"
	"santas-pos/internal/logger"
	"santas-pos/internal/models"
	"santas-pos/internal/printer"
)

// CatalogResolver finds the Anticipada ticket type.
type CatalogResolver interface {
	ResolveAnticipada(ctx context.Context) (*models.TicketType, error)
}

// Publisher is the audit event sink. Publish failures are logged, never
// propagated: the owning transaction has already committed.
type Publisher interface {
	Publish(topic string, key string, value interface{}) error
}

// Service orchestrates the pre-sale lifecycle: quota-checked creation,
// administrative deletion and redemption ("imprimir").
type Service struct {
	DB      *DB
	Catalog CatalogResolver
	Printer printer.Printer
	Kafka   Publisher
	Logger  *logger.Logger
}

func NewService(db *DB, cat CatalogResolver, prn printer.Printer, pub Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Catalog: cat, Printer: prn, Kafka: pub, Logger: log}
}

// Create validates the request, resolves the Anticipada ticket type,
// reserves the promoter's quota and writes the pre-sale plus its sales
// ledger line in one transaction.
func (s *Service) Create(ctx context.Context, req models.PreSaleRequest) (*models.PreSaleDetail, error) {
	if req.BuyerName == "" {
		return nil, &models.ValidationError{Msg: "Debe indicar un nombre."}
	}
	if req.PromoterID == nil || *req.PromoterID == 0 {
		return nil, &models.ValidationError{Msg: "Debe indicar un promotor para asignar el cupo."}
	}
	if req.EventID == nil || *req.EventID == 0 {
		return nil, &models.ValidationError{Msg: "Debe indicar un evento para validar el cupo."}
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	tt, err := s.Catalog.ResolveAnticipada(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.DB.CreateWithQuota(ctx, req, tt)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.LogQuota("reserva", *req.PromoterID, *req.EventID,
			fmt.Sprintf("anticipada %d por %d unidades", detail.ID, detail.Quantity))
	}
	s.publish(kafka.TopicPreSaleCreated, detail.ID, detail)

	return detail, nil
}

// Redeem prints one ticket per unit and removes the pre-sale. The row is
// only deleted after every print succeeds, so a printer fault leaves it
// listed for retry.
func (s *Service) Redeem(ctx context.Context, id int64) (*models.PreSaleDetail, error) {
	detail, err := s.DB.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	ticket := printer.Ticket{
		TicketTypeName: detail.TicketTypeName,
		UnitPrice:      detail.TicketTypePrice,
		IncludesDrink:  detail.IncludesDrink,
		QRPayload:      "anticipada:" + strconv.FormatInt(detail.ID, 10),
	}
	if ticket.TicketTypeName == "" {
		ticket.TicketTypeName = "Anticipada"
	}

	for i := 0; i < detail.Quantity; i++ {
		if err := s.Printer.Print(ctx, ticket); err != nil {
			return nil, &models.PrintingError{Err: err}
		}
	}

	if err := s.DB.DeleteRedeemed(ctx, id); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.LogPrinter(strconv.FormatInt(id, 10),
			fmt.Sprintf("anticipada impresa (%d tickets) y retirada del listado", detail.Quantity))
	}
	s.publish(kafka.TopicPreSaleRedeemed, id, detail)

	return detail, nil
}

// Delete removes a pre-sale without printing it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.DB.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(kafka.TopicPreSaleDeleted, id, map[string]int64{"id": id})
	return nil
}

// List returns the pending pre-sales.
func (s *Service) List(ctx context.Context) ([]models.PreSaleDetail, error) {
	return s.DB.List(ctx)
}

func (s *Service) publish(topic string, id int64, value interface{}) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.Publish(topic, strconv.FormatInt(id, 10), value); err != nil && s.Logger != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish %s failed: %v", topic, err))
	}
}
