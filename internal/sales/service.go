package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"santas-pos/internal/kafka"
	"santas-pos/internal/logger"
	"santas-pos/internal/models"
	"santas-pos/internal/printer"
)

// TicketTypeGetter reads the catalog.
type TicketTypeGetter interface {
	GetActiveByID(ctx context.Context, id int64) (*models.TicketType, error)
}

// EventGetter reads the event calendar.
type EventGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

// Publisher is the audit event sink.
type Publisher interface {
	Publish(topic string, key string, value interface{}) error
}

// Service records walk-in sales. The ledger insert commits before printing
// starts; a printer fault after that point surfaces to the caller but never
// undoes the sale.
type Service struct {
	DB      *DB
	Catalog TicketTypeGetter
	Events  EventGetter
	Printer printer.Printer
	Kafka   Publisher
	Logger  *logger.Logger
	Now     func() time.Time
}

func NewService(db *DB, cat TicketTypeGetter, ev EventGetter, prn printer.Printer, pub Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Catalog: cat, Events: ev, Printer: prn, Kafka: pub, Logger: log}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RecordWalkIn validates, snapshots the current base price, appends the
// ledger line and prints one ticket per unit.
func (s *Service) RecordWalkIn(ctx context.Context, req models.WalkInSaleRequest) (*models.WalkInSaleResponse, error) {
	if req.TicketTypeID == 0 || req.Quantity == 0 {
		return nil, &models.ValidationError{Msg: "Los campos entrada_id y cantidad son obligatorios."}
	}
	if req.Quantity < 1 {
		return nil, &models.ValidationError{Msg: "La cantidad debe ser al menos 1."}
	}

	if req.EventID != nil {
		ev, err := s.Events.GetByID(ctx, *req.EventID)
		if errors.Is(err, models.ErrNotFound) || (err == nil && !ev.Active) {
			return nil, &models.ValidationError{Msg: "El evento está cerrado o no existe."}
		}
		if err != nil {
			return nil, err
		}
	}

	tt, err := s.Catalog.GetActiveByID(ctx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}

	sale := &models.SaleRecord{
		TicketTypeID:  tt.ID,
		EventID:       req.EventID,
		Quantity:      req.Quantity,
		UnitPrice:     tt.BasePrice,
		IncludesDrink: req.IncludesDrink,
		SoldAt:        s.now(),
	}
	if err := s.DB.Insert(ctx, sale); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.LogSale("registro", sale.ID,
			fmt.Sprintf("entrada %d x%d a $%.2f", tt.ID, sale.Quantity, sale.UnitPrice))
	}
	if s.Kafka != nil {
		if err := s.Kafka.Publish(kafka.TopicSaleRecorded, strconv.FormatInt(sale.ID, 10), sale); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish %s failed: %v", kafka.TopicSaleRecorded, err))
		}
	}

	// The sale is committed at this point. Printing stays synchronous, as
	// the counter workflow expects, and its failure does not undo the sale.
	// Each physical ticket gets its own QR id so the door can void them
	// one by one.
	for i := 0; i < req.Quantity; i++ {
		ticket := printer.Ticket{
			TicketTypeName: tt.Name,
			UnitPrice:      tt.BasePrice,
			IncludesDrink:  req.IncludesDrink,
			QRPayload:      "venta:" + uuid.NewString(),
		}
		if err := s.Printer.Print(ctx, ticket); err != nil {
			return nil, &models.PrintingError{Err: err}
		}
	}

	return &models.WalkInSaleResponse{
		ID:            sale.ID,
		TicketTypeID:  sale.TicketTypeID,
		EventID:       sale.EventID,
		Quantity:      sale.Quantity,
		UnitPrice:     sale.UnitPrice,
		IncludesDrink: sale.IncludesDrink,
		SoldAt:        sale.SoldAt,
		Total:         sale.UnitPrice * float64(sale.Quantity),
	}, nil
}

// Aggregates exposes the summed ledger for the sales board.
func (s *Service) Aggregates(ctx context.Context) ([]models.SaleAggregate, error) {
	return s.DB.Aggregates(ctx)
}
