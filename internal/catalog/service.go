package catalog

import (
	"context"
	"errors"

	"santas-pos/internal/models"
)

// Service resolves catalog entries, consulting the Redis cache first when
// one is wired. A nil cache degrades to direct reads.
type Service struct {
	DB    *DB
	Cache *TicketTypeCache
}

func NewService(db *DB, cache *TicketTypeCache) *Service {
	return &Service{DB: db, Cache: cache}
}

// ResolveAnticipada finds the catalog entry the pre-sale register charges
// against. A catalog without one is a configuration fault, not a user error.
func (s *Service) ResolveAnticipada(ctx context.Context) (*models.TicketType, error) {
	if s.Cache != nil {
		if tt, err := s.Cache.Get(ctx, models.AnticipadaTypeName); err == nil && tt != nil {
			return tt, nil
		}
	}

	tt, err := s.DB.FindByName(ctx, models.AnticipadaTypeName)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &models.ConfigurationError{Msg: "No existe una entrada llamada Anticipada."}
	}
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		// Cache population is best effort; a write failure only costs the
		// next lookup a database round trip.
		_ = s.Cache.Set(ctx, models.AnticipadaTypeName, tt)
	}
	return tt, nil
}

// GetActiveByID passes through to the catalog table.
func (s *Service) GetActiveByID(ctx context.Context, id int64) (*models.TicketType, error) {
	return s.DB.GetActiveByID(ctx, id)
}
