package events

import (
	"context"
	"sort"
	"time"

	"santas-pos/internal/models"
)

// Service keeps the event calendar tidy for the quota workflows: past
// events get deactivated, the next Saturdays exist before anyone sells
// against them. The clock and timezone are injected so date math never
// reads ambient process state.
type Service struct {
	DB       *DB
	Location *time.Location
	Now      func() time.Time
	// Count and Capacity parameterize Saturday auto-provisioning.
	Count    int
	Capacity int
}

func NewService(db *DB, loc *time.Location, count, capacity int) *Service {
	return &Service{DB: db, Location: loc, Count: count, Capacity: capacity}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.Location)
	}
	return time.Now().In(s.Location)
}

// DeactivatePastEvents retires every event whose date has passed.
// Idempotent.
func (s *Service) DeactivatePastEvents(ctx context.Context) error {
	return s.DB.DeactivateBefore(ctx, s.now())
}

// EnsureUpcomingSaturdays guarantees an active event exists for each of the
// next Count Saturdays, creating "Evento" at 23:00 venue time where no
// manual event occupies the date. Returns the resulting events sorted by
// date. Re-running it creates nothing new.
func (s *Service) EnsureUpcomingSaturdays(ctx context.Context) ([]models.Event, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.Location)

	// Weekday 6 is Saturday; a Saturday "today" counts as the first one.
	days := (6 - int(today.Weekday()) + 7) % 7
	saturday := today.AddDate(0, 0, days)

	result := make([]models.Event, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		dayStart := saturday.AddDate(0, 0, 7*i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		existing, err := s.DB.ActiveOnDate(ctx, dayStart, dayEnd)
		if err == nil {
			result = append(result, *existing)
			continue
		}
		if err != models.ErrNotFound {
			return nil, err
		}

		ev := &models.Event{
			Name:     "Evento",
			Date:     dayStart.Add(23 * time.Hour),
			Capacity: s.Capacity,
			Active:   true,
		}
		if err := s.DB.InsertIgnore(ctx, ev); err != nil {
			return nil, err
		}

		// A lost conflict race leaves ev without an id; re-read either way
		// so the caller sees the winning row.
		existing, err = s.DB.ActiveOnDate(ctx, dayStart, dayEnd)
		if err != nil && err != models.ErrNotFound {
			return nil, err
		}
		if existing != nil {
			result = append(result, *existing)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// Upcoming deactivates stale events, provisions Saturdays and returns them.
func (s *Service) Upcoming(ctx context.Context) ([]models.Event, error) {
	if err := s.DeactivatePastEvents(ctx); err != nil {
		return nil, err
	}
	return s.EnsureUpcomingSaturdays(ctx)
}

// Calendar returns the active events of the next 60 days, provisioning
// Saturdays first.
func (s *Service) Calendar(ctx context.Context) ([]models.Event, error) {
	if err := s.DeactivatePastEvents(ctx); err != nil {
		return nil, err
	}
	if _, err := s.EnsureUpcomingSaturdays(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.Location)
	return s.DB.ListActiveBetween(ctx, today, today.AddDate(0, 0, 60))
}

// ListUpcoming returns active future events without provisioning.
func (s *Service) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	if err := s.DeactivatePastEvents(ctx); err != nil {
		return nil, err
	}
	return s.DB.ListActiveFrom(ctx, s.now())
}

// GetByID passes through to the table.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	return s.DB.GetByID(ctx, id)
}

// Create schedules a manual event.
func (s *Service) Create(ctx context.Context, name, detail string, date time.Time, capacity int) (*models.Event, error) {
	if name == "" || date.IsZero() || capacity == 0 {
		return nil, &models.ValidationError{Msg: "Campos obligatorios: nombre, fecha, capacidad"}
	}
	ev := &models.Event{
		Name:     name,
		Detail:   detail,
		Date:     date,
		Capacity: capacity,
		Active:   true,
	}
	if err := s.DB.Insert(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update applies a partial edit.
func (s *Service) Update(ctx context.Context, id int64, req models.EventUpsertRequest) (*models.Event, error) {
	return s.DB.Update(ctx, id, req)
}

// Deactivate soft-deletes one event.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.DB.Deactivate(ctx, id)
}
