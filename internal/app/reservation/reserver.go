package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradeboard/internal/app/outbox"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/daterange"
)

const DefaultLockWait = 2 * time.Second

// Outcome labels used for metrics.
const (
	OutcomeReserved     = "reserved"
	OutcomeConflict     = "conflict"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidRange = "invalid_range"
	OutcomeBusy         = "busy"
	OutcomeError        = "error"
)

type Metrics interface {
	ReservationOutcome(outcome string)
	LockWait(d time.Duration)
}

// Reservation is the handle returned for a committed range.
type Reservation struct {
	AnnouncementID announcements.ID
	Range          daterange.Range
	Dates          []daterange.Date
}

// Reserver serializes every calendar mutation per announcement. The calendar
// repository comes from the unit of work in ctx when there is one.
type Reserver struct {
	Calendars availability.Repository
	Locks     *Locks
	Wait      time.Duration
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Metrics   Metrics
	Logger    *slog.Logger
	Now       func() time.Time
}

// Reserve checks and commits r on the announcement's calendar atomically.
func (s *Reserver) Reserve(ctx context.Context, id announcements.ID, r daterange.Range) (Reservation, error) {
	res, err := s.reserve(ctx, id, r)
	s.observe(err)
	if err != nil {
		s.logger().Info("reservation rejected",
			slog.String("announcement_id", string(id)),
			slog.String("range", r.String()),
			slog.Any("err", err))
	}
	return res, err
}

func (s *Reserver) reserve(ctx context.Context, id announcements.ID, r daterange.Range) (Reservation, error) {
	if err := r.Validate(); err != nil {
		return Reservation{}, err
	}
	now := s.now()
	if r.Start.Before(daterange.Today(now)) {
		return Reservation{}, fmt.Errorf("%w: reservation starts %s", availability.ErrPastDate, r.Start)
	}

	err := s.withCalendar(ctx, id, func(cal *availability.Calendar) error {
		return cal.Commit(r, now)
	})
	if err != nil {
		return Reservation{}, err
	}
	return Reservation{AnnouncementID: id, Range: r, Dates: r.Days()}, nil
}

// Open adds dates to the calendar.
func (s *Reserver) Open(ctx context.Context, id announcements.ID, dates []daterange.Date) (*availability.Calendar, error) {
	var out *availability.Calendar
	err := s.withCalendar(ctx, id, func(cal *availability.Calendar) error {
		if err := cal.Open(dates, s.now()); err != nil {
			return err
		}
		out = cal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Release frees the rented dates of r.
func (s *Reserver) Release(ctx context.Context, id announcements.ID, r daterange.Range) (*availability.Calendar, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var out *availability.Calendar
	err := s.withCalendar(ctx, id, func(cal *availability.Calendar) error {
		if err := cal.Release(r, s.now()); err != nil {
			return err
		}
		out = cal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the calendar under the same exclusion as mutations. A
// missing calendar is not an error.
func (s *Reserver) Delete(ctx context.Context, id announcements.ID) error {
	repo, err := s.calendars(ctx)
	if err != nil {
		return err
	}
	release, err := s.Locks.Acquire(ctx, id, s.wait())
	if err != nil {
		return err
	}
	defer release()
	return repo.Delete(ctx, id)
}

func (s *Reserver) withCalendar(ctx context.Context, id announcements.ID, mutate func(*availability.Calendar) error) error {
	repo, err := s.calendars(ctx)
	if err != nil {
		return err
	}

	started := time.Now()
	release, err := s.Locks.Acquire(ctx, id, s.wait())
	if s.Metrics != nil {
		s.Metrics.LockWait(time.Since(started))
	}
	if err != nil {
		return err
	}
	defer release()

	cal, err := repo.Calendar(ctx, id)
	if err != nil {
		return err
	}
	if err := mutate(cal); err != nil {
		if errors.Is(err, availability.ErrConflict) {
			for _, ev := range cal.Drain() {
				s.logger().Warn("calendar mutation rejected",
					slog.String("event", ev.EventName()),
					slog.String("announcement_id", string(id)))
			}
		}
		return err
	}
	if err := repo.Save(ctx, cal); err != nil {
		if errors.Is(err, availability.ErrConcurrentUpdate) {
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
		return err
	}
	return outbox.RecordDomainEvents(ctx, s.Outbox, s.encoder(), cal.Drain())
}

func (s *Reserver) calendars(ctx context.Context) (availability.Repository, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit.Availability(), nil
	}
	if s.Calendars == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return s.Calendars, nil
}

func (s *Reserver) observe(err error) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.ReservationOutcome(Outcome(err))
}

// Outcome classifies a reservation result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeReserved
	case errors.Is(err, availability.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, availability.ErrCalendarNotFound):
		return OutcomeNotFound
	case errors.Is(err, daterange.ErrInvalidRange):
		return OutcomeInvalidRange
	case errors.Is(err, ErrBusy):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}

func (s *Reserver) wait() time.Duration {
	if s.Wait > 0 {
		return s.Wait
	}
	return DefaultLockWait
}

func (s *Reserver) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Reserver) encoder() outbox.EventEncoder {
	if s.Encoder != nil {
		return s.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (s *Reserver) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
