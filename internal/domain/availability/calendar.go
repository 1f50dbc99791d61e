package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/events"
)

var (
	ErrConflict         = errors.New("availability: dates are not available")
	ErrCalendarNotFound = errors.New("availability: calendar not found")
	ErrConcurrentUpdate = errors.New("availability: calendar was modified concurrently")
	ErrNoDates          = fmt.Errorf("%w: no dates supplied", daterange.ErrInvalidRange)
	ErrPastDate         = fmt.Errorf("%w: date is in the past", daterange.ErrInvalidRange)
)

// Calendar tracks the dates an owner opened and the subset already rented.
// Rented is always a subset of Available.
type Calendar struct {
	AnnouncementID announcements.ID
	Available      daterange.Set
	Rented         daterange.Set
	Version        int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id announcements.ID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
	// Delete is idempotent: a missing calendar is not an error.
	Delete(ctx context.Context, id announcements.ID) error
}

func NewCalendar(id announcements.ID) *Calendar {
	return &Calendar{
		AnnouncementID: id,
		Available:      daterange.NewSet(),
		Rented:         daterange.NewSet(),
	}
}

// Open marks dates bookable. Either every date is added or none is.
func (c *Calendar) Open(dates []daterange.Date, now time.Time) error {
	if len(dates) == 0 {
		return ErrNoDates
	}
	today := daterange.Today(now)
	for _, d := range dates {
		if d.IsZero() {
			return daterange.ErrInvalidDate
		}
		if d.Before(today) {
			return fmt.Errorf("%w: %s", ErrPastDate, d)
		}
	}
	c.ensureSets()
	added := make([]daterange.Date, 0, len(dates))
	for _, d := range dates {
		if !c.Available.Has(d) {
			c.Available.Add(d)
			added = append(added, d)
		}
	}
	if len(added) > 0 {
		c.Record(DatesOpened{AnnouncementID: string(c.AnnouncementID), Dates: added, At: now.UTC()})
	}
	return nil
}

// IsBookable reports whether every day of r is open and not rented.
func (c *Calendar) IsBookable(r daterange.Range) bool {
	if r.Validate() != nil {
		return false
	}
	for _, d := range r.Days() {
		if !c.Available.Has(d) || c.Rented.Has(d) {
			return false
		}
	}
	return true
}

// Commit moves every day of r into Rented, or fails without mutating.
func (c *Calendar) Commit(r daterange.Range, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if !c.IsBookable(r) {
		c.Record(OverbookingPrevented{AnnouncementID: string(c.AnnouncementID), Range: r, At: now.UTC()})
		return ErrConflict
	}
	c.ensureSets()
	for _, d := range r.Days() {
		c.Rented.Add(d)
	}
	c.Record(RangeReserved{AnnouncementID: string(c.AnnouncementID), Range: r, At: now.UTC()})
	return nil
}

// Release frees the rented days of r. Days that were not rented are ignored and
// availability is kept.
func (c *Calendar) Release(r daterange.Range, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for _, d := range r.Days() {
		c.Rented.Remove(d)
	}
	c.Record(RangeReleased{AnnouncementID: string(c.AnnouncementID), Range: r, At: now.UTC()})
	return nil
}

// Bookable lists open, unrented dates in ascending order.
func (c *Calendar) Bookable() []daterange.Date {
	free := daterange.NewSet()
	for d := range c.Available {
		if !c.Rented.Has(d) {
			free.Add(d)
		}
	}
	return free.Sorted()
}

// Clone returns a deep copy without pending events.
func (c *Calendar) Clone() *Calendar {
	return &Calendar{
		AnnouncementID: c.AnnouncementID,
		Available:      c.Available.Clone(),
		Rented:         c.Rented.Clone(),
		Version:        c.Version,
	}
}

func (c *Calendar) ensureSets() {
	if c.Available == nil {
		c.Available = daterange.NewSet()
	}
	if c.Rented == nil {
		c.Rented = daterange.NewSet()
	}
}
