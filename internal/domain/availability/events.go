package availability

import (
	"time"

	"tradeboard/internal/domain/shared/daterange"
)

type DatesOpened struct {
	AnnouncementID string
	Dates          []daterange.Date
	At             time.Time
}

func (e DatesOpened) EventName() string     { return "calendar.dates_opened" }
func (e DatesOpened) AggregateID() string   { return e.AnnouncementID }
func (e DatesOpened) OccurredAt() time.Time { return e.At }

type RangeReserved struct {
	AnnouncementID string
	Range          daterange.Range
	At             time.Time
}

func (e RangeReserved) EventName() string     { return "calendar.range_reserved" }
func (e RangeReserved) AggregateID() string   { return e.AnnouncementID }
func (e RangeReserved) OccurredAt() time.Time { return e.At }

type RangeReleased struct {
	AnnouncementID string
	Range          daterange.Range
	At             time.Time
}

func (e RangeReleased) EventName() string     { return "calendar.range_released" }
func (e RangeReleased) AggregateID() string   { return e.AnnouncementID }
func (e RangeReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	AnnouncementID string
	Range          daterange.Range
	At             time.Time
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return e.AnnouncementID }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
