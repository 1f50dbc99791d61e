package announcements

import "time"

type Created struct {
	AnnouncementID ID
	OwnerID        string
	Kind           Kind
	At             time.Time
}

func (e Created) EventName() string     { return "announcement.created" }
func (e Created) AggregateID() string   { return string(e.AnnouncementID) }
func (e Created) OccurredAt() time.Time { return e.At }

type Updated struct {
	AnnouncementID ID
	At             time.Time
}

func (e Updated) EventName() string     { return "announcement.updated" }
func (e Updated) AggregateID() string   { return string(e.AnnouncementID) }
func (e Updated) OccurredAt() time.Time { return e.At }

type Deleted struct {
	AnnouncementID ID
	OwnerID        string
	Kind           Kind
	At             time.Time
}

func (e Deleted) EventName() string     { return "announcement.deleted" }
func (e Deleted) AggregateID() string   { return string(e.AnnouncementID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
