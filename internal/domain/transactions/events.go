package transactions

import (
	"time"

	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/money"
)

type Created struct {
	TransactionID  ID
	AnnouncementID announcements.ID
	SellerID       string
	BuyerID        string
	Kind           announcements.Kind
	Period         *daterange.Range
	TotalPrice     money.Money
	Status         Status
	At             time.Time
}

func (e Created) EventName() string     { return "transaction.created" }
func (e Created) AggregateID() string   { return string(e.TransactionID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	TransactionID ID
	From          Status
	To            Status
	By            string
	At            time.Time
}

func (e StatusChanged) EventName() string     { return "transaction.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.TransactionID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type CancelledEvent struct {
	TransactionID  ID
	AnnouncementID announcements.ID
	From           Status
	By             string
	Period         *daterange.Range
	At             time.Time
}

func (e CancelledEvent) EventName() string     { return "transaction.cancelled" }
func (e CancelledEvent) AggregateID() string   { return string(e.TransactionID) }
func (e CancelledEvent) OccurredAt() time.Time { return e.At }
