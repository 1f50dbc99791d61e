package memory

import (
	"context"
	"errors"

	"tradeboard/internal/app/uow"
	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	domaintransactions "tradeboard/internal/domain/transactions"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	AnnouncementsRepo domainannouncements.Repository
	CalendarsRepo     domainavailability.Repository
	TransactionsRepo  domaintransactions.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		AnnouncementsRepo: NewAnnouncementRepository(),
		CalendarsRepo:     NewCalendarRepository(),
		TransactionsRepo:  NewTransactionRepository(),
	}
}

// Begin starts a lightweight transaction boundary. Writes are applied
// immediately; there is no rollback.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.AnnouncementsRepo == nil || f.CalendarsRepo == nil || f.TransactionsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		announcements: f.AnnouncementsRepo,
		availability:  f.CalendarsRepo,
		transactions:  f.TransactionsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	announcements domainannouncements.Repository
	availability  domainavailability.Repository
	transactions  domaintransactions.Repository
}

func (u *Unit) Announcements() domainannouncements.Repository {
	return u.announcements
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.availability
}

func (u *Unit) Transactions() domaintransactions.Repository {
	return u.transactions
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
