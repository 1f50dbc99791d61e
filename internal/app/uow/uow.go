package uow

import (
	"context"

	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	domaintransactions "tradeboard/internal/domain/transactions"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Announcements() domainannouncements.Repository
	Availability() domainavailability.Repository
	Transactions() domaintransactions.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
