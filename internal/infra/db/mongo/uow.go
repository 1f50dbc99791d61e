package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"tradeboard/internal/app/uow"
	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	domaintransactions "tradeboard/internal/domain/transactions"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	AnnouncementsRepo domainannouncements.Repository
	CalendarsRepo     domainavailability.Repository
	TransactionsRepo  domaintransactions.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory with the Mongo repositories over db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:                db,
		AnnouncementsRepo: NewAnnouncementRepository(db),
		CalendarsRepo:     NewCalendarRepository(db),
		TransactionsRepo:  NewTransactionRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(readconcern.Snapshot()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:       session,
		announcements: f.AnnouncementsRepo,
		availability:  f.CalendarsRepo,
		transactions:  f.TransactionsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return commitError(u.session.CommitTransaction(ctx))
}

// commitError tags write conflicts and transient transaction failures with
// uow.ErrCommitConflict, keeping the driver error in the chain.
func commitError(err error) error {
	if err != nil && isConflict(err) {
		return fmt.Errorf("%w: %w", uow.ErrCommitConflict, err)
	}
	return err
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
