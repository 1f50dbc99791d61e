// Package bootstrap assembles the command and query buses over a storage
// backend chosen by the caller.
package bootstrap

import (
	"errors"
	"log/slog"
	"time"

	"tradeboard/internal/app/commands"
	announcementsapp "tradeboard/internal/app/handlers/announcements"
	availabilityapp "tradeboard/internal/app/handlers/availability"
	transactionsapp "tradeboard/internal/app/handlers/transactions"
	"tradeboard/internal/app/middleware"
	"tradeboard/internal/app/outbox"
	"tradeboard/internal/app/policies"
	"tradeboard/internal/app/queries"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/transactions"
)

var ErrMissingDependency = errors.New("bootstrap: missing dependency")

type Dependencies struct {
	UoWFactory  uow.UoWFactory
	Calendars   availability.Repository
	Outbox      outbox.Outbox
	Idempotency middleware.IdempotencyStore
	Validator   middleware.Validator
	Payments    policies.PaymentsPort
	Media       policies.MediaStore
	Metrics     reservation.Metrics
	Policy      transactions.Policy
	LockWait    time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

type App struct {
	Commands commands.Bus
	Queries  queries.Bus
	Reserver *reservation.Reserver
}

func Build(deps Dependencies) (*App, error) {
	if deps.UoWFactory == nil || deps.Calendars == nil || deps.Outbox == nil || deps.Idempotency == nil || deps.Validator == nil {
		return nil, ErrMissingDependency
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	encoder := outbox.JSONEventEncoder{}

	reserver := &reservation.Reserver{
		Calendars: deps.Calendars,
		Locks:     reservation.NewLocks(),
		Wait:      deps.LockWait,
		Outbox:    deps.Outbox,
		Encoder:   encoder,
		Metrics:   deps.Metrics,
		Logger:    logger.With("component", "reservation"),
		Now:       now,
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	announcements := &announcementsapp.Handler{
		UoWFactory: deps.UoWFactory,
		Reserver:   reserver,
		Media:      deps.Media,
		Outbox:     deps.Outbox,
		Encoder:    encoder,
		Logger:     logger.With("component", "announcements"),
		Now:        now,
	}
	announcements.Register(commandBus)
	(&announcementsapp.GetAnnouncementHandler{UoWFactory: deps.UoWFactory}).Register(queryBus)

	availabilityapp.Register(commandBus, queryBus,
		&availabilityapp.CalendarHandler{UoWFactory: deps.UoWFactory, Reserver: reserver, Logger: logger.With("component", "availability")},
		&availabilityapp.GetCalendarHandler{UoWFactory: deps.UoWFactory},
	)

	txLogger := logger.With("component", "transactions")
	transactionsapp.Handlers{
		Create: &transactionsapp.CreateTransactionHandler{
			UoWFactory: deps.UoWFactory,
			Reserver:   reserver,
			Payments:   deps.Payments,
			Outbox:     deps.Outbox,
			Encoder:    encoder,
			Logger:     txLogger,
			Now:        now,
		},
		Update: &transactionsapp.UpdateStatusHandler{
			UoWFactory: deps.UoWFactory,
			Policy:     deps.Policy,
			Payments:   deps.Payments,
			Outbox:     deps.Outbox,
			Encoder:    encoder,
			Logger:     txLogger,
			Now:        now,
		},
		Cancel: &transactionsapp.CancelTransactionHandler{
			UoWFactory: deps.UoWFactory,
			Reserver:   reserver,
			Outbox:     deps.Outbox,
			Encoder:    encoder,
			Logger:     txLogger,
			Now:        now,
		},
		Get:  &transactionsapp.GetTransactionHandler{UoWFactory: deps.UoWFactory},
		List: &transactionsapp.ListTransactionsHandler{UoWFactory: deps.UoWFactory},
	}.Register(commandBus, queryBus)
	logger.Debug("buses ready", "commands", commandBus.Keys(), "queries", queryBus.Keys())

	authorizer := middleware.RequesterAuthorizer{}
	return &App{
		Commands: middleware.ChainCommands(
			commandBus,
			middleware.Logging(logger.With("component", "commands")),
			middleware.Validation(deps.Validator),
			middleware.Authorization(authorizer),
			middleware.Idempotency(deps.Idempotency, nil),
			middleware.OutboxFlush(deps.Outbox),
			middleware.Transaction(deps.UoWFactory, nil),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryValidation(deps.Validator),
			middleware.QueryAuthorization(authorizer),
		),
		Reserver: reserver,
	}, nil
}
