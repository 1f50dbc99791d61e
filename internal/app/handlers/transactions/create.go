package transactions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/handlers/support"
	"tradeboard/internal/app/middleware"
	"tradeboard/internal/app/outbox"
	"tradeboard/internal/app/policies"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	domainannouncements "tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/daterange"
	domaintransactions "tradeboard/internal/domain/transactions"
)

const createTransactionKey = "transactions.create"

type CreateTransactionCommand struct {
	TransactionID   string `validate:"required"`
	AnnouncementID  string `validate:"required"`
	BuyerID         string `validate:"required"`
	Period          *daterange.Range
	IdempotencyKeyV string
}

func (c CreateTransactionCommand) Key() string { return createTransactionKey }

// IdempotencyKey is scoped to the buyer so keys from different customers never collide.
func (c CreateTransactionCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return createTransactionKey + ":" + c.BuyerID + ":" + c.IdempotencyKeyV
}

func (c CreateTransactionCommand) ResultPrototype() any { return &dto.Transaction{} }

func (c CreateTransactionCommand) Requester() string { return c.BuyerID }

type CreateTransactionHandler struct {
	UoWFactory uow.UoWFactory
	Reserver   *reservation.Reserver
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateTransactionHandler) Handle(ctx context.Context, cmd CreateTransactionCommand) (*dto.Transaction, error) {
	var result *dto.Transaction
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		announcement, err := unit.Announcements().ByID(ctx, domainannouncements.ID(cmd.AnnouncementID))
		if err != nil {
			return err
		}
		terms := announcement.Terms()

		var reserved *reservation.Reservation
		if terms.IsRental() {
			if cmd.Period == nil {
				return ErrPeriodRequired
			}
			res, err := h.Reserver.Reserve(ctx, terms.ID, *cmd.Period)
			if err != nil {
				return err
			}
			reserved = &res
		}

		tx, err := h.create(ctx, unit, terms, cmd)
		if err != nil {
			if reserved != nil {
				h.compensate(ctx, *reserved, err)
			}
			return err
		}

		if tx.Status == domaintransactions.StatusConfirmed {
			uow.AfterCommit(ctx, func(ctx context.Context) { h.initiatePayment(ctx, tx) })
		}
		out := dto.MapTransaction(tx)
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *CreateTransactionHandler) create(ctx context.Context, unit uow.UnitOfWork, terms domainannouncements.Terms, cmd CreateTransactionCommand) (*domaintransactions.Transaction, error) {
	tx, err := domaintransactions.New(domaintransactions.CreateParams{
		ID:      domaintransactions.ID(cmd.TransactionID),
		Terms:   terms,
		BuyerID: cmd.BuyerID,
		Period:  cmd.Period,
		Now:     support.Now(h.Now),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Transactions().Save(ctx, tx); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, tx.Drain()); err != nil {
		return nil, err
	}
	support.Logger(h.Logger).InfoContext(ctx, "transaction created",
		slog.String("transaction_id", string(tx.ID)),
		slog.String("announcement_id", string(tx.AnnouncementID)),
		slog.String("status", string(tx.Status)))
	return tx, nil
}

// compensate gives back dates reserved for a transaction that was never stored.
func (h *CreateTransactionHandler) compensate(ctx context.Context, res reservation.Reservation, cause error) {
	logger := support.Logger(h.Logger)
	if _, err := h.Reserver.Release(ctx, res.AnnouncementID, res.Range); err != nil {
		logger.ErrorContext(ctx, "release after failed transaction create",
			slog.String("announcement_id", string(res.AnnouncementID)),
			slog.String("range", res.Range.String()),
			slog.Any("cause", cause),
			slog.Any("err", err))
		return
	}
	logger.WarnContext(ctx, "reservation released after failed transaction create",
		slog.String("announcement_id", string(res.AnnouncementID)),
		slog.Any("cause", cause))
}

func (h *CreateTransactionHandler) initiatePayment(ctx context.Context, tx *domaintransactions.Transaction) {
	initiatePayment(ctx, h.Payments, support.Logger(h.Logger), tx)
}

// initiatePayment notifies the payments port. Failures are logged; the
// transaction stays CONFIRMED.
func initiatePayment(ctx context.Context, port policies.PaymentsPort, logger *slog.Logger, tx *domaintransactions.Transaction) {
	if port == nil {
		return
	}
	req := policies.PaymentRequest{
		TransactionID: string(tx.ID),
		BuyerID:       tx.BuyerID,
		SellerID:      tx.SellerID,
		Amount:        tx.TotalPrice,
		Deposit:       tx.Deposit,
	}
	if err := port.InitiatePayment(ctx, req); err != nil {
		logger.ErrorContext(ctx, "initiate payment",
			slog.String("transaction_id", string(tx.ID)),
			slog.Any("err", err))
	}
}

var ErrPeriodRequired = fmt.Errorf("%w: rental requires a date range", daterange.ErrInvalidRange)

var _ commands.Handler[CreateTransactionCommand, *dto.Transaction] = (*CreateTransactionHandler)(nil)
var _ middleware.IdempotentCommand = CreateTransactionCommand{}
