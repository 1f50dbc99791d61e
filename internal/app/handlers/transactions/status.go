package transactions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/handlers/support"
	"tradeboard/internal/app/outbox"
	"tradeboard/internal/app/policies"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/domain/availability"
	domaintransactions "tradeboard/internal/domain/transactions"
)

const (
	updateStatusKey      = "transactions.update_status"
	cancelTransactionKey = "transactions.cancel"
)

type UpdateStatusCommand struct {
	TransactionID string `validate:"required"`
	RequesterID   string `validate:"required"`
	Status        string `validate:"required"`
}

func (c UpdateStatusCommand) Key() string { return updateStatusKey }

func (c UpdateStatusCommand) Requester() string { return c.RequesterID }

type UpdateStatusHandler struct {
	UoWFactory uow.UoWFactory
	Policy     domaintransactions.Policy
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*dto.Transaction, error) {
	next, err := domaintransactions.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	var result *dto.Transaction
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		tx, err := unit.Transactions().ByID(ctx, domaintransactions.ID(cmd.TransactionID))
		if err != nil {
			return err
		}
		previous := tx.Status
		changed, err := tx.UpdateStatus(cmd.RequesterID, next, h.Policy, support.Now(h.Now))
		if err != nil {
			return err
		}
		if changed {
			if err := unit.Transactions().Save(ctx, tx); err != nil {
				return err
			}
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, tx.Drain()); err != nil {
				return err
			}
			logger := support.Logger(h.Logger)
			logger.InfoContext(ctx, "transaction status changed",
				slog.String("transaction_id", string(tx.ID)),
				slog.String("from", string(previous)),
				slog.String("to", string(tx.Status)),
				slog.String("by", cmd.RequesterID))
			if tx.Status == domaintransactions.StatusConfirmed {
				uow.AfterCommit(ctx, func(ctx context.Context) { initiatePayment(ctx, h.Payments, logger, tx) })
			}
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

type CancelTransactionCommand struct {
	TransactionID string `validate:"required"`
	RequesterID   string `validate:"required"`
}

func (c CancelTransactionCommand) Key() string { return cancelTransactionKey }

func (c CancelTransactionCommand) Requester() string { return c.RequesterID }

type CancelTransactionHandler struct {
	UoWFactory uow.UoWFactory
	Reserver   *reservation.Reserver
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

// Handle cancels the transaction and, for rentals, frees its dates. The
// transaction is saved first so a failed release never frees dates of a
// transaction that is still live.
func (h *CancelTransactionHandler) Handle(ctx context.Context, cmd CancelTransactionCommand) (*dto.Transaction, error) {
	var result *dto.Transaction
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		tx, err := unit.Transactions().ByID(ctx, domaintransactions.ID(cmd.TransactionID))
		if err != nil {
			return err
		}
		if err := tx.Cancel(cmd.RequesterID, support.Now(h.Now)); err != nil {
			return err
		}
		if err := unit.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, tx.Drain()); err != nil {
			return err
		}

		logger := support.Logger(h.Logger)
		if tx.IsRental() && tx.Period != nil {
			_, err := h.Reserver.Release(ctx, tx.AnnouncementID, *tx.Period)
			switch {
			case errors.Is(err, availability.ErrCalendarNotFound):
				logger.WarnContext(ctx, "calendar missing on cancel",
					slog.String("transaction_id", string(tx.ID)),
					slog.String("announcement_id", string(tx.AnnouncementID)))
			case err != nil:
				return err
			}
		}
		logger.InfoContext(ctx, "transaction cancelled",
			slog.String("transaction_id", string(tx.ID)),
			slog.String("by", cmd.RequesterID))
		out := dto.MapTransaction(tx)
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var (
	_ commands.Handler[UpdateStatusCommand, *dto.Transaction]      = (*UpdateStatusHandler)(nil)
	_ commands.Handler[CancelTransactionCommand, *dto.Transaction] = (*CancelTransactionHandler)(nil)
)
