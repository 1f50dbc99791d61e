package transactions

import (
	"context"

	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/handlers/support"
	"tradeboard/internal/app/queries"
	"tradeboard/internal/app/uow"
	domaintransactions "tradeboard/internal/domain/transactions"
)

const (
	getTransactionKey   = "transactions.get"
	listTransactionsKey = "transactions.list"
)

type GetTransactionQuery struct {
	TransactionID string `validate:"required"`
	RequesterID   string `validate:"required"`
}

func (q GetTransactionQuery) Key() string { return getTransactionKey }

func (q GetTransactionQuery) Requester() string { return q.RequesterID }

type GetTransactionHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetTransactionHandler) Handle(ctx context.Context, q GetTransactionQuery) (dto.Transaction, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Transaction{}, err
	}
	defer cleanup()

	tx, err := unit.Transactions().ByID(ctx, domaintransactions.ID(q.TransactionID))
	if err != nil {
		return dto.Transaction{}, err
	}
	if err := tx.Authorize(q.RequesterID); err != nil {
		return dto.Transaction{}, err
	}
	return dto.MapTransaction(tx), nil
}

type ListTransactionsQuery struct {
	RequesterID string `validate:"required"`
}

func (q ListTransactionsQuery) Key() string { return listTransactionsKey }

func (q ListTransactionsQuery) Requester() string { return q.RequesterID }

type ListTransactionsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListTransactionsHandler) Handle(ctx context.Context, q ListTransactionsQuery) (dto.TransactionCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.TransactionCollection{}, err
	}
	defer cleanup()

	items, err := unit.Transactions().ListByParty(ctx, q.RequesterID)
	if err != nil {
		return dto.TransactionCollection{}, err
	}
	return dto.MapTransactions(items), nil
}

var (
	_ queries.Handler[GetTransactionQuery, dto.Transaction]             = (*GetTransactionHandler)(nil)
	_ queries.Handler[ListTransactionsQuery, dto.TransactionCollection] = (*ListTransactionsHandler)(nil)
)
