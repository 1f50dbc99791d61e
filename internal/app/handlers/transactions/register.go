package transactions

import (
	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/queries"
)

// Handlers groups the transaction lifecycle handlers for registration.
type Handlers struct {
	Create *CreateTransactionHandler
	Update *UpdateStatusHandler
	Cancel *CancelTransactionHandler
	Get    *GetTransactionHandler
	List   *ListTransactionsHandler
}

func (h Handlers) Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus) {
	commands.RegisterHandler[CreateTransactionCommand, *dto.Transaction](cmdBus, createTransactionKey, h.Create)
	commands.RegisterHandler[UpdateStatusCommand, *dto.Transaction](cmdBus, updateStatusKey, h.Update)
	commands.RegisterHandler[CancelTransactionCommand, *dto.Transaction](cmdBus, cancelTransactionKey, h.Cancel)
	queries.RegisterHandler[GetTransactionQuery, dto.Transaction](queryBus, getTransactionKey, h.Get)
	queries.RegisterHandler[ListTransactionsQuery, dto.TransactionCollection](queryBus, listTransactionsKey, h.List)
}
