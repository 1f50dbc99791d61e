package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	transactionsapp "tradeboard/internal/app/handlers/transactions"
	"tradeboard/internal/app/queries"
	"tradeboard/internal/domain/shared/daterange"
)

type TransactionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createTransactionRequest struct {
	AnnouncementID string          `json:"announcement_id" binding:"required"`
	StartDate      *daterange.Date `json:"start_date"`
	EndDate        *daterange.Date `json:"end_date"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h TransactionHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cmd := transactionsapp.CreateTransactionCommand{
		TransactionID:   uuid.NewString(),
		AnnouncementID:  req.AnnouncementID,
		BuyerID:         user.ID,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if req.StartDate != nil || req.EndDate != nil {
		var period daterange.Range
		if req.StartDate != nil {
			period.Start = *req.StartDate
		}
		if req.EndDate != nil {
			period.End = *req.EndDate
		}
		cmd.Period = &period
	}
	result, err := commands.Dispatch[transactionsapp.CreateTransactionCommand, *dto.Transaction](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h TransactionHandler) List(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	query := transactionsapp.ListTransactionsQuery{RequesterID: user.ID}
	result, err := queries.Ask[transactionsapp.ListTransactionsQuery, dto.TransactionCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h TransactionHandler) Get(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	query := transactionsapp.GetTransactionQuery{TransactionID: c.Param("id"), RequesterID: user.ID}
	result, err := queries.Ask[transactionsapp.GetTransactionQuery, dto.Transaction](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h TransactionHandler) UpdateStatus(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cmd := transactionsapp.UpdateStatusCommand{TransactionID: c.Param("id"), RequesterID: user.ID, Status: req.Status}
	result, err := commands.Dispatch[transactionsapp.UpdateStatusCommand, *dto.Transaction](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h TransactionHandler) Cancel(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := transactionsapp.CancelTransactionCommand{TransactionID: c.Param("id"), RequesterID: user.ID}
	result, err := commands.Dispatch[transactionsapp.CancelTransactionCommand, *dto.Transaction](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ TransactionHTTP = TransactionHandler{}
