package policies

import (
	"context"

	"tradeboard/internal/domain/shared/money"
)

// PaymentRequest is sent when a transaction becomes CONFIRMED. Execution
// happens outside this service.
type PaymentRequest struct {
	TransactionID string
	BuyerID       string
	SellerID      string
	Amount        money.Money
	Deposit       *money.Money
}

type PaymentsPort interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) error
}
