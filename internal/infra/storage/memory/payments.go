package memory

import (
	"context"
	"log/slog"
	"sync"

	"tradeboard/internal/app/policies"
)

// Payments records payment initiations instead of executing them.
type Payments struct {
	mu       sync.Mutex
	requests []policies.PaymentRequest
	logger   *slog.Logger
}

func NewPayments(logger *slog.Logger) *Payments {
	if logger == nil {
		logger = slog.Default()
	}
	return &Payments{logger: logger}
}

func (p *Payments) InitiatePayment(ctx context.Context, req policies.PaymentRequest) error {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	p.logger.InfoContext(ctx, "payment initiated",
		slog.String("transaction_id", req.TransactionID),
		slog.String("amount", req.Amount.String()))
	return nil
}

func (p *Payments) Requests() []policies.PaymentRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]policies.PaymentRequest(nil), p.requests...)
}

var _ policies.PaymentsPort = (*Payments)(nil)
