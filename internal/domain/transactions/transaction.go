package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/pricing"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/events"
	"tradeboard/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("transactions: not found")
	ErrForbidden         = errors.New("transactions: requester is not a party to the transaction")
	ErrInvalidStatus     = errors.New("transactions: unknown status")
	ErrInvalidTransition = errors.New("transactions: status transition not allowed")
	ErrConcurrentUpdate  = errors.New("transactions: concurrent update")
)

type ID string

type Transaction struct {
	ID             ID
	AnnouncementID announcements.ID
	SellerID       string
	BuyerID        string
	Kind           announcements.Kind
	Period         *daterange.Range
	TotalPrice     money.Money
	Deposit        *money.Money
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Transaction, error)
	Save(ctx context.Context, transaction *Transaction) error
	// ListByParty returns transactions where the customer is buyer or seller, newest first.
	ListByParty(ctx context.Context, customerID string) ([]*Transaction, error)
}

type CreateParams struct {
	ID      ID
	Terms   announcements.Terms
	BuyerID string
	Period  *daterange.Range
	Now     time.Time
}

// New prices the transaction from terms and sets its initial status. The
// period is kept only for rentals.
func New(params CreateParams) (*Transaction, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("transactions: id is required")
	}
	buyer := strings.TrimSpace(params.BuyerID)
	if buyer == "" {
		return nil, errors.New("transactions: buyer is required")
	}
	terms := params.Terms
	quote, err := pricing.Quote(terms, params.Period)
	if err != nil {
		return nil, err
	}

	status := StatusConfirmed
	if terms.ManualConfirmation {
		status = StatusPendingConfirmation
	}
	now := params.Now.UTC()
	t := &Transaction{
		ID:             params.ID,
		AnnouncementID: terms.ID,
		SellerID:       terms.OwnerID,
		BuyerID:        buyer,
		Kind:           terms.Kind,
		TotalPrice:     quote.Total,
		Deposit:        quote.Deposit,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if terms.IsRental() {
		period := *params.Period
		t.Period = &period
	}
	t.Record(Created{
		TransactionID:  t.ID,
		AnnouncementID: t.AnnouncementID,
		SellerID:       t.SellerID,
		BuyerID:        t.BuyerID,
		Kind:           t.Kind,
		Period:         t.Period,
		TotalPrice:     t.TotalPrice,
		Status:         t.Status,
		At:             now,
	})
	return t, nil
}

func (t *Transaction) IsParty(customerID string) bool {
	return customerID != "" && (customerID == t.BuyerID || customerID == t.SellerID)
}

func (t *Transaction) Authorize(customerID string) error {
	if !t.IsParty(customerID) {
		return ErrForbidden
	}
	return nil
}

func (t *Transaction) IsRental() bool {
	return t.Kind == announcements.KindRental
}

// UpdateStatus moves the transaction to next if the requester is a party and
// the policy accepts it. Setting the current status again is a no-op.
func (t *Transaction) UpdateStatus(requesterID string, next Status, policy Policy, now time.Time) (bool, error) {
	if err := t.Authorize(requesterID); err != nil {
		return false, err
	}
	if _, ok := knownStatuses[next]; !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if next == t.Status && next != StatusCancelled {
		return false, nil
	}
	if !policy.Allows(t.Status, next) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	previous := t.Status
	t.Status = next
	t.UpdatedAt = now.UTC()
	t.Record(StatusChanged{TransactionID: t.ID, From: previous, To: next, By: requesterID, At: t.UpdatedAt})
	return true, nil
}

// Cancel is allowed only before payment.
func (t *Transaction) Cancel(requesterID string, now time.Time) error {
	if err := t.Authorize(requesterID); err != nil {
		return err
	}
	if t.Status != StatusPendingConfirmation && t.Status != StatusConfirmed {
		return fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, t.Status)
	}
	previous := t.Status
	t.Status = StatusCancelled
	t.UpdatedAt = now.UTC()
	t.Record(CancelledEvent{TransactionID: t.ID, AnnouncementID: t.AnnouncementID, From: previous, By: requesterID, Period: t.Period, At: t.UpdatedAt})
	return nil
}

// Clone returns a deep copy without pending events.
func (t *Transaction) Clone() *Transaction {
	out := &Transaction{
		ID:             t.ID,
		AnnouncementID: t.AnnouncementID,
		SellerID:       t.SellerID,
		BuyerID:        t.BuyerID,
		Kind:           t.Kind,
		TotalPrice:     t.TotalPrice,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Version:        t.Version,
	}
	if t.Period != nil {
		period := *t.Period
		out.Period = &period
	}
	if t.Deposit != nil {
		deposit := *t.Deposit
		out.Deposit = &deposit
	}
	return out
}
