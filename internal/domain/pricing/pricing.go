package pricing

import (
	"errors"

	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/money"
)

var ErrMissingPrice = errors.New("pricing: terms lack the price for their kind")

// Breakdown is the price captured on a transaction at creation.
type Breakdown struct {
	Days       int
	DailyPrice *money.Money
	Total      money.Money
	Deposit    *money.Money
}

// Quote derives the total and deposit from terms. For rentals the range is
// counted inclusively; for sales it is ignored.
func Quote(terms announcements.Terms, period *daterange.Range) (Breakdown, error) {
	switch terms.Kind {
	case announcements.KindRental:
		if period == nil {
			return Breakdown{}, daterange.ErrInvalidRange
		}
		if err := period.Validate(); err != nil {
			return Breakdown{}, err
		}
		if terms.DailyPrice == nil || terms.Deposit == nil {
			return Breakdown{}, ErrMissingPrice
		}
		n := period.Len()
		daily := *terms.DailyPrice
		deposit := *terms.Deposit
		return Breakdown{
			Days:       n,
			DailyPrice: &daily,
			Total:      daily.Multiply(int64(n)),
			Deposit:    &deposit,
		}, nil
	case announcements.KindSale:
		if terms.SalePrice == nil {
			return Breakdown{}, ErrMissingPrice
		}
		return Breakdown{Total: *terms.SalePrice}, nil
	default:
		return Breakdown{}, announcements.ErrInvalidKind
	}
}
