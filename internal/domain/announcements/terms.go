package announcements

import (
	"errors"
	"fmt"
	"strings"

	"tradeboard/internal/domain/shared/money"
)

var (
	ErrInvalidTerms = errors.New("announcements: invalid terms")
	ErrInvalidKind  = fmt.Errorf("%w: kind must be SALE or RENTAL", ErrInvalidTerms)
)

type ID string

type Kind string

const (
	KindSale   Kind = "SALE"
	KindRental Kind = "RENTAL"
)

// ParseKind accepts the canonical upper-case form and the lower-case legacy form.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(value))) {
	case KindSale:
		return KindSale, nil
	case KindRental:
		return KindRental, nil
	default:
		return "", ErrInvalidKind
	}
}

// Terms is the read-only view of what a transaction needs from an announcement.
type Terms struct {
	ID                 ID
	OwnerID            string
	Kind               Kind
	DailyPrice         *money.Money
	Deposit            *money.Money
	SalePrice          *money.Money
	ManualConfirmation bool
}

// Validate enforces that exactly the price fields matching Kind are present.
func (t Terms) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidTerms)
	}
	switch t.Kind {
	case KindRental:
		if t.DailyPrice == nil || t.Deposit == nil {
			return fmt.Errorf("%w: rental requires daily price and deposit", ErrInvalidTerms)
		}
		if t.SalePrice != nil {
			return fmt.Errorf("%w: rental must not carry a sale price", ErrInvalidTerms)
		}
		if err := validateAmount("daily price", *t.DailyPrice); err != nil {
			return err
		}
		if err := validateAmount("deposit", *t.Deposit); err != nil {
			return err
		}
		if !t.DailyPrice.SameCurrency(*t.Deposit) {
			return fmt.Errorf("%w: daily price and deposit currencies differ", ErrInvalidTerms)
		}
	case KindSale:
		if t.SalePrice == nil {
			return fmt.Errorf("%w: sale requires a sale price", ErrInvalidTerms)
		}
		if t.DailyPrice != nil || t.Deposit != nil {
			return fmt.Errorf("%w: sale must not carry rental prices", ErrInvalidTerms)
		}
		if err := validateAmount("sale price", *t.SalePrice); err != nil {
			return err
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

func (t Terms) IsRental() bool {
	return t.Kind == KindRental
}

// Clone detaches the optional prices so callers cannot alias the source.
func (t Terms) Clone() Terms {
	out := t
	out.DailyPrice = cloneMoney(t.DailyPrice)
	out.Deposit = cloneMoney(t.Deposit)
	out.SalePrice = cloneMoney(t.SalePrice)
	return out
}

func validateAmount(name string, m money.Money) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTerms, name, err)
	}
	return nil
}

func cloneMoney(m *money.Money) *money.Money {
	if m == nil {
		return nil
	}
	v := *m
	return &v
}
