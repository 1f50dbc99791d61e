package ginserver

import (
	"strings"

	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/money"
)

type moneyRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// toMoney fills an omitted currency with fallback.
func (m *moneyRequest) toMoney(fallback string) (*money.Money, error) {
	if m == nil {
		return nil, nil
	}
	currency := m.Currency
	if strings.TrimSpace(currency) == "" {
		currency = fallback
	}
	v, err := money.New(m.Amount, currency)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type rangeRequest struct {
	StartDate daterange.Date `json:"start_date"`
	EndDate   daterange.Date `json:"end_date"`
}

func (r rangeRequest) toRange() (daterange.Range, error) {
	return daterange.New(r.StartDate, r.EndDate)
}
