package dto

import "tradeboard/internal/domain/shared/money"

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(m money.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency}
}

func mapMoneyPtr(m *money.Money) *MoneyDTO {
	if m == nil {
		return nil
	}
	out := MapMoney(*m)
	return &out
}
