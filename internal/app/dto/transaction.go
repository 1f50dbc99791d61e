package dto

import (
	"time"

	"tradeboard/internal/domain/transactions"
)

type Transaction struct {
	ID             string    `json:"id"`
	AnnouncementID string    `json:"announcement_id"`
	SellerID       string    `json:"seller_id"`
	BuyerID        string    `json:"buyer_id"`
	Kind           string    `json:"kind"`
	StartDate      string    `json:"start_date,omitempty"`
	EndDate        string    `json:"end_date,omitempty"`
	Days           int       `json:"days,omitempty"`
	TotalPrice     MoneyDTO  `json:"total_price"`
	Deposit        *MoneyDTO `json:"deposit,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TransactionCollection struct {
	Items []Transaction `json:"items"`
}

func MapTransaction(t *transactions.Transaction) Transaction {
	out := Transaction{
		ID:             string(t.ID),
		AnnouncementID: string(t.AnnouncementID),
		SellerID:       t.SellerID,
		BuyerID:        t.BuyerID,
		Kind:           string(t.Kind),
		TotalPrice:     MapMoney(t.TotalPrice),
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.IsRental() && t.Period != nil {
		out.StartDate = t.Period.Start.String()
		out.EndDate = t.Period.End.String()
		out.Days = t.Period.Len()
		out.Deposit = mapMoneyPtr(t.Deposit)
	}
	return out
}

func MapTransactions(items []*transactions.Transaction) TransactionCollection {
	out := TransactionCollection{Items: make([]Transaction, 0, len(items))}
	for _, t := range items {
		out.Items = append(out.Items, MapTransaction(t))
	}
	return out
}
