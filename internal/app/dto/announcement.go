package dto

import (
	"time"

	"tradeboard/internal/domain/announcements"
)

type Announcement struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"owner_id"`
	Kind               string    `json:"kind"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Category           string    `json:"category,omitempty"`
	DailyPrice         *MoneyDTO `json:"daily_price,omitempty"`
	Deposit            *MoneyDTO `json:"deposit,omitempty"`
	SalePrice          *MoneyDTO `json:"sale_price,omitempty"`
	ManualConfirmation bool      `json:"manual_confirmation"`
	Media              []string  `json:"media"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func MapAnnouncement(a *announcements.Announcement) Announcement {
	media := a.Media
	if media == nil {
		media = []string{}
	}
	return Announcement{
		ID:                 string(a.ID),
		OwnerID:            a.OwnerID,
		Kind:               string(a.Kind),
		Title:              a.Title,
		Description:        a.Description,
		Category:           a.Category,
		DailyPrice:         mapMoneyPtr(a.DailyPrice),
		Deposit:            mapMoneyPtr(a.Deposit),
		SalePrice:          mapMoneyPtr(a.SalePrice),
		ManualConfirmation: a.ManualConfirmation,
		Media:              append([]string{}, media...),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
