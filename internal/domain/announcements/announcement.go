package announcements

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradeboard/internal/domain/shared/events"
	"tradeboard/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("announcements: not found")
	ErrForbidden     = errors.New("announcements: requester does not own the announcement")
	ErrTitleRequired = errors.New("announcements: title is required")
	ErrKindImmutable = errors.New("announcements: kind cannot change after creation")
)

type Announcement struct {
	ID                 ID
	OwnerID            string
	Kind               Kind
	Title              string
	Description        string
	Category           string
	DailyPrice         *money.Money
	Deposit            *money.Money
	SalePrice          *money.Money
	ManualConfirmation bool
	Media              []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Announcement, error)
	Save(ctx context.Context, announcement *Announcement) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID                 ID
	OwnerID            string
	Kind               Kind
	Title              string
	Description        string
	Category           string
	DailyPrice         *money.Money
	Deposit            *money.Money
	SalePrice          *money.Money
	ManualConfirmation bool
	Media              []string
	Now                time.Time
}

func New(params CreateParams) (*Announcement, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("announcements: id is required")
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	now := params.Now.UTC()
	a := &Announcement{
		ID:                 params.ID,
		OwnerID:            strings.TrimSpace(params.OwnerID),
		Kind:               params.Kind,
		Title:              title,
		Description:        strings.TrimSpace(params.Description),
		Category:           strings.TrimSpace(params.Category),
		DailyPrice:         cloneMoney(params.DailyPrice),
		Deposit:            cloneMoney(params.Deposit),
		SalePrice:          cloneMoney(params.SalePrice),
		ManualConfirmation: params.ManualConfirmation,
		Media:              append([]string(nil), params.Media...),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := a.Terms().Validate(); err != nil {
		return nil, err
	}
	a.Record(Created{AnnouncementID: a.ID, OwnerID: a.OwnerID, Kind: a.Kind, At: now})
	return a, nil
}

// Terms returns a detached snapshot of the transactable terms.
func (a *Announcement) Terms() Terms {
	return Terms{
		ID:                 a.ID,
		OwnerID:            a.OwnerID,
		Kind:               a.Kind,
		DailyPrice:         a.DailyPrice,
		Deposit:            a.Deposit,
		SalePrice:          a.SalePrice,
		ManualConfirmation: a.ManualConfirmation,
	}.Clone()
}

func (a *Announcement) OwnedBy(customerID string) bool {
	return customerID != "" && a.OwnerID == customerID
}

func (a *Announcement) IsRental() bool {
	return a.Kind == KindRental
}

// UpdateParams carries optional edits; nil fields are left untouched.
type UpdateParams struct {
	Kind               *Kind
	Title              *string
	Description        *string
	Category           *string
	DailyPrice         *money.Money
	Deposit            *money.Money
	SalePrice          *money.Money
	ManualConfirmation *bool
	Media              []string
}

// Update applies edits atomically: on error the announcement is unchanged.
func (a *Announcement) Update(params UpdateParams, now time.Time) error {
	if params.Kind != nil && *params.Kind != a.Kind {
		return ErrKindImmutable
	}
	next := *a
	if params.Title != nil {
		next.Title = strings.TrimSpace(*params.Title)
		if next.Title == "" {
			return ErrTitleRequired
		}
	}
	if params.Description != nil {
		next.Description = strings.TrimSpace(*params.Description)
	}
	if params.Category != nil {
		next.Category = strings.TrimSpace(*params.Category)
	}
	if params.DailyPrice != nil {
		next.DailyPrice = cloneMoney(params.DailyPrice)
	}
	if params.Deposit != nil {
		next.Deposit = cloneMoney(params.Deposit)
	}
	if params.SalePrice != nil {
		next.SalePrice = cloneMoney(params.SalePrice)
	}
	if params.ManualConfirmation != nil {
		next.ManualConfirmation = *params.ManualConfirmation
	}
	if params.Media != nil {
		next.Media = append([]string(nil), params.Media...)
	}
	if err := next.Terms().Validate(); err != nil {
		return err
	}

	a.Title = next.Title
	a.Description = next.Description
	a.Category = next.Category
	a.DailyPrice = next.DailyPrice
	a.Deposit = next.Deposit
	a.SalePrice = next.SalePrice
	a.ManualConfirmation = next.ManualConfirmation
	a.Media = next.Media
	a.UpdatedAt = now.UTC()
	a.Record(Updated{AnnouncementID: a.ID, At: a.UpdatedAt})
	return nil
}

// MarkDeleted records the deletion event; removal itself is done by the repository.
func (a *Announcement) MarkDeleted(now time.Time) {
	a.Record(Deleted{AnnouncementID: a.ID, OwnerID: a.OwnerID, Kind: a.Kind, At: now.UTC()})
}

// Clone returns a deep copy without pending events.
func (a *Announcement) Clone() *Announcement {
	out := &Announcement{
		ID:                 a.ID,
		OwnerID:            a.OwnerID,
		Kind:               a.Kind,
		Title:              a.Title,
		Description:        a.Description,
		Category:           a.Category,
		DailyPrice:         cloneMoney(a.DailyPrice),
		Deposit:            cloneMoney(a.Deposit),
		SalePrice:          cloneMoney(a.SalePrice),
		ManualConfirmation: a.ManualConfirmation,
		Media:              append([]string(nil), a.Media...),
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
		Version:            a.Version,
	}
	return out
}
