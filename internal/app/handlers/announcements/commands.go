package announcements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/handlers/support"
	"tradeboard/internal/app/outbox"
	"tradeboard/internal/app/policies"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/money"
)

const (
	createAnnouncementKey = "announcements.create"
	updateAnnouncementKey = "announcements.update"
	deleteAnnouncementKey = "announcements.delete"
)

// ErrCascadeIncomplete means the calendar is gone but the announcement is
// still stored. Running the delete again finishes it.
var ErrCascadeIncomplete = errors.New("announcements: delete incomplete, retry")

type CreateAnnouncementCommand struct {
	AnnouncementID     string `validate:"required"`
	OwnerID            string `validate:"required"`
	Kind               string `validate:"required"`
	Title              string `validate:"required,max=200"`
	Description        string `validate:"max=5000"`
	Category           string `validate:"max=100"`
	DailyPrice         *money.Money
	Deposit            *money.Money
	SalePrice          *money.Money
	ManualConfirmation bool
	Media              []string `validate:"max=20"`
}

func (c CreateAnnouncementCommand) Key() string { return createAnnouncementKey }

func (c CreateAnnouncementCommand) Requester() string { return c.OwnerID }

type UpdateAnnouncementCommand struct {
	AnnouncementID     string  `validate:"required"`
	RequesterID        string  `validate:"required"`
	Kind               *string `validate:"omitempty"`
	Title              *string `validate:"omitempty,max=200"`
	Description        *string `validate:"omitempty,max=5000"`
	Category           *string `validate:"omitempty,max=100"`
	DailyPrice         *money.Money
	Deposit            *money.Money
	SalePrice          *money.Money
	ManualConfirmation *bool
	Media              []string `validate:"omitempty,max=20"`
}

func (c UpdateAnnouncementCommand) Key() string { return updateAnnouncementKey }

func (c UpdateAnnouncementCommand) Requester() string { return c.RequesterID }

type DeleteAnnouncementCommand struct {
	AnnouncementID string `validate:"required"`
	RequesterID    string `validate:"required"`
}

func (c DeleteAnnouncementCommand) Key() string { return deleteAnnouncementKey }

func (c DeleteAnnouncementCommand) Requester() string { return c.RequesterID }

type DeleteAnnouncementResult struct {
	AnnouncementID string `json:"announcement_id"`
	MediaRemoved   bool   `json:"media_removed"`
}

// Handler owns the catalog side of the calendar lifecycle: a rental gets its
// calendar on create and loses it on delete.
type Handler struct {
	UoWFactory uow.UoWFactory
	Reserver   *reservation.Reserver
	Media      policies.MediaStore
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *Handler) Create(ctx context.Context, cmd CreateAnnouncementCommand) (*dto.Announcement, error) {
	kind, err := domainannouncements.ParseKind(cmd.Kind)
	if err != nil {
		return nil, err
	}
	var result *dto.Announcement
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		announcement, err := domainannouncements.New(domainannouncements.CreateParams{
			ID:                 domainannouncements.ID(cmd.AnnouncementID),
			OwnerID:            cmd.OwnerID,
			Kind:               kind,
			Title:              cmd.Title,
			Description:        cmd.Description,
			Category:           cmd.Category,
			DailyPrice:         cmd.DailyPrice,
			Deposit:            cmd.Deposit,
			SalePrice:          cmd.SalePrice,
			ManualConfirmation: cmd.ManualConfirmation,
			Media:              cmd.Media,
			Now:                support.Now(h.Now),
		})
		if err != nil {
			return err
		}
		if err := unit.Announcements().Save(ctx, announcement); err != nil {
			return err
		}
		if announcement.IsRental() {
			if err := unit.Availability().Save(ctx, domainavailability.NewCalendar(announcement.ID)); err != nil {
				return err
			}
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, announcement.Drain()); err != nil {
			return err
		}
		support.Logger(h.Logger).InfoContext(ctx, "announcement created",
			slog.String("announcement_id", string(announcement.ID)),
			slog.String("kind", string(announcement.Kind)))
		out := dto.MapAnnouncement(announcement)
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *Handler) Update(ctx context.Context, cmd UpdateAnnouncementCommand) (*dto.Announcement, error) {
	params := domainannouncements.UpdateParams{
		Title:              cmd.Title,
		Description:        cmd.Description,
		Category:           cmd.Category,
		DailyPrice:         cmd.DailyPrice,
		Deposit:            cmd.Deposit,
		SalePrice:          cmd.SalePrice,
		ManualConfirmation: cmd.ManualConfirmation,
		Media:              cmd.Media,
	}
	if cmd.Kind != nil {
		kind, err := domainannouncements.ParseKind(*cmd.Kind)
		if err != nil {
			return nil, err
		}
		params.Kind = &kind
	}

	var result *dto.Announcement
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		announcement, err := unit.Announcements().ByID(ctx, domainannouncements.ID(cmd.AnnouncementID))
		if err != nil {
			return err
		}
		if !announcement.OwnedBy(cmd.RequesterID) {
			return domainannouncements.ErrForbidden
		}
		if err := announcement.Update(params, support.Now(h.Now)); err != nil {
			return err
		}
		if err := unit.Announcements().Save(ctx, announcement); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, announcement.Drain()); err != nil {
			return err
		}
		out := dto.MapAnnouncement(announcement)
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the calendar, then the announcement, then its media. Media
// removal is best effort.
func (h *Handler) Delete(ctx context.Context, cmd DeleteAnnouncementCommand) (*DeleteAnnouncementResult, error) {
	var media []string
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		announcement, err := unit.Announcements().ByID(ctx, domainannouncements.ID(cmd.AnnouncementID))
		if err != nil {
			return err
		}
		if !announcement.OwnedBy(cmd.RequesterID) {
			return domainannouncements.ErrForbidden
		}
		if announcement.IsRental() {
			if err := h.Reserver.Delete(ctx, announcement.ID); err != nil {
				return err
			}
		}
		if err := unit.Announcements().Delete(ctx, announcement.ID); err != nil {
			support.Logger(h.Logger).ErrorContext(ctx, "announcement delete after calendar removal",
				slog.String("announcement_id", string(announcement.ID)),
				slog.Any("err", err))
			return fmt.Errorf("%w: %v", ErrCascadeIncomplete, err)
		}
		announcement.MarkDeleted(support.Now(h.Now))
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, announcement.Drain()); err != nil {
			return err
		}
		media = announcement.Media
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &DeleteAnnouncementResult{AnnouncementID: cmd.AnnouncementID}
	result.MediaRemoved = h.removeMedia(ctx, cmd.AnnouncementID, media)
	return result, nil
}

func (h *Handler) removeMedia(ctx context.Context, announcementID string, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	if h.Media == nil {
		return false
	}
	if err := h.Media.DeleteObjects(ctx, keys); err != nil {
		support.Logger(h.Logger).WarnContext(ctx, "announcement media cleanup failed",
			slog.String("announcement_id", announcementID),
			slog.Int("objects", len(keys)),
			slog.Any("err", err))
		return false
	}
	return true
}

func (h *Handler) Register(cmdBus *commands.InMemoryBus) {
	commands.RegisterHandler[CreateAnnouncementCommand, *dto.Announcement](cmdBus, createAnnouncementKey, commands.HandlerFunc[CreateAnnouncementCommand, *dto.Announcement](h.Create))
	commands.RegisterHandler[UpdateAnnouncementCommand, *dto.Announcement](cmdBus, updateAnnouncementKey, commands.HandlerFunc[UpdateAnnouncementCommand, *dto.Announcement](h.Update))
	commands.RegisterHandler[DeleteAnnouncementCommand, *DeleteAnnouncementResult](cmdBus, deleteAnnouncementKey, commands.HandlerFunc[DeleteAnnouncementCommand, *DeleteAnnouncementResult](h.Delete))
}
