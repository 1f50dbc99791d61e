package availability

import (
	"context"
	"log/slog"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/handlers/support"
	"tradeboard/internal/app/queries"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/daterange"
)

const (
	openDatesKey    = "availability.open"
	releaseRangeKey = "availability.release"
	getCalendarKey  = "availability.calendar"
)

type OpenDatesCommand struct {
	AnnouncementID string           `validate:"required"`
	RequesterID    string           `validate:"required"`
	Dates          []daterange.Date `validate:"required,min=1"`
}

func (c OpenDatesCommand) Key() string { return openDatesKey }

func (c OpenDatesCommand) Requester() string { return c.RequesterID }

type ReleaseRangeCommand struct {
	AnnouncementID string `validate:"required"`
	RequesterID    string `validate:"required"`
	Range          daterange.Range
}

func (c ReleaseRangeCommand) Key() string { return releaseRangeKey }

func (c ReleaseRangeCommand) Requester() string { return c.RequesterID }

// CalendarHandler serves the owner-facing calendar commands.
type CalendarHandler struct {
	UoWFactory uow.UoWFactory
	Reserver   *reservation.Reserver
	Logger     *slog.Logger
}

func (h *CalendarHandler) Open(ctx context.Context, cmd OpenDatesCommand) (*dto.Calendar, error) {
	return h.mutate(ctx, cmd.AnnouncementID, cmd.RequesterID, func(ctx context.Context, id domainannouncements.ID) (*domainavailability.Calendar, error) {
		return h.Reserver.Open(ctx, id, cmd.Dates)
	})
}

func (h *CalendarHandler) Release(ctx context.Context, cmd ReleaseRangeCommand) (*dto.Calendar, error) {
	return h.mutate(ctx, cmd.AnnouncementID, cmd.RequesterID, func(ctx context.Context, id domainannouncements.ID) (*domainavailability.Calendar, error) {
		return h.Reserver.Release(ctx, id, cmd.Range)
	})
}

func (h *CalendarHandler) mutate(ctx context.Context, announcementID, requesterID string, fn func(context.Context, domainannouncements.ID) (*domainavailability.Calendar, error)) (*dto.Calendar, error) {
	var result *dto.Calendar
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		announcement, err := unit.Announcements().ByID(ctx, domainannouncements.ID(announcementID))
		if err != nil {
			return err
		}
		if !announcement.OwnedBy(requesterID) {
			return domainannouncements.ErrForbidden
		}
		cal, err := fn(ctx, announcement.ID)
		if err != nil {
			return err
		}
		support.Logger(h.Logger).InfoContext(ctx, "calendar updated",
			slog.String("announcement_id", announcementID),
			slog.Int("available", len(cal.Available)),
			slog.Int("rented", len(cal.Rented)))
		out := dto.MapCalendar(cal)
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type GetCalendarQuery struct {
	AnnouncementID string `validate:"required"`
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	defer cleanup()

	calendar, err := unit.Availability().Calendar(ctx, domainannouncements.ID(q.AnnouncementID))
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(calendar), nil
}

func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, calendar *CalendarHandler, get *GetCalendarHandler) {
	commands.RegisterHandler[OpenDatesCommand, *dto.Calendar](cmdBus, openDatesKey, commands.HandlerFunc[OpenDatesCommand, *dto.Calendar](calendar.Open))
	commands.RegisterHandler[ReleaseRangeCommand, *dto.Calendar](cmdBus, releaseRangeKey, commands.HandlerFunc[ReleaseRangeCommand, *dto.Calendar](calendar.Release))
	queries.RegisterHandler[GetCalendarQuery, dto.Calendar](queryBus, getCalendarKey, get)
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
