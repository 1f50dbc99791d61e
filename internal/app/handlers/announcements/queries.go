package announcements

import (
	"context"

	"tradeboard/internal/app/dto"
	"tradeboard/internal/app/handlers/support"
	"tradeboard/internal/app/queries"
	"tradeboard/internal/app/uow"
	domainannouncements "tradeboard/internal/domain/announcements"
)

const getAnnouncementKey = "announcements.get"

type GetAnnouncementQuery struct {
	AnnouncementID string `validate:"required"`
}

func (q GetAnnouncementQuery) Key() string { return getAnnouncementKey }

type GetAnnouncementHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetAnnouncementHandler) Handle(ctx context.Context, q GetAnnouncementQuery) (dto.Announcement, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Announcement{}, err
	}
	defer cleanup()

	announcement, err := unit.Announcements().ByID(ctx, domainannouncements.ID(q.AnnouncementID))
	if err != nil {
		return dto.Announcement{}, err
	}
	return dto.MapAnnouncement(announcement), nil
}

func (h *GetAnnouncementHandler) Register(queryBus *queries.InMemoryBus) {
	queries.RegisterHandler[GetAnnouncementQuery, dto.Announcement](queryBus, getAnnouncementKey, h)
}
