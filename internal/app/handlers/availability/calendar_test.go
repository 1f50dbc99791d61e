package availability_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityapp "tradeboard/internal/app/handlers/availability"
	"tradeboard/internal/app/reservation"
	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/shared/money"
	"tradeboard/internal/infra/storage/memory"
)

var today = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

type fixture struct {
	calendar *availabilityapp.CalendarHandler
	get      *availabilityapp.GetCalendarHandler
	reserver *reservation.Reserver
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewFactory()
	daily, deposit := money.Must(500, "EUR"), money.Must(2000, "EUR")
	a, err := domainannouncements.New(domainannouncements.CreateParams{
		ID:         "ann-1",
		OwnerID:    "owner",
		Kind:       domainannouncements.KindRental,
		Title:      "Kayak",
		DailyPrice: &daily,
		Deposit:    &deposit,
		Now:        today,
	})
	require.NoError(t, err)
	require.NoError(t, factory.AnnouncementsRepo.Save(ctx, a))
	require.NoError(t, factory.CalendarsRepo.Save(ctx, domainavailability.NewCalendar("ann-1")))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reserver := &reservation.Reserver{
		Calendars: factory.CalendarsRepo,
		Locks:     reservation.NewLocks(),
		Outbox:    memory.NewOutbox(logger),
		Logger:    logger,
		Now:       func() time.Time { return today },
	}
	return fixture{
		calendar: &availabilityapp.CalendarHandler{UoWFactory: factory, Reserver: reserver, Logger: logger},
		get:      &availabilityapp.GetCalendarHandler{UoWFactory: factory},
		reserver: reserver,
	}
}

func days(values ...string) []daterange.Date {
	out := make([]daterange.Date, len(values))
	for i, v := range values {
		out[i] = daterange.MustParse(v)
	}
	return out
}

func TestOpenAndRelease(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cal, err := f.calendar.Open(ctx, availabilityapp.OpenDatesCommand{
		AnnouncementID: "ann-1",
		RequesterID:    "owner",
		Dates:          days("2024-05-22", "2024-05-21", "2024-05-23"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-21", "2024-05-22", "2024-05-23"}, cal.AvailableDates)

	r, err := daterange.New(daterange.MustParse("2024-05-21"), daterange.MustParse("2024-05-22"))
	require.NoError(t, err)
	_, err = f.reserver.Reserve(ctx, "ann-1", r)
	require.NoError(t, err)

	got, err := f.get.Handle(ctx, availabilityapp.GetCalendarQuery{AnnouncementID: "ann-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-21", "2024-05-22"}, got.RentedDates)
	assert.Equal(t, []string{"2024-05-23"}, got.BookableDates)

	cal, err = f.calendar.Release(ctx, availabilityapp.ReleaseRangeCommand{AnnouncementID: "ann-1", RequesterID: "owner", Range: r})
	require.NoError(t, err)
	assert.Empty(t, cal.RentedDates)
	assert.Len(t, cal.BookableDates, 3)
}

func TestCalendarRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  availabilityapp.OpenDatesCommand
		want error
	}{
		{"stranger", availabilityapp.OpenDatesCommand{AnnouncementID: "ann-1", RequesterID: "someone", Dates: days("2024-05-21")}, domainannouncements.ErrForbidden},
		{"past date", availabilityapp.OpenDatesCommand{AnnouncementID: "ann-1", RequesterID: "owner", Dates: days("2024-05-19", "2024-05-21")}, daterange.ErrInvalidRange},
		{"unknown announcement", availabilityapp.OpenDatesCommand{AnnouncementID: "nope", RequesterID: "owner", Dates: days("2024-05-21")}, domainannouncements.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.calendar.Open(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := f.get.Handle(ctx, availabilityapp.GetCalendarQuery{AnnouncementID: "ann-1"})
	require.NoError(t, err)
	assert.Empty(t, got.AvailableDates, "rejected opens leave the calendar untouched")

	_, err = f.get.Handle(ctx, availabilityapp.GetCalendarQuery{AnnouncementID: "nope"})
	assert.ErrorIs(t, err, domainavailability.ErrCalendarNotFound)
}
