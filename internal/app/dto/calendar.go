package dto

import (
	"tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/shared/daterange"
)

type Calendar struct {
	AnnouncementID string   `json:"announcement_id"`
	AvailableDates []string `json:"available_dates"`
	RentedDates    []string `json:"rented_dates"`
	BookableDates  []string `json:"bookable_dates"`
}

func MapCalendar(cal *availability.Calendar) Calendar {
	if cal == nil {
		return Calendar{}
	}
	bookable := cal.Bookable()
	return Calendar{
		AnnouncementID: string(cal.AnnouncementID),
		AvailableDates: cal.Available.Strings(),
		RentedDates:    cal.Rented.Strings(),
		BookableDates:  formatDates(bookable),
	}
}

type Reservation struct {
	AnnouncementID string   `json:"announcement_id"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Dates          []string `json:"dates"`
}

func formatDates(days []daterange.Date) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
