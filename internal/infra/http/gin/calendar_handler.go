package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	availabilityapp "tradeboard/internal/app/handlers/availability"
	"tradeboard/internal/app/queries"
	"tradeboard/internal/domain/shared/daterange"
)

type CalendarHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type openDatesRequest struct {
	Dates []daterange.Date `json:"dates" binding:"required"`
}

func (h CalendarHandler) Get(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{AnnouncementID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Open(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req openDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cmd := availabilityapp.OpenDatesCommand{AnnouncementID: c.Param("id"), RequesterID: user.ID, Dates: req.Dates}
	result, err := commands.Dispatch[availabilityapp.OpenDatesCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Release(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	r, err := req.toRange()
	if err != nil {
		writeError(c, err)
		return
	}
	cmd := availabilityapp.ReleaseRangeCommand{AnnouncementID: c.Param("id"), RequesterID: user.ID, Range: r}
	result, err := commands.Dispatch[availabilityapp.ReleaseRangeCommand, *dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CalendarHTTP = CalendarHandler{}
