package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeboard/internal/app/commands"
	"tradeboard/internal/app/dto"
	announcementsapp "tradeboard/internal/app/handlers/announcements"
	"tradeboard/internal/app/queries"
)

type AnnouncementHandler struct {
	Commands        commands.Bus
	Queries         queries.Bus
	DefaultCurrency string
}

type createAnnouncementRequest struct {
	Kind               string        `json:"kind" binding:"required"`
	Title              string        `json:"title" binding:"required"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	DailyPrice         *moneyRequest `json:"daily_price"`
	Deposit            *moneyRequest `json:"deposit"`
	SalePrice          *moneyRequest `json:"sale_price"`
	ManualConfirmation bool          `json:"manual_confirmation"`
	Media              []string      `json:"media"`
}

type updateAnnouncementRequest struct {
	Kind               *string       `json:"kind"`
	Title              *string       `json:"title"`
	Description        *string       `json:"description"`
	Category           *string       `json:"category"`
	DailyPrice         *moneyRequest `json:"daily_price"`
	Deposit            *moneyRequest `json:"deposit"`
	SalePrice          *moneyRequest `json:"sale_price"`
	ManualConfirmation *bool         `json:"manual_confirmation"`
	Media              []string      `json:"media"`
}

func (h AnnouncementHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cmd := announcementsapp.CreateAnnouncementCommand{
		AnnouncementID:     uuid.NewString(),
		OwnerID:            user.ID,
		Kind:               req.Kind,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		ManualConfirmation: req.ManualConfirmation,
		Media:              req.Media,
	}
	var err error
	if cmd.DailyPrice, err = req.DailyPrice.toMoney(h.DefaultCurrency); err != nil {
		writeBindError(c, err)
		return
	}
	if cmd.Deposit, err = req.Deposit.toMoney(h.DefaultCurrency); err != nil {
		writeBindError(c, err)
		return
	}
	if cmd.SalePrice, err = req.SalePrice.toMoney(h.DefaultCurrency); err != nil {
		writeBindError(c, err)
		return
	}
	result, err := commands.Dispatch[announcementsapp.CreateAnnouncementCommand, *dto.Announcement](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AnnouncementHandler) Get(c *gin.Context) {
	query := announcementsapp.GetAnnouncementQuery{AnnouncementID: c.Param("id")}
	result, err := queries.Ask[announcementsapp.GetAnnouncementQuery, dto.Announcement](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AnnouncementHandler) Update(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req updateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cmd := announcementsapp.UpdateAnnouncementCommand{
		AnnouncementID:     c.Param("id"),
		RequesterID:        user.ID,
		Kind:               req.Kind,
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		ManualConfirmation: req.ManualConfirmation,
		Media:              req.Media,
	}
	var err error
	if cmd.DailyPrice, err = req.DailyPrice.toMoney(h.DefaultCurrency); err != nil {
		writeBindError(c, err)
		return
	}
	if cmd.Deposit, err = req.Deposit.toMoney(h.DefaultCurrency); err != nil {
		writeBindError(c, err)
		return
	}
	if cmd.SalePrice, err = req.SalePrice.toMoney(h.DefaultCurrency); err != nil {
		writeBindError(c, err)
		return
	}
	result, err := commands.Dispatch[announcementsapp.UpdateAnnouncementCommand, *dto.Announcement](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AnnouncementHandler) Delete(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cmd := announcementsapp.DeleteAnnouncementCommand{AnnouncementID: c.Param("id"), RequesterID: user.ID}
	result, err := commands.Dispatch[announcementsapp.DeleteAnnouncementCommand, *announcementsapp.DeleteAnnouncementResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AnnouncementHTTP = AnnouncementHandler{}
