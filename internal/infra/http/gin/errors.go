package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	announcementsapp "tradeboard/internal/app/handlers/announcements"
	"tradeboard/internal/app/middleware"
	"tradeboard/internal/app/reservation"
	"tradeboard/internal/app/uow"
	"tradeboard/internal/domain/announcements"
	"tradeboard/internal/domain/availability"
	"tradeboard/internal/domain/pricing"
	"tradeboard/internal/domain/shared/daterange"
	"tradeboard/internal/domain/transactions"
	"tradeboard/internal/infra/validation"
)

const (
	codeNotFound          = "not_found"
	codeInvalidRange      = "invalid_range"
	codeDatesUnavailable  = "dates_unavailable"
	codeForbidden         = "forbidden"
	codeBusy              = "busy"
	codeInvalidStatus     = "invalid_status"
	codeInvalidTransition = "invalid_transition"
	codeInvalidTerms      = "invalid_terms"
	codeInvalidRequest    = "invalid_request"
	codeUnauthenticated   = "unauthenticated"
	codeCascadeIncomplete = "cascade_incomplete"
	codeInternal          = "internal"
)

type errorMapping struct {
	targets []error
	status  int
	code    string
}

// Order matters: more specific sentinels come before the ones they wrap.
var errorMappings = []errorMapping{
	{[]error{middleware.ErrUnauthenticated}, http.StatusUnauthorized, codeUnauthenticated},
	{[]error{reservation.ErrBusy, availability.ErrConcurrentUpdate, transactions.ErrConcurrentUpdate, uow.ErrCommitConflict}, http.StatusServiceUnavailable, codeBusy},
	{[]error{announcements.ErrNotFound, availability.ErrCalendarNotFound, transactions.ErrNotFound}, http.StatusNotFound, codeNotFound},
	{[]error{announcements.ErrForbidden, transactions.ErrForbidden}, http.StatusForbidden, codeForbidden},
	{[]error{availability.ErrConflict}, http.StatusConflict, codeDatesUnavailable},
	{[]error{transactions.ErrInvalidTransition}, http.StatusConflict, codeInvalidTransition},
	{[]error{transactions.ErrInvalidStatus}, http.StatusBadRequest, codeInvalidStatus},
	{[]error{daterange.ErrInvalidRange}, http.StatusBadRequest, codeInvalidRange},
	{[]error{announcements.ErrInvalidTerms, announcements.ErrKindImmutable, announcements.ErrTitleRequired, pricing.ErrMissingPrice}, http.StatusBadRequest, codeInvalidTerms},
	{[]error{validation.ErrInvalid}, http.StatusBadRequest, codeInvalidRequest},
	{[]error{announcementsapp.ErrCascadeIncomplete}, http.StatusInternalServerError, codeCascadeIncomplete},
}

func classify(err error) (int, string) {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m.status, m.code
			}
		}
	}
	return http.StatusInternalServerError, codeInternal
}

func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	msg := err.Error()
	if code == codeInternal {
		_ = c.Error(err)
		msg = "internal error"
	}
	if code == codeBusy {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, gin.H{"error": msg, "code": code})
}

// writeBindError reports malformed request bodies. Bad dates keep their range code.
func writeBindError(c *gin.Context, err error) {
	if errors.Is(err, daterange.ErrInvalidRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeInvalidRange})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeInvalidRequest})
}
