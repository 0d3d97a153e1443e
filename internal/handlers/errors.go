package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"matka/internal/backend"
	"matka/internal/bidform"
	"matka/internal/logger"
	"matka/internal/submit"
)

var (
	errUnknownMarket  = errors.New("unknown market")
	errMarketClosed   = errors.New("market is closed for bidding")
	errGameTypeClosed = errors.New("game type is not available for this market now")
	errNoEntries      = errors.New("no entries")
)

const transportMessage = "network error, please try again"

// statusFor maps an error to the HTTP status and the message shown to the
// panel. Backend rejections keep their message verbatim.
func statusFor(err error) (int, string) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, submit.ErrSubmitInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, submit.ErrNoMarket),
		errors.Is(err, submit.ErrNoPlayer),
		errors.Is(err, submit.ErrEmptyCart),
		errors.Is(err, submit.ErrInsufficientBalance),
		errors.Is(err, bidform.ErrUnknownGameType),
		errors.Is(err, bidform.ErrBulkUnsupported),
		errors.Is(err, bidform.ErrInvalidBulk),
		errors.Is(err, errMarketClosed),
		errors.Is(err, errGameTypeClosed),
		errors.Is(err, errNoEntries):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errUnknownMarket):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, backend.ErrSuspended):
		return http.StatusForbidden, "account suspended"
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		} else if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		return status, apiErr.Error()
	case errors.Is(err, backend.ErrTransport):
		return http.StatusBadGateway, transportMessage
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithFields(logger.Fields{"path": c.FullPath()}).Error("request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}
