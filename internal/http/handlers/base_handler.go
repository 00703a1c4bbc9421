// README: Base handler utilities (JSON helpers, error mapping, service contracts).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jeeny/internal/modules/aiusage"
	"jeeny/internal/modules/location"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
	"jeeny/internal/service"
)

const requestTimeout = 10 * time.Second

type ChatService interface {
	HandleMessage(ctx context.Context, sessionID, message string) (*service.Reply, error)
}

// UsageGuard charges one assistant call to a session.
type UsageGuard interface {
	UseToken(ctx context.Context, sessionID string) error
}

type QuoteService interface {
	Plan(ctx context.Context, start, end location.Location, class pricing.CarClass) (*quote.Plan, error)
	MakeDriver(ctx context.Context, start location.Location, class pricing.CarClass) quote.DriverPlacement
}

type LocationService interface {
	Resolve(ctx context.Context, raw string, role location.Role) (location.Location, error)
	SavedPlaces(ctx context.Context) ([]location.SavedPlace, error)
	SavePlace(ctx context.Context, name, value string) (location.SavedPlace, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, location.ErrEmptyPlace):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrGeocodingFailed):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, location.ErrOutOfRegion), errors.Is(err, quote.ErrNoRouteFound):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		writeError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "upstream timeout")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
