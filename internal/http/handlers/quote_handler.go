// README: Quote and driver handlers; place text in, fare and driver out.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"jeeny/internal/modules/location"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
)

type QuoteHandler struct {
	quotes    QuoteService
	locations LocationService
	log       logrus.FieldLogger
}

func NewQuoteHandler(quotes QuoteService, locations LocationService, log logrus.FieldLogger) *QuoteHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuoteHandler{quotes: quotes, locations: locations, log: log.WithField("component", "quote_handler")}
}

// carClass degrades an unknown class to Standard; the warning is returned
// to the caller alongside the quote.
func (h *QuoteHandler) carClass(name string) (pricing.CarClass, string) {
	class, err := pricing.ResolveClass(name, h.log)
	if err != nil {
		return class, err.Error()
	}
	return class, ""
}

type quoteReq struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	CarClass string `json:"car_class"`
}

type quoteResp struct {
	Start   location.Location     `json:"start"`
	End     location.Location     `json:"end"`
	Quote   quote.TripQuote       `json:"quote"`
	Driver  quote.DriverPlacement `json:"driver"`
	Warning string                `json:"warning,omitempty"`
}

// Create handles POST /api/quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Start) == "" || strings.TrimSpace(req.End) == "" {
		writeError(c, http.StatusBadRequest, "missing start or end")
		return
	}
	class, warning := h.carClass(req.CarClass)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	start, err := h.locations.Resolve(ctx, req.Start, location.RoleStart)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	end, err := h.locations.Resolve(ctx, req.End, location.RoleEnd)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	plan, err := h.quotes.Plan(ctx, start, end, class)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{
		Start:   plan.Start,
		End:     plan.End,
		Quote:   plan.Quote,
		Driver:  plan.Driver,
		Warning: warning,
	})
}

type driverReq struct {
	Start    string `json:"start"`
	CarClass string `json:"car_class"`
}

type driverResp struct {
	Driver  quote.DriverPlacement `json:"driver"`
	Warning string                `json:"warning,omitempty"`
}

// Driver handles POST /api/drivers.
func (h *QuoteHandler) Driver(c *gin.Context) {
	var req driverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Start) == "" {
		writeError(c, http.StatusBadRequest, "missing start")
		return
	}
	class, warning := h.carClass(req.CarClass)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	start, err := h.locations.Resolve(ctx, req.Start, location.RoleStart)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, driverResp{Driver: h.quotes.MakeDriver(ctx, start, class), Warning: warning})
}
