// README: Saved place handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locations LocationService
}

func NewLocationHandler(svc LocationService) *LocationHandler {
	return &LocationHandler{locations: svc}
}

type savePlaceReq struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// List handles GET /api/places.
func (h *LocationHandler) List(c *gin.Context) {
	places, err := h.locations.SavedPlaces(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"places": places})
}

// Save handles POST /api/places.
func (h *LocationHandler) Save(c *gin.Context) {
	var req savePlaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sp, err := h.locations.SavePlace(c.Request.Context(), req.Name, req.Value)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, sp)
}
