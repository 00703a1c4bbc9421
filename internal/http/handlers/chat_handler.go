// README: Chat handler; one conversation turn per request, keyed by session id.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jeeny/internal/modules/quote"
)

type ChatHandler struct {
	chat  ChatService
	usage UsageGuard
}

// NewChatHandler creates the handler; usage may be nil to disable the quota.
func NewChatHandler(svc ChatService, usage UsageGuard) *ChatHandler {
	return &ChatHandler{chat: svc, usage: usage}
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResp struct {
	SessionID string                 `json:"session_id"`
	Intent    string                 `json:"intent"`
	Reply     string                 `json:"reply"`
	Quote     *quote.TripQuote       `json:"quote,omitempty"`
	Driver    *quote.DriverPlacement `json:"driver,omitempty"`
	Warning   string                 `json:"warning,omitempty"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	} else if _, err := uuid.Parse(req.SessionID); err != nil {
		writeError(c, http.StatusBadRequest, "invalid session_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if h.usage != nil {
		if err := h.usage.UseToken(ctx, req.SessionID); err != nil {
			writeDomainError(c, err)
			return
		}
	}

	reply, err := h.chat.HandleMessage(ctx, req.SessionID, req.Message)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	resp := chatResp{
		SessionID: req.SessionID,
		Intent:    reply.Intent,
		Reply:     reply.Text,
		Warning:   reply.Warning,
	}
	if reply.Plan != nil {
		resp.Quote = &reply.Plan.Quote
		resp.Driver = &reply.Plan.Driver
	}
	writeJSON(c, http.StatusOK, resp)
}
