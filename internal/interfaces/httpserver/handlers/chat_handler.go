package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/telemetry"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/requests"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/responses"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

// ChatHandler exposes the agent run and the message history.
type ChatHandler struct {
	service   ChatService
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service ChatService, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:   service,
		sanitizer: sanitizer,
		log:       log.With().Str("handler", "chat").Logger(),
	}
}

// Run handles POST /v1/threads/run
func (h *ChatHandler) Run(c *gin.Context) {
	var req requests.RunThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "user_input and a thread_id of at most 64 characters are required")
		return
	}

	h.log.Debug().
		Str("thread_id", req.ThreadID).
		Str("user_input", h.sanitizer.Content(req.UserInput)).
		Msg("run requested")

	reply, err := h.service.SubmitMessage(c.Request.Context(), req.UserInput, req.ThreadID, req.ThreadName)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.RunThreadResponse{
		Message:  "AI thread completed successfully.",
		Response: reply.ResponseText,
		Sources:  reply.Citations,
	})
}

// Messages handles GET /v1/threads/:thread_id/messages
func (h *ChatHandler) Messages(c *gin.Context) {
	h.writeHistory(c, c.Param("thread_id"))
}

// MessagesByBody handles POST /v1/messages, the body-addressed variant kept
// for older clients.
func (h *ChatHandler) MessagesByBody(c *gin.Context) {
	var req struct {
		ThreadID string `json:"thread_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "thread_id is required")
		return
	}
	h.writeHistory(c, req.ThreadID)
}

func (h *ChatHandler) writeHistory(c *gin.Context, threadID string) {
	result, err := h.service.GetHistory(c.Request.Context(), threadID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, result)
}
