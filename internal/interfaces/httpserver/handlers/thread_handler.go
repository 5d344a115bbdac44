package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/requests"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/responses"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

// ThreadHandler exposes thread CRUD.
type ThreadHandler struct {
	service ThreadService
	log     zerolog.Logger
}

// NewThreadHandler constructs the handler.
func NewThreadHandler(service ThreadService, log zerolog.Logger) *ThreadHandler {
	return &ThreadHandler{
		service: service,
		log:     log.With().Str("handler", "thread").Logger(),
	}
}

// List handles GET /v1/threads
func (h *ThreadHandler) List(c *gin.Context) {
	threads, err := h.service.List(c.Request.Context())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MapThreads(threads))
}

// Create handles POST /v1/threads. The body is optional.
func (h *ThreadHandler) Create(c *gin.Context) {
	var req requests.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}

	conv, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, responses.MapThread(*conv))
}

// Rename handles PATCH /v1/threads/:thread_id
func (h *ThreadHandler) Rename(c *gin.Context) {
	var req requests.RenameThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "new_name is required")
		return
	}

	if err := h.service.Rename(c.Request.Context(), c.Param("thread_id"), req.NewName); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.DetailResponse{Detail: "Thread name updated successfully."})
}

// Delete handles DELETE /v1/threads/:thread_id?name=
func (h *ThreadHandler) Delete(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("thread_id"), c.Query("name"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.DeleteThreadResponse{
		Detail:          "Thread and its messages deleted successfully.",
		DeletedMessages: deleted,
	})
}
