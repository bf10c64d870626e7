package history

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smsrelay/internal/logger"
	"smsrelay/pkg/errors"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.GET("/users/:user_id/messages", h.GetMessages)
	}
}

// GetMessages godoc
// @Summary      Get a recipient's message history
// @Description  Returns every stored message for the recipient in arrival order, plus the count
// @Tags         history
// @Produce      json
// @Param        user_id  path  string  true  "Recipient phone number"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /users/{user_id}/messages [get]
func (h *Handler) GetMessages(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "user_id is required"),
		))
		return
	}

	messages, count, err := h.service.GetAll(c.Request.Context(), userID)
	if err != nil {
		h.logger.ErrorwCtx(c.Request.Context(), "Failed to load message history",
			"error", err,
			"user_id", userID,
		)
		c.JSON(http.StatusInternalServerError, errors.ToErrorResponse(errors.ErrInternal.WithCause(err)))
		return
	}

	// An unknown recipient is an empty history, not a 404.
	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"messages": messages,
		"count":    count,
	})
}
