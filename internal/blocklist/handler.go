package blocklist

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
		blocklist := v1.Group("/blocklist")
		{
			blocklist.GET("/:phone_number", h.GetStatus)
			blocklist.PUT("/:phone_number", h.Block)
			blocklist.DELETE("/:phone_number", h.Unblock)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		// Blocklist store failures are availability problems, not bugs.
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, errors.ToErrorResponse(err))
}

func phoneNumberParam(c *gin.Context) (string, bool) {
	phoneNumber := strings.TrimSpace(c.Param("phone_number"))
	if phoneNumber == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "phone_number is required"),
		))
		return "", false
	}
	return phoneNumber, true
}

// GetStatus godoc
// @Summary      Check whether a recipient is blocked
// @Tags         blocklist
// @Produce      json
// @Param        phone_number  path  string  true  "Recipient phone number"
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /blocklist/{phone_number} [get]
func (h *Handler) GetStatus(c *gin.Context) {
	phoneNumber, ok := phoneNumberParam(c)
	if !ok {
		return
	}

	blocked, err := h.service.IsBlocked(c.Request.Context(), phoneNumber)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"phone_number": phoneNumber,
		"blocked":      blocked,
	})
}

// Block godoc
// @Summary      Block a recipient
// @Tags         blocklist
// @Produce      json
// @Param        phone_number  path  string  true  "Recipient phone number"
// @Success      204  "blocked"
// @Failure      503  {object}  map[string]interface{}
// @Router       /blocklist/{phone_number} [put]
func (h *Handler) Block(c *gin.Context) {
	phoneNumber, ok := phoneNumberParam(c)
	if !ok {
		return
	}

	if err := h.service.Block(c.Request.Context(), phoneNumber); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Unblock godoc
// @Summary      Unblock a recipient
// @Tags         blocklist
// @Produce      json
// @Param        phone_number  path  string  true  "Recipient phone number"
// @Success      204  "unblocked"
// @Failure      503  {object}  map[string]interface{}
// @Router       /blocklist/{phone_number} [delete]
func (h *Handler) Unblock(c *gin.Context) {
	phoneNumber, ok := phoneNumberParam(c)
	if !ok {
		return
	}

	if err := h.service.Unblock(c.Request.Context(), phoneNumber); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
