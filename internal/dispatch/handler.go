package dispatch

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
		v1.POST("/sms/send", h.Send)
	}
}

// Send godoc
// @Summary      Send an SMS to a recipient
// @Description  Runs the message through the blocklist gate and the carrier, and reports the outcome
// @Tags         sms
// @Accept       json
// @Produce      json
// @Param        request  body      SendRequest  true  "Send request"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /sms/send [post]
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Message = strings.TrimSpace(req.Message)
	if req.PhoneNumber == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("message", "phoneNumber and message are required"),
		))
		return
	}

	result, err := h.service.Dispatch(c.Request.Context(), req)
	if err != nil {
		h.logger.ErrorwCtx(c.Request.Context(), "Dispatch failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, errors.ToErrorResponse(
			errors.ErrServiceUnavailable.WithCause(err),
		))
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
