package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/service"
)

type CallbackHandler struct {
	service *service.CallbackService
}

func NewCallbackHandler(svc *service.CallbackService) *CallbackHandler {
	return &CallbackHandler{service: svc}
}

// Receive handles POST /sunoCallback
// @Summary      Receive a completion notification from the Suno API
// @Description  Stores the raw body verbatim and always acknowledges with 200
// @Tags         Music
// @Accept       json
// @Produce      json
// @Success      200 {object} model.CallbackAck
// @Router       /sunoCallback [post]
//
// The delivering party treats anything but a 2xx as a delivery failure
// and retries, so this endpoint never rejects a body. Malformed
// payloads are recorded too, and storage failures are only logged.
func (h *CallbackHandler) Receive(c *fiber.Ctx) error {
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	logger.Info("suno callback received", logger.Int("bytes", len(body)))

	if err := h.service.Record(c.Context(), body); err != nil {
		logger.Error("failed to store callback record", logger.Err(err))
	}

	return c.JSON(model.CallbackAck{Success: true})
}
