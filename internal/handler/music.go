package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sinaulab/api/internal/client"
	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/service"
	"github.com/sinaulab/api/pkg/response"
)

type MusicHandler struct {
	service   *service.MusicService
	validator *validator.Validate
}

func NewMusicHandler(svc *service.MusicService, v *validator.Validate) *MusicHandler {
	return &MusicHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/music/generate
// @Summary      Submit a music generation job
// @Description  Forward a prompt to the external music API and return its task id
// @Tags         Music
// @Accept       json
// @Produce      json
// @Param        request body model.GenerateMusicRequest true "Generation request"
// @Success      200 {object} model.GenerateMusicResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      412 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Router       /api/music/generate [post]
func (h *MusicHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateMusicRequest
	if err := c.BodyParser(&req); err != nil {
		return response.InvalidArgument(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.InvalidArgument(c, "Prompt is required.", formatValidationErrors(err))
	}

	result, err := h.service.Generate(c.Context(), req.Prompt)
	if err != nil {
		return musicError(c, err)
	}

	return response.OK(c, result)
}

// Status handles GET /api/music/status/:taskId
// @Summary      Poll a generation job's status
// @Description  Read-through proxy to the external API's status endpoint
// @Tags         Music
// @Produce      json
// @Param        taskId path string true "Task ID"
// @Success      200 {object} model.MusicStatusResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      412 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Router       /api/music/status/{taskId} [get]
func (h *MusicHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		taskID = c.Query("taskId")
	}

	result, err := h.service.GetStatus(c.Context(), taskID)
	if err != nil {
		return musicError(c, err)
	}

	return response.OK(c, result)
}

// musicError maps service failures onto the error taxonomy.
func musicError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyPrompt):
		return response.InvalidArgument(c, "Prompt is required.", nil)
	case errors.Is(err, service.ErrEmptyTaskID):
		return response.InvalidArgument(c, "taskId is required.", nil)
	case errors.Is(err, service.ErrNotConfigured):
		return response.FailedPrecondition(c, "SUNO_API_KEY is not configured. Please set it in the environment.")
	}

	var upstream *client.UpstreamError
	if errors.As(err, &upstream) {
		return response.Internal(c, upstream.Error())
	}

	return response.Unknown(c, "An unexpected error occurred.")
}
