package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/service"
	"github.com/sinaulab/api/pkg/response"
)

type GalleryHandler struct {
	service *service.GalleryService
}

func NewGalleryHandler(svc *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{service: svc}
}

// List handles GET /api/gallery
// @Summary      List all generated tracks
// @Description  Flattens every stored callback record into a track list, newest record first
// @Tags         Music
// @Produce      json
// @Success      200 {object} model.GalleryResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/gallery [get]
func (h *GalleryHandler) List(c *fiber.Ctx) error {
	tracks, err := h.service.ListTracks(c.Context())
	if err != nil {
		return response.Unknown(c, "Failed to read gallery.")
	}

	return response.OK(c, model.GalleryResponse{Tracks: tracks})
}
