package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sinaulab/api/internal/logger"
	"github.com/sinaulab/api/internal/model"
	"github.com/sinaulab/api/internal/service"
	"github.com/sinaulab/api/pkg/response"
)

type NoteHandler struct {
	service *service.NoteService
}

func NewNoteHandler(svc *service.NoteService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// Create handles POST /api/notes (multipart form: text, optional image)
// @Summary      Append a note
// @Description  Creates a note with optional image; the image is streamed to object storage first
// @Tags         Notes
// @Accept       multipart/form-data
// @Produce      json
// @Param        text formData string false "Note text"
// @Param        image formData file false "Attached image"
// @Success      201 {object} model.CreateNoteResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/notes [post]
func (h *NoteHandler) Create(c *fiber.Ctx) error {
	text := c.FormValue("text")

	var image *service.ImageUpload
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return response.InvalidArgument(c, "Failed to read image", nil)
		}
		defer file.Close()

		image = &service.ImageUpload{
			Reader:      file,
			Size:        fileHeader.Size,
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
		}
	}

	note, err := h.service.Create(c.Context(), text, image)
	if err != nil {
		if errors.Is(err, service.ErrEmptyNote) {
			return response.InvalidArgument(c, "Note text or image is required.", nil)
		}
		logger.Error("failed to create note", logger.Err(err))
		return response.Unknown(c, "Failed to create note.")
	}

	return response.Created(c, model.CreateNoteResponse{Success: true, Note: note})
}

// List handles GET /api/notes
// @Summary      List notes
// @Description  Returns all notes ordered by creation time, newest first
// @Tags         Notes
// @Produce      json
// @Success      200 {object} model.ListNotesResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/notes [get]
func (h *NoteHandler) List(c *fiber.Ctx) error {
	notes, err := h.service.List(c.Context())
	if err != nil {
		return response.Unknown(c, "Failed to list notes.")
	}

	if notes == nil {
		notes = []model.Note{}
	}
	return response.OK(c, model.ListNotesResponse{Notes: notes})
}
