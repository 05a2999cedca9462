package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sinaulab/api/internal/client"
	"github.com/sinaulab/api/internal/config"
	"github.com/sinaulab/api/internal/handler"
	"github.com/sinaulab/api/internal/middleware"
	"github.com/sinaulab/api/internal/repository"
	"github.com/sinaulab/api/internal/service"
	ws "github.com/sinaulab/api/internal/websocket"
)

// testApp holds all components needed for testing
type testApp struct {
	app       *fiber.App
	notes     *repository.MemoryNoteRepository
	callbacks *repository.MemoryCallbackRecordRepository
}

// setupApp creates a Fiber app wired like main.go but with in-memory
// stores, no Redis, no object storage and an unconfigured music client,
// so services hit their fallbacks and no network is touched.
func setupApp(t *testing.T) *testApp {
	return setupAppWithSuno(t, &config.SunoConfig{})
}

// setupAppWithSuno is setupApp with a caller-supplied music API
// config, typically pointed at an httptest server.
func setupAppWithSuno(t *testing.T, sunoCfg *config.SunoConfig) *testApp {
	t.Helper()

	noteRepo := repository.NewMemoryNoteRepository()
	callbackRepo := repository.NewMemoryCallbackRecordRepository()

	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()

	sunoClient := client.NewSunoClient(sunoCfg, "http://localhost:8000/sunoCallback")

	// Services: nil redis/storage/asynq trigger fallbacks
	musicService := service.NewMusicService(sunoClient)
	galleryService := service.NewGalleryService(callbackRepo, nil)
	callbackService := service.NewCallbackService(callbackRepo, hub, nil, galleryService)
	noteService := service.NewNoteService(noteRepo, nil, hub)

	// Handlers
	musicHandler := handler.NewMusicHandler(musicService, validate)
	callbackHandler := handler.NewCallbackHandler(callbackService)
	galleryHandler := handler.NewGalleryHandler(galleryService)
	noteHandler := handler.NewNoteHandler(noteService)

	// nil redis → limiter passes everything through
	rateLimiter := middleware.NewRateLimiter(nil)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"suno":    sunoClient.IsConfigured(),
				"storage": false,
				"db":      false,
				"redis":   false,
			},
		})
	})

	app.Post("/sunoCallback", callbackHandler.Receive)

	api := app.Group("/api")

	music := api.Group("/music")
	music.Post("/generate", rateLimiter.GenerateLimit(10000), musicHandler.Generate)
	music.Get("/status/:taskId?", musicHandler.Status)

	api.Get("/gallery", galleryHandler.List)

	api.Post("/notes", rateLimiter.NoteLimit(10000), noteHandler.Create)
	api.Get("/notes", noteHandler.List)

	return &testApp{
		app:       app,
		notes:     noteRepo,
		callbacks: callbackRepo,
	}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode extracts error.code from a parsed error response.
func errorCode(t *testing.T, result map[string]interface{}) string {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected 'error' object in response, got %v", result)
	}
	code, _ := errObj["code"].(string)
	return code
}
