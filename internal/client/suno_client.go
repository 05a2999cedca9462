package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sinaulab/api/internal/config"
	"github.com/sinaulab/api/internal/logger"
)

// Fixed generation parameters. The service always submits
// non-instrumental, non-custom jobs against the V4_5 model.
const sunoModel = "V4_5"

// MusicGenerator defines the interface for music generation operations
type MusicGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GetGenerationDetails(ctx context.Context, taskID string) (json.RawMessage, error)
	IsConfigured() bool
}

// SunoClient implements MusicGenerator for the Suno API
type SunoClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	callbackURL string
}

// UpstreamError carries the status code and message of a failed Suno
// API call so callers can surface them verbatim.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Suno API Error: %d - %s", e.StatusCode, e.Message)
}

type generateRequest struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model"`
	CallBackURL  string `json:"callBackUrl"`
	Instrumental bool   `json:"instrumental"`
	CustomMode   bool   `json:"customMode"`
}

// sunoEnvelope is the common {code, msg, data} wrapper of Suno API
// responses. Data is kept raw so the status proxy can pass it through
// untouched.
type sunoEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewSunoClient creates a new Suno API client. callbackURL is where
// the API delivers completion notifications.
func NewSunoClient(cfg *config.SunoConfig, callbackURL string) *SunoClient {
	return &SunoClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		callbackURL: callbackURL,
	}
}

// Generate submits a prompt and returns the opaque task id minted by
// the API. Nothing is written locally.
func (c *SunoClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Prompt:       prompt,
		Model:        sunoModel,
		CallBackURL:  c.callbackURL,
		Instrumental: false,
		CustomMode:   false,
	}

	env, err := c.post(ctx, "/generate", req)
	if err != nil {
		return "", err
	}

	var data struct {
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal generate response: %w", err)
	}

	return data.TaskID, nil
}

// GetGenerationDetails fetches the current status of a task and
// returns the upstream data payload verbatim.
func (c *SunoClient) GetGenerationDetails(ctx context.Context, taskID string) (json.RawMessage, error) {
	endpoint := "/getMusicGenerationDetails?taskId=" + url.QueryEscape(taskID)
	env, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *SunoClient) post(ctx context.Context, endpoint string, body interface{}) (*sunoEnvelope, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req)
}

func (c *SunoClient) get(ctx context.Context, endpoint string) (*sunoEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req)
}

func (c *SunoClient) doRequest(req *http.Request) (*sunoEnvelope, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.Debug("suno request", logger.String("method", req.Method), logger.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug("suno response",
		logger.Int("status", resp.StatusCode),
		logger.String("url", req.URL.String()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(respBody),
		}
	}

	var env sunoEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// The API reports some failures inside a 200 body.
	if env.Code != 0 && env.Code != 200 {
		return nil, &UpstreamError{StatusCode: env.Code, Message: env.Msg}
	}

	return &env, nil
}

// upstreamMessage pulls the "msg" field out of an error body, falling
// back to the raw body when it isn't JSON.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Msg != "" {
		return parsed.Msg
	}
	return string(body)
}

// IsConfigured returns true if the client has a credential.
func (c *SunoClient) IsConfigured() bool {
	return c.apiKey != ""
}
