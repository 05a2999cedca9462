package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sinaulab/api/internal/config"
)

func newTestSunoClient(t *testing.T, handler http.HandlerFunc) *SunoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSunoClient(&config.SunoConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, "https://example.com/sunoCallback")
}

func TestSunoGenerate_RequestShape(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string

	c := newTestSunoClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		w.Write([]byte(`{"code": 200, "msg": "success", "data": {"taskId": "t123"}}`))
	})

	taskID, err := c.Generate(context.Background(), "a calm piano piece")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if taskID != "t123" {
		t.Errorf("expected taskId t123, got %q", taskID)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotBody["prompt"] != "a calm piano piece" {
		t.Errorf("expected prompt forwarded, got %v", gotBody["prompt"])
	}
	if gotBody["model"] != "V4_5" {
		t.Errorf("expected model V4_5, got %v", gotBody["model"])
	}
	if gotBody["callBackUrl"] != "https://example.com/sunoCallback" {
		t.Errorf("expected callBackUrl, got %v", gotBody["callBackUrl"])
	}
	if gotBody["instrumental"] != false {
		t.Errorf("expected instrumental=false, got %v", gotBody["instrumental"])
	}
	if gotBody["customMode"] != false {
		t.Errorf("expected customMode=false, got %v", gotBody["customMode"])
	}
}

func TestSunoGenerate_HTTPError(t *testing.T) {
	c := newTestSunoClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code": 429, "msg": "insufficient credits"}`))
	})

	_, err := c.Generate(context.Background(), "a song")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upstream.StatusCode)
	}
	if upstream.Message != "insufficient credits" {
		t.Errorf("expected upstream msg extracted, got %q", upstream.Message)
	}
}

func TestSunoGenerate_ErrorInsideOKBody(t *testing.T) {
	c := newTestSunoClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 430, "msg": "rate limited", "data": null}`))
	})

	_, err := c.Generate(context.Background(), "a song")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.StatusCode != 430 {
		t.Errorf("expected envelope code carried, got %d", upstream.StatusCode)
	}
}

func TestSunoGetGenerationDetails_PassesDataThrough(t *testing.T) {
	c := newTestSunoClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getMusicGenerationDetails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("taskId"); got != "t123" {
			t.Errorf("expected taskId query param, got %q", got)
		}
		w.Write([]byte(`{"code": 200, "msg": "success", "data": {"taskId": "t123", "status": "PENDING", "response": null}}`))
	})

	data, err := c.GetGenerationDetails(context.Background(), "t123")
	if err != nil {
		t.Fatalf("GetGenerationDetails failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("data is not JSON: %v", err)
	}
	if parsed["status"] != "PENDING" {
		t.Errorf("expected upstream data verbatim, got %v", parsed)
	}
}

func TestSunoIsConfigured(t *testing.T) {
	configured := NewSunoClient(&config.SunoConfig{APIKey: "k", BaseURL: "http://x"}, "")
	if !configured.IsConfigured() {
		t.Error("expected configured client")
	}

	bare := NewSunoClient(&config.SunoConfig{BaseURL: "http://x"}, "")
	if bare.IsConfigured() {
		t.Error("expected unconfigured client without a key")
	}
}
