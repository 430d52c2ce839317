package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-chatbot/internal/common/config"
	"ecommerce-chatbot/internal/common/logger"
)

func testConfig(baseURL string) config.GenAIConfig {
	return config.GenAIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Model:          "gemini-test",
		Timeout:        2000,
		MaxRetries:     3,
		InitialBackoff: 1,
	}
}

func geminiReply(text string) string {
	payload := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestClient_Generate_Success(t *testing.T) {
	var gotPath, gotQuery, gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		gotPrompt = req.Contents[0].Parts[0].Text

		fmt.Fprint(w, geminiReply("Here is a draft email."))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logger.NewTestLogger(t))
	out := c.Generate(context.Background(), "draft an email")

	assert.Equal(t, "Here is a draft email.", out)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "key=test-key", gotQuery)
	assert.Equal(t, "draft an email", gotPrompt)
}

func TestClient_Generate_RetriesServerErrors(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, geminiReply("Recovered."))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logger.NewTestLogger(t))
	out := c.Generate(context.Background(), "prompt")

	assert.Equal(t, "Recovered.", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Generate_ExhaustedRetries(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logger.NewTestLogger(t))
	out := c.Generate(context.Background(), "prompt")

	assert.Equal(t, apologyConnectivity, out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "every attempt in the budget is used")
}

func TestClient_Generate_ClientErrorIsTerminal(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), logger.NewTestLogger(t))
	out := c.Generate(context.Background(), "prompt")

	assert.Equal(t, "Sorry, there was an error with the request (400).", out)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx responses are not retried")
}

func TestClient_Generate_EmptyContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates": []}`},
		{"no parts", `{"candidates": [{"content": {"parts": []}}]}`},
		{"empty text", geminiReply("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(testConfig(srv.URL), logger.NewTestLogger(t))
			out := c.Generate(context.Background(), "prompt")
			assert.Equal(t, apologyEmptyReply, out)
		})
	}
}

func TestClient_Generate_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiReply("too late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testConfig(srv.URL), logger.NewTestLogger(t))
	out := c.Generate(ctx, "prompt")
	assert.Equal(t, apologyConnectivity, out)
}

func TestClient_Generate_UnreachableHost(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.MaxRetries = 2

	c := NewClient(cfg, logger.NewTestLogger(t))
	out := c.Generate(context.Background(), "prompt")
	assert.Equal(t, apologyConnectivity, out)
}
