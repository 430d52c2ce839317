// Package genai calls the external generative-text endpoint that augments
// bot responses with drafted emails and outfit suggestions. The dialogue
// core never imports this package; the transport layer invokes it after a
// turn when a prompt was queued.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ecommerce-chatbot/internal/common/config"
	apperrors "ecommerce-chatbot/internal/common/errors"
	"ecommerce-chatbot/internal/common/logger"
	"ecommerce-chatbot/internal/common/metrics"
)

// Fixed degradation sentences. Generate is total: the user always gets one
// of these instead of an error when the upstream call cannot be completed.
const (
	apologyConnectivity = "Sorry, I'm having trouble connecting to the generative AI service right now. Please try again later."
	apologyEmptyReply   = "Sorry, I couldn't generate a response. The API returned empty content."
	apologyClientErrFmt = "Sorry, there was an error with the request (%d)."
)

// Augmentor is the narrow contract the transport layer depends on, so tests
// can substitute a stub without network I/O.
type Augmentor interface {
	Generate(ctx context.Context, prompt string) string
}

// Client calls the Gemini generateContent REST endpoint with retry and
// exponential backoff. Client errors (4xx) are terminal; server errors and
// transport failures retry until the attempt budget is exhausted.
type Client struct {
	cfg        config.GenAIConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.GenAIConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate produces augmentation text for a prompt. It never returns an
// error: any failure degrades to a fixed apology sentence.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	text, err := c.execute(ctx, prompt)
	if err == nil {
		metrics.GenAICallsTotal.WithLabelValues("success").Inc()
		return text
	}

	stdErr := apperrors.Normalize(err)
	c.logger.Error("generative call degraded", map[string]interface{}{
		"code":      string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": apperrors.IsRetryable(stdErr),
	})

	switch stdErr.Code {
	case apperrors.ErrCodeGenAIEmptyReply:
		metrics.GenAICallsTotal.WithLabelValues("empty").Inc()
		return apologyEmptyReply
	case apperrors.ErrCodeGenAIClientError:
		metrics.GenAICallsTotal.WithLabelValues("client_error").Inc()
		if status, ok := stdErr.Metadata["status"].(int); ok {
			return fmt.Sprintf(apologyClientErrFmt, status)
		}
		return apologyConnectivity
	case apperrors.ErrCodeGenAITimeout:
		metrics.GenAICallsTotal.WithLabelValues("timeout").Inc()
		return apologyConnectivity
	default:
		metrics.GenAICallsTotal.WithLabelValues("failed").Inc()
		return apologyConnectivity
	}
}

func (c *Client) execute(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", apperrors.NewGenAICallFailedError(err.Error())
	}

	backoff := config.GetDuration(c.cfg.InitialBackoff)
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.GenAIRetriesTotal.Inc()
			c.logger.Warn("retrying generative call", map[string]interface{}{
				"attempt": attempt + 1,
				"backoff": backoff.String(),
			})
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewGenAITimeoutError(ctx.Err().Error())
			}
			backoff *= 2
		}

		// A fresh request per attempt: the body reader is consumed by each
		// send.
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
		if reqErr != nil {
			return "", apperrors.NewGenAICallFailedError(reqErr.Error())
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.httpClient.Do(req)

		if ctx.Err() != nil || errors.Is(doErr, context.DeadlineExceeded) || errors.Is(doErr, context.Canceled) {
			return "", apperrors.NewGenAITimeoutError("context expired during request")
		}

		if doErr != nil {
			lastErr = doErr
			continue
		}

		if resp.StatusCode == http.StatusOK {
			text, decErr := decodeText(resp.Body)
			resp.Body.Close()
			if decErr != nil {
				return "", decErr
			}
			return text, nil
		}

		// Client errors are not retryable.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			resp.Body.Close()
			return "", apperrors.NewGenAIClientError(resp.StatusCode, "generative API returned client error")
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
	}

	details := "no successful response after retries"
	if lastErr != nil {
		details = lastErr.Error()
	}
	return "", apperrors.NewGenAICallFailedError(details)
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
}

func decodeText(r io.Reader) (string, error) {
	var apiResponse generateResponse
	if err := json.NewDecoder(r).Decode(&apiResponse); err != nil {
		return "", apperrors.NewGenAICallFailedError("decode error: " + err.Error())
	}

	if len(apiResponse.Candidates) == 0 || len(apiResponse.Candidates[0].Content.Parts) == 0 {
		return "", &apperrors.StandardError{
			Code:      apperrors.ErrCodeGenAIEmptyReply,
			Message:   "generative API returned empty content",
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	text := apiResponse.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", &apperrors.StandardError{
			Code:      apperrors.ErrCodeGenAIEmptyReply,
			Message:   "generative API returned empty content",
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	return text, nil
}
