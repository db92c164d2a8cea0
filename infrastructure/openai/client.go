package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "quoteme-backend/pkg/errors"
)

// maxResponseBytes bounds how much of an OpenAI response is read.
const maxResponseBytes = 20 * 1024 * 1024

// Client is a thin OpenAI API client. All calls run through a circuit
// breaker so a struggling upstream sheds load fast instead of tying up
// request handlers for full timeouts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chatModel  string
	imageModel string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a new OpenAI client
func NewClient(baseURL, apiKey, chatModel, imageModel string, logger *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		chatModel:  chatModel,
		imageModel: imageModel,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chat runs one chat completion and returns the assistant's reply text
func (c *Client) chat(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	req := chatRequest{
		Model:       c.chatModel,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var parsed chatResponse
	if err := c.post(ctx, "/chat/completions", req, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.NewExternalError("openai", fmt.Errorf("empty choices in response"))
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

// generateImage renders one 1024x1024 image and returns its bytes. The API
// answers with inline base64 or a short-lived URL depending on the model.
func (c *Client) generateImage(ctx context.Context, prompt string) ([]byte, error) {
	req := imageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		Size:   "1024x1024",
		N:      1,
	}

	var parsed imageResponse
	if err := c.post(ctx, "/images/generations", req, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 {
		return nil, apperrors.NewExternalError("openai", fmt.Errorf("empty image data in response"))
	}

	if parsed.Data[0].B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image payload: %w", err)
		}
		return data, nil
	}
	if parsed.Data[0].URL != "" {
		return c.download(ctx, parsed.Data[0].URL)
	}
	return nil, apperrors.NewExternalError("openai", fmt.Errorf("image response carried neither data nor url"))
}

// post sends one JSON request through the circuit breaker
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			var failure struct {
				Error *apiError `json:"error"`
			}
			if json.Unmarshal(data, &failure) == nil && failure.Error != nil {
				return nil, fmt.Errorf("openai: %s: %s", failure.Error.Type, failure.Error.Message)
			}
			return nil, fmt.Errorf("openai: HTTP %d", resp.StatusCode)
		}
		return data, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return apperrors.NewUnavailableError("openai")
		}
		c.logger.Error("OpenAI request failed",
			zap.Error(err),
			zap.String("path", path),
		)
		return apperrors.NewExternalError("openai", err)
	}

	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return fmt.Errorf("failed to parse openai response: %w", err)
	}
	return nil
}

// download fetches a generated image from its short-lived URL
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to download generated image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError("openai", fmt.Errorf("image download: HTTP %d", resp.StatusCode))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}
