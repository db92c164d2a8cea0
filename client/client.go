// Package client is a small Go client for the quote API. It covers the
// endpoints the mobile app and internal tools actually call.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"quoteme-backend/domain/quotes"
)

const (
	defaultTimeout = 10 * time.Second

	// randomRetries bounds retry attempts for the random quote endpoint.
	// Only server-side failures retry; 4xx responses including 429 are
	// returned to the caller immediately.
	randomRetries = 3

	pollInterval = 2 * time.Second
	maxPolls     = 60
)

// Client talks to the quote API.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval changes how often WaitForImage checks job status
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		pollInterval: pollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// GetRandomQuote fetches a random quote, optionally restricted to a tag.
// Transient server errors are retried a few times with a short backoff.
func (c *Client) GetRandomQuote(ctx context.Context, tag string) (*quotes.Quote, error) {
	path := "/quote"
	if tag != "" {
		path += "?tag=" + url.QueryEscape(tag)
	}

	var lastErr error
	for attempt := 0; attempt < randomRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		var quote quotes.Quote
		err := c.do(ctx, http.MethodGet, path, nil, &quote)
		if err == nil {
			return &quote, nil
		}

		lastErr = err
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return nil, err
		}
	}
	return nil, lastErr
}

// GetQuote fetches one quote by ID
func (c *Client) GetQuote(ctx context.Context, id string) (*quotes.Quote, error) {
	var quote quotes.Quote
	if err := c.do(ctx, http.MethodGet, "/quotes/"+url.PathEscape(id), nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListTags fetches all tags
func (c *Client) ListTags(ctx context.Context) ([]*quotes.Tag, error) {
	var tags []*quotes.Tag
	if err := c.do(ctx, http.MethodGet, "/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Subscribe signs an email address up for the daily nugget
func (c *Client) Subscribe(ctx context.Context, email, timezone string, preferredHour int) (*quotes.Subscription, error) {
	body := map[string]interface{}{
		"email":          email,
		"timezone":       timezone,
		"preferred_hour": preferredHour,
	}

	var sub quotes.Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", body, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Favorite is a saved quote with the snapshot taken at save time
type Favorite struct {
	QuoteID   string        `json:"quote_id"`
	Quote     *quotes.Quote `json:"quote,omitempty"`
	CreatedAt string        `json:"created_at"`
}

// AddFavorite saves a quote for the authenticated user
func (c *Client) AddFavorite(ctx context.Context, quoteID string) (*Favorite, error) {
	body := map[string]string{"quote_id": quoteID}

	var fav Favorite
	if err := c.do(ctx, http.MethodPost, "/favorites", body, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

// RemoveFavorite deletes a saved quote for the authenticated user
func (c *Client) RemoveFavorite(ctx context.Context, quoteID string) error {
	return c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(quoteID), nil, nil)
}

// ListFavorites returns the authenticated user's saved quotes, newest first
func (c *Client) ListFavorites(ctx context.Context) ([]*Favorite, error) {
	var favs []*Favorite
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// IsFavorite reports whether the authenticated user saved a quote
func (c *Client) IsFavorite(ctx context.Context, quoteID string) (bool, error) {
	var result struct {
		IsFavorite bool `json:"is_favorite"`
	}
	if err := c.do(ctx, http.MethodGet, "/favorites/"+url.PathEscape(quoteID), nil, &result); err != nil {
		return false, err
	}
	return result.IsFavorite, nil
}

// ProposeQuote submits a quote suggestion for review
func (c *Client) ProposeQuote(ctx context.Context, text, author string, tags []string, proposerEmail, proposerName string) (*quotes.Proposal, error) {
	body := map[string]interface{}{
		"quote":          text,
		"author":         author,
		"tags":           tags,
		"proposer_email": proposerEmail,
		"proposer_name":  proposerName,
	}

	var resp struct {
		Proposal *quotes.Proposal `json:"proposal"`
	}
	if err := c.do(ctx, http.MethodPost, "/proposals", body, &resp); err != nil {
		return nil, err
	}
	return resp.Proposal, nil
}

// RequestImage asks for an illustration of a quote and returns the job to
// poll. Admin token required.
func (c *Client) RequestImage(ctx context.Context, quoteID string) (*quotes.ImageJob, error) {
	var job quotes.ImageJob
	path := "/admin/quotes/" + url.PathEscape(quoteID) + "/generate-image"
	if err := c.do(ctx, http.MethodPost, path, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ImageJobStatus fetches the current state of an image job
func (c *Client) ImageJobStatus(ctx context.Context, jobID string) (*quotes.ImageJob, error) {
	var job quotes.ImageJob
	if err := c.do(ctx, http.MethodGet, "/admin/image-status/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// WaitForImage polls an image job until it finishes or the poll budget
// runs out.
func (c *Client) WaitForImage(ctx context.Context, jobID string) (*quotes.ImageJob, error) {
	for i := 0; i < maxPolls; i++ {
		job, err := c.ImageJobStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Done() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return nil, fmt.Errorf("image job %s did not finish in time", jobID)
}

// do runs one request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// errorMessage pulls the message out of the API's error envelope
func errorMessage(data []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return string(data)
}
