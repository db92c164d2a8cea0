package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteme-backend/domain/quotes"
)

func TestGetRandomQuoteRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "boom"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "q1", "quote": "Stay hungry.", "author": "Steve Jobs"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	quote, err := c.GetRandomQuote(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "Stay hungry.", quote.Text)
	assert.Equal(t, "Steve Jobs", quote.Author)
}

func TestGetRandomQuoteGivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetRandomQuote(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetRandomQuoteDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetRandomQuote(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate limit exceeded", apiErr.Message)
}

func TestGetRandomQuotePassesTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "wisdom", r.URL.Query().Get("tag"))
		w.Write([]byte(`{"id": "q1", "quote": "x", "author": "y"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).GetRandomQuote(context.Background(), "wisdom")
	require.NoError(t, err)
}

func TestGetQuoteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "quote not found"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).GetQuote(context.Background(), "missing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "quote not found", apiErr.Message)
}

func TestWaitForImagePollsUntilTerminal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/image-status/job-1", r.URL.Path)
		if atomic.AddInt32(&calls, 1) < 3 {
			w.Write([]byte(`{"job_id": "job-1", "status": "processing"}`))
			return
		}
		w.Write([]byte(`{"job_id": "job-1", "status": "completed", "image_url": "https://img/x.png"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithPollInterval(time.Millisecond))
	job, err := c.WaitForImage(context.Background(), "job-1")

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, quotes.JobCompleted, job.Status)
	assert.Equal(t, "https://img/x.png", job.ImageURL)
}

func TestWaitForImageSurfacesJobFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"job_id": "job-2", "status": "failed", "error": "generation refused"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithPollInterval(time.Millisecond))
	job, err := c.WaitForImage(context.Background(), "job-2")

	require.NoError(t, err)
	assert.Equal(t, quotes.JobFailed, job.Status)
	assert.Equal(t, "generation refused", job.Error)
}

func TestAddFavoriteSendsQuoteID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/favorites", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "q1", body["quote_id"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"quote_id": "q1", "quote": {"id": "q1", "quote": "x", "author": "y"}}`))
	}))
	defer server.Close()

	fav, err := New(server.URL, WithToken("secret")).AddFavorite(context.Background(), "q1")

	require.NoError(t, err)
	assert.Equal(t, "q1", fav.QuoteID)
	require.NotNil(t, fav.Quote)
	assert.Equal(t, "x", fav.Quote.Text)
}

func TestIsFavorite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/favorites/q1", r.URL.Path)
		w.Write([]byte(`{"is_favorite": true}`))
	}))
	defer server.Close()

	saved, err := New(server.URL, WithToken("secret")).IsFavorite(context.Background(), "q1")

	require.NoError(t, err)
	assert.True(t, saved)
}

func TestProposeQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/proposals", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Know thyself.", body["quote"])
		assert.Equal(t, "reader@example.com", body["proposer_email"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"proposal": {"id": "p1", "quote": "Know thyself.", "author": "Socrates", "status": "pending"}}`))
	}))
	defer server.Close()

	proposal, err := New(server.URL).ProposeQuote(context.Background(),
		"Know thyself.", "Socrates", []string{"Wisdom"}, "reader@example.com", "A Reader")

	require.NoError(t, err)
	assert.Equal(t, "p1", proposal.ID)
	assert.Equal(t, "pending", proposal.Status)
}

func TestTokenIsSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := New(server.URL, WithToken("secret")).ListTags(context.Background())
	require.NoError(t, err)
}
