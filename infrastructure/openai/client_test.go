package openai

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "quoteme-backend/pkg/errors"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "test-key", "gpt-4o-mini", "dall-e-3", zap.NewNop())
}

func TestChatSendsAuthAndModel(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		chatReply(t, w, "hello")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reply, err := client.chat(context.Background(), "system prompt", "user prompt", 100, 0.3)

	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "user prompt", gotBody.Messages[1].Content)
}

func TestChatSurfacesAPIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.chat(context.Background(), "s", "u", 100, 0.3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 5; i++ {
		_, err := client.chat(context.Background(), "s", "u", 100, 0.3)
		require.Error(t, err)
	}

	_, err := client.chat(context.Background(), "s", "u", 100, 0.3)
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeUnavailable, appErr.Type)
	assert.Equal(t, int64(5), atomic.LoadInt64(&calls))
}

func TestGenerateImageDecodesBase64(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		resp := map[string]interface{}{
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString(payload)},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	data, err := client.generateImage(context.Background(), "a quote on parchment")

	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGenerateImageFollowsURL(t *testing.T) {
	payload := []byte("image-bytes")
	var mux http.ServeMux
	server := httptest.NewServer(&mux)
	defer server.Close()

	mux.HandleFunc("/hosted/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"data": []map[string]string{
				{"url": server.URL + "/hosted/image.png"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	client := newTestClient(server.URL)
	data, err := client.generateImage(context.Background(), "a quote on parchment")

	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGenerateImageRejectsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.generateImage(context.Background(), "prompt")

	require.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`["a","b"]`, `["a","b"]`},
		{"Here you go:\n```json\n[\"a\"]\n```", `["a"]`},
		{"no json here", "no json here"},
		{`prefix ["x"] suffix`, `["x"]`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractJSON(tc.in, '[', ']'))
	}
}
