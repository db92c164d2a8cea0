package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTagSuggester_ParsesFencedReply(t *testing.T) {
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		chatReply(t, w, "```json\n[\"Wisdom\", \"Humor\"]\n```")
	}))
	defer server.Close()

	suggester := NewTagSuggester(newTestClient(server.URL), zap.NewNop())
	tags, err := suggester.SuggestTags(context.Background(), "Be yourself", "Oscar Wilde", []string{"Wisdom", "Humor", "Love"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Wisdom", "Humor"}, tags)
	require.Len(t, gotBody.Messages, 2)
	assert.Contains(t, gotBody.Messages[1].Content, "Wisdom, Humor, Love")
	assert.Contains(t, gotBody.Messages[1].Content, "Oscar Wilde")
}

func TestTagSuggester_EmptyVocabulary(t *testing.T) {
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		chatReply(t, w, `[]`)
	}))
	defer server.Close()

	suggester := NewTagSuggester(newTestClient(server.URL), zap.NewNop())
	_, err := suggester.SuggestTags(context.Background(), "text", "author", nil)

	require.NoError(t, err)
	assert.Contains(t, gotBody.Messages[1].Content, "Existing tags in the system: None")
}

func TestTagSuggester_UnparseableReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "I'm sorry, I cannot categorize this quote.")
	}))
	defer server.Close()

	suggester := NewTagSuggester(newTestClient(server.URL), zap.NewNop())
	_, err := suggester.SuggestTags(context.Background(), "text", "author", nil)

	require.Error(t, err)
}

func TestQuoteFinder_ParsesQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `[
  {"quote": "Know thyself", "source": "Delphic maxim", "year": "c. 500 BC", "context": "Inscribed at Delphi", "confidence": "high"}
]`)
	}))
	defer server.Close()

	finder := NewQuoteFinder(newTestClient(server.URL), zap.NewNop())
	found, err := finder.FindByAuthor(context.Background(), "Socrates", 1)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Know thyself", found[0].Text)
	assert.Equal(t, "Delphic maxim", found[0].Source)
	assert.Equal(t, "high", found[0].Confidence)
}

func TestQuoteFinder_UnparseableReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "No verified quotes found for this author.")
	}))
	defer server.Close()

	finder := NewQuoteFinder(newTestClient(server.URL), zap.NewNop())
	_, err := finder.FindByAuthor(context.Background(), "Unknown Person", 3)

	require.Error(t, err)
}
