package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

func newTestAdminHandler() *AdminHandler {
	logger := zap.NewNop()
	errs := errors.NewErrorHandler(logger, false)
	return NewAdminHandler(nil, nil, nil, nil, nil, nil, nil, nil, errs, logger)
}

func TestAdminCreateQuote_RejectsMalformedBody(t *testing.T) {
	h := newTestAdminHandler()

	req := httptest.NewRequest(http.MethodPost, "/admin/quotes", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.CreateQuote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminCreateQuote_RejectsMissingAuthor(t *testing.T) {
	h := newTestAdminHandler()

	req := httptest.NewRequest(http.MethodPost, "/admin/quotes", strings.NewReader(`{"quote":"Know thyself"}`))
	rec := httptest.NewRecorder()

	h.CreateQuote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminAuthorQuotes_RequiresAuthorParam(t *testing.T) {
	h := newTestAdminHandler()

	req := httptest.NewRequest(http.MethodGet, "/admin/author-quotes", nil)
	rec := httptest.NewRecorder()

	h.AuthorQuotes(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminAuthorQuotes_BoundsLimit(t *testing.T) {
	h := newTestAdminHandler()

	req := httptest.NewRequest(http.MethodGet, "/admin/author-quotes?author=Socrates&limit=50", nil)
	rec := httptest.NewRecorder()

	h.AuthorQuotes(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuotePage_RendersQuote(t *testing.T) {
	h := NewQuoteHandler(nil, nil, "https://quote-me.example.com", nil, zap.NewNop())
	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", []string{"wisdom"}, "seed")
	require.NoError(t, err)

	body, err := h.renderPage(q)

	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "Oscar Wilde")
	assert.Contains(t, page, "Be yourself")
	assert.Contains(t, page, `og:url`)
	assert.Contains(t, page, "https://quote-me.example.com/quote/"+q.ID)
}

func TestQuotePage_FallsBackWithoutQuote(t *testing.T) {
	h := NewQuoteHandler(nil, nil, "https://quote-me.example.com", nil, zap.NewNop())

	body, err := h.renderPage(nil)

	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "Quote Me - Share Inspiring Quotes")
	assert.Contains(t, page, "https://quote-me.example.com")
}

func TestQuotePage_EscapesQuoteText(t *testing.T) {
	h := NewQuoteHandler(nil, nil, "https://quote-me.example.com", nil, zap.NewNop())
	q, err := quotes.NewQuote(`<script>alert("x")</script>`, "Mallory", nil, "seed")
	require.NoError(t, err)

	body, err := h.renderPage(q)

	require.NoError(t, err)
	assert.NotContains(t, string(body), "<script>alert")
}
