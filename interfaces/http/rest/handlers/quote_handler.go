package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
	"quoteme-backend/pkg/observability"
)

// QuoteHandler serves the public quote endpoints
type QuoteHandler struct {
	quoteService *services.QuoteService
	collector    *observability.Collector
	appBaseURL   string
	errs         *errors.ErrorHandler
	logger       *zap.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(
	quoteService *services.QuoteService,
	collector *observability.Collector,
	appBaseURL string,
	errs *errors.ErrorHandler,
	logger *zap.Logger,
) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		collector:    collector,
		appBaseURL:   appBaseURL,
		errs:         errs,
		logger:       logger,
	}
}

// GetRandom handles GET /quote. Optional tag and author query parameters
// restrict the draw; author wins when both are present.
func (h *QuoteHandler) GetRandom(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	author := r.URL.Query().Get("author")

	var quote *quotes.Quote
	var err error
	if author != "" {
		quote, err = h.quoteService.RandomQuoteByAuthor(r.Context(), author)
	} else {
		quote, err = h.quoteService.RandomQuote(r.Context(), tag)
	}
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if h.collector != nil {
		h.collector.QuotesServed.Inc()
	}
	common.RespondJSON(w, http.StatusOK, quote)
}

// Get handles GET /quotes/{quoteID}
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quoteService.GetQuote(r.Context(), chi.URLParam(r, "quoteID"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, quote)
}

// Page handles GET /quotes/{quoteID}/page. It renders a share page whose
// Open Graph and Twitter Card tags let link previews show the quote, then
// redirects browsers to the app.
func (h *QuoteHandler) Page(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quoteService.GetQuote(r.Context(), chi.URLParam(r, "quoteID"))
	if err != nil && !errors.IsNotFound(err) {
		h.errs.Handle(w, r, err)
		return
	}

	body, err := h.renderPage(quote)
	if err != nil {
		h.logger.Error("Failed to render quote page", zap.Error(err))
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondHTML(w, http.StatusOK, body)
}

type quotePageData struct {
	Quote       *quotes.Quote
	Description string
	BaseURL     string
}

func (h *QuoteHandler) renderPage(quote *quotes.Quote) ([]byte, error) {
	data := quotePageData{
		Quote:   quote,
		BaseURL: h.appBaseURL,
	}
	if quote != nil {
		text := quote.Text
		if len(text) > 100 {
			text = text[:100] + "..."
		}
		data.Description = `"` + text + `" - ` + quote.Author
	}

	var buf bytes.Buffer
	if err := quotePageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// quotePageTemplate escapes all interpolated values; quote text is user
// controlled and must never reach the page raw.
var quotePageTemplate = template.Must(template.New("quotePage").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
{{if .Quote}}
    <title>{{.Quote.Author}} - Quote Me</title>
    <meta name="title" content="{{.Quote.Author}} - Quote Me">
    <meta name="description" content="{{.Description}}">

    <meta property="og:type" content="article">
    <meta property="og:url" content="{{.BaseURL}}/quote/{{.Quote.ID}}">
    <meta property="og:title" content="Quote by {{.Quote.Author}}">
    <meta property="og:description" content="{{.Description}}">
    <meta property="og:image" content="{{.BaseURL}}/images/preview.png">
    <meta property="og:site_name" content="Quote Me">

    <meta name="twitter:card" content="summary_large_image">
    <meta name="twitter:url" content="{{.BaseURL}}/quote/{{.Quote.ID}}">
    <meta name="twitter:title" content="Quote by {{.Quote.Author}}">
    <meta name="twitter:description" content="{{.Description}}">
    <meta name="twitter:image" content="{{.BaseURL}}/images/preview.png">

    <meta property="article:author" content="{{.Quote.Author}}">
{{range .Quote.Tags}}    <meta property="article:tag" content="{{.}}">
{{end}}{{else}}
    <title>Quote Me - Share Inspiring Quotes</title>
    <meta name="title" content="Quote Me - Share Inspiring Quotes">
    <meta name="description" content="Discover and share inspiring, witty, and wise quotes with Quote Me.">

    <meta property="og:type" content="website">
    <meta property="og:url" content="{{.BaseURL}}">
    <meta property="og:title" content="Quote Me - Share Inspiring Quotes">
    <meta property="og:description" content="Discover and share inspiring, witty, and wise quotes with Quote Me.">
    <meta property="og:image" content="{{.BaseURL}}/images/preview.png">
{{end}}
    <meta http-equiv="refresh" content="5;url={{.BaseURL}}">

    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 800px;
            text-align: center;
            background: rgba(255, 255, 255, 0.1);
            padding: 40px;
            border-radius: 20px;
            backdrop-filter: blur(10px);
        }
        .quote { font-size: 1.5em; font-style: italic; margin-bottom: 20px; line-height: 1.6; }
        .author { font-size: 1.2em; font-weight: bold; margin-bottom: 30px; }
        .tags { font-size: 0.9em; opacity: 0.9; margin-bottom: 30px; }
        .redirect { font-size: 0.9em; opacity: 0.8; }
        a { color: white; text-decoration: underline; }
    </style>
</head>
<body>
    <div class="container">
{{if .Quote}}        <div class="quote">"{{.Quote.Text}}"</div>
        <div class="author">&mdash; {{.Quote.Author}}</div>
{{if .Quote.Tags}}        <div class="tags">Tags: {{range $i, $t := .Quote.Tags}}{{if $i}}, {{end}}{{$t}}{{end}}</div>
{{end}}{{else}}        <div class="quote">Discover and share inspiring, witty, and wise quotes.</div>
{{end}}        <div class="redirect">
            Redirecting to Quote Me app...
            <a href="{{.BaseURL}}">Click here if not redirected</a>
        </div>
    </div>
</body>
</html>`))
