package openai

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	apperrors "quoteme-backend/pkg/errors"
)

// QuoteFinder implements ports.QuoteFinder on the OpenAI chat API
type QuoteFinder struct {
	client *Client
	logger *zap.Logger
}

// NewQuoteFinder creates a new model-backed quote finder
func NewQuoteFinder(client *Client, logger *zap.Logger) ports.QuoteFinder {
	return &QuoteFinder{client: client, logger: logger}
}

// FindByAuthor returns notable quotes attributed to an author, each with
// its source and an attribution confidence level.
func (f *QuoteFinder) FindByAuthor(ctx context.Context, author string, count int) ([]ports.FoundQuote, error) {
	system := fmt.Sprintf(`You are a knowledgeable assistant that finds authentic, verified quotes from famous authors.
When providing quotes, you must:
1. Only provide quotes that are actually attributable to the specified author
2. Include the source/reference where the quote can be found (book, speech, interview, etc.)
3. Provide context about when and where the quote was said/written
4. Format your response as a JSON array with exactly %d quotes`, count)

	user := fmt.Sprintf(`Find me %d authentic quotes by %s.
For each quote, provide:
- The exact quote text
- The source (book title, speech name, interview, etc.)
- The year (if known)
- Brief context about when/where it was said
- A confidence level (high/medium/low) based on how well-documented the attribution is

Return the response as a JSON array with this structure:
[
  {
    "quote": "The actual quote text",
    "source": "Where the quote is from",
    "year": "Year if known, or null",
    "context": "Brief context about the quote",
    "confidence": "high/medium/low"
  }
]`, count, author)

	reply, err := f.client.chat(ctx, system, user, 2000, 0.2)
	if err != nil {
		return nil, err
	}

	var found []ports.FoundQuote
	if err := json.Unmarshal([]byte(extractJSON(reply, '[', ']')), &found); err != nil {
		f.logger.Warn("Model returned unparseable quote list",
			zap.String("author", author),
			zap.Error(err),
		)
		return nil, apperrors.NewExternalError("openai", fmt.Errorf("unparseable candidate quotes"))
	}
	return found, nil
}
