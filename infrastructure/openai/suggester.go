package openai

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	apperrors "quoteme-backend/pkg/errors"
)

// TagSuggester implements ports.TagSuggester on the OpenAI chat API
type TagSuggester struct {
	client *Client
	logger *zap.Logger
}

// NewTagSuggester creates a new model-backed tag suggester
func NewTagSuggester(client *Client, logger *zap.Logger) ports.TagSuggester {
	return &TagSuggester{client: client, logger: logger}
}

const suggesterSystemPrompt = "You are a professional quote categorization assistant. Always return valid JSON arrays of strings."

// SuggestTags returns candidate tags for a quote, drawn from the existing
// tag vocabulary so the model cannot invent new categories.
func (s *TagSuggester) SuggestTags(ctx context.Context, text, author string, existingTags []string) ([]string, error) {
	vocabulary := "None"
	if len(existingTags) > 0 {
		capped := existingTags
		if len(capped) > 20 {
			capped = capped[:20]
		}
		vocabulary = strings.Join(capped, ", ")
	}

	prompt := fmt.Sprintf(`You are an expert at categorizing inspirational and motivational quotes with relevant, professional tags.

Quote: %q
Author: %s

Existing tags in the system: %s

Instructions:
1. Generate 1-5 highly relevant tags for this quote
2. Focus on themes, emotions, concepts, and topics
3. Choose only from the existing tags. Do not make any new ones.

Return only a JSON array of tag strings, nothing else.
Example: ["Wisdom", "Personal Growth", "Humor"]`, text, author, vocabulary)

	reply, err := s.client.chat(ctx, suggesterSystemPrompt, prompt, 200, 0.3)
	if err != nil {
		return nil, err
	}

	var tags []string
	if err := json.Unmarshal([]byte(extractJSON(reply, '[', ']')), &tags); err != nil {
		s.logger.Warn("Model returned unparseable tag list",
			zap.String("reply", reply),
			zap.Error(err),
		)
		return nil, apperrors.NewExternalError("openai", fmt.Errorf("unparseable tag suggestions"))
	}
	return tags, nil
}

// extractJSON strips prose and code fences the model sometimes wraps
// around its JSON payload.
func extractJSON(reply string, opening, closing byte) string {
	start := strings.IndexByte(reply, opening)
	end := strings.LastIndexByte(reply, closing)
	if start < 0 || end <= start {
		return reply
	}
	return reply[start : end+1]
}
