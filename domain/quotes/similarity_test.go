package quotes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quoteme-backend/domain/quotes"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Be Yourself", "be yourself"},
		{"smart quotes", "“Hello” and ‘world’", "\"hello\" and 'world'"},
		{"em and en dashes", "life — a journey – begins", "life - a journey - begins"},
		{"ellipsis character", "to be…", "to be..."},
		{"collapses whitespace", "too   many\t spaces", "too many spaces"},
		{"strips trailing periods", "the end.", "the end"},
		{"keeps internal punctuation", "don't stop, believing!", "don't stop, believing!"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quotes.Normalize(tt.in))
		})
	}
}

func TestSimilarity_IdenticalText(t *testing.T) {
	assert.Equal(t, 1.0, quotes.Similarity("be yourself", "be yourself"))
}

func TestSimilarity_CloseLengthsUsePositionalCompare(t *testing.T) {
	// One differing char out of eleven.
	score := quotes.Similarity("hello world", "hello worle")
	assert.InDelta(t, 10.0/11.0, score, 0.001)
}

func TestSimilarity_DifferentLengthsUseWordOverlap(t *testing.T) {
	a := "the quick brown fox jumps over the lazy dog"
	b := "the quick brown fox"
	score := quotes.Similarity(a, b)
	assert.Greater(t, score, 0.5)
	assert.Less(t, score, 1.0)
}

func TestSimilarity_NoOverlap(t *testing.T) {
	assert.Equal(t, 0.0, quotes.Similarity("cat", "a completely unrelated sentence about nothing"))
}

func TestSimilarity_EmptyStrings(t *testing.T) {
	assert.Equal(t, 0.0, quotes.Similarity("", "something"))
	assert.Equal(t, 1.0, quotes.Similarity("", ""))
}

func TestCheckDuplicate_ExactMatch(t *testing.T) {
	existing := &quotes.Quote{Text: "Be yourself.", Author: "Oscar Wilde"}

	match := quotes.CheckDuplicate("be yourself", "Oscar Wilde", existing)

	assert.NotNil(t, match)
	assert.Equal(t, "exact_duplicate", match.Reason)
}

func TestCheckDuplicate_SimilarQuoteSameAuthor(t *testing.T) {
	existing := &quotes.Quote{
		Text:   "Be yourself; everyone else is already taken",
		Author: "Oscar Wilde",
	}

	match := quotes.CheckDuplicate("Be yourself; everyone else is already taken!", "Oscar Wilde", existing)

	assert.NotNil(t, match)
	assert.Contains(t, match.Reason, "similar_quote_same_author")
}

func TestCheckDuplicate_DifferentAuthorNotFlagged(t *testing.T) {
	existing := &quotes.Quote{
		Text:   "The only thing we have to fear is fear itself",
		Author: "Franklin D. Roosevelt",
	}

	match := quotes.CheckDuplicate("Stay hungry, stay foolish", "Steve Jobs", existing)

	assert.Nil(t, match)
}

func TestCheckDuplicate_SimilarAuthorSameQuote(t *testing.T) {
	existing := &quotes.Quote{
		Text:   "Imagination is more important than knowledge",
		Author: "Albert Einstein",
	}

	match := quotes.CheckDuplicate("Imagination is more important than knowledge", "Albert Einstien", existing)

	assert.NotNil(t, match)
	assert.Contains(t, match.Reason, "same_quote_similar_author")
}

func TestFindDuplicates_ReturnsAllMatches(t *testing.T) {
	existing := []*quotes.Quote{
		{ID: "1", Text: "Be yourself", Author: "Oscar Wilde"},
		{ID: "2", Text: "Stay hungry, stay foolish", Author: "Steve Jobs"},
		{ID: "3", Text: "Be yourself.", Author: "Oscar Wilde"},
	}

	matches := quotes.FindDuplicates("be yourself", "oscar wilde", existing)

	assert.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].Quote.ID)
	assert.Equal(t, "3", matches[1].Quote.ID)
}
