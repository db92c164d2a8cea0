package quotes

import (
	"fmt"
	"regexp"
	"strings"
)

// Duplicate detection thresholds. A candidate is flagged when the normalized
// texts clear one of these bars; see CheckDuplicate.
const (
	similarQuoteSameAuthor = 0.90
	sameQuoteSimilarAuthor = 0.85
	bothSimilarQuote       = 0.95
	bothSimilarAuthor      = 0.90
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var normalizer = strings.NewReplacer(
	"\n", " ",
	"\t", " ",
	"“", `"`, "”", `"`, // smart quotes
	"‘", "'", "’", "'", // smart apostrophes
	"—", "-", "–", "-", // em/en dashes
	"…", "...",
)

// Normalize prepares text for soft comparison: lowercase, straightened
// punctuation, collapsed whitespace, trailing periods stripped.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(strings.TrimSpace(text))
	text = normalizer.Replace(text)
	text = strings.TrimRight(text, ".")
	return whitespaceRE.ReplaceAllString(text, " ")
}

// Similarity computes a ratio in [0,1] between two normalized strings.
// Near-equal lengths use positional character comparison; otherwise a
// Dice-style overlap over words longer than two characters.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	la, lb := len(a), len(b)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}

	if diff <= 3 {
		maxLen := la
		if lb > maxLen {
			maxLen = lb
		}
		matches := 0
		for i := 0; i < maxLen; i++ {
			if i < la && i < lb && a[i] == b[i] {
				matches++
			}
		}
		return float64(matches) / float64(maxLen)
	}

	wordsA := strings.Split(a, " ")
	wordsB := strings.Split(b, " ")
	inB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		inB[w] = struct{}{}
	}

	common := 0
	for _, w := range wordsA {
		if len(w) <= 2 {
			continue
		}
		if _, ok := inB[w]; ok {
			common++
		}
	}

	total := len(wordsA) + len(wordsB)
	if total == 0 {
		return 0.0
	}
	return 2.0 * float64(common) / float64(total)
}

// DuplicateMatch describes why an existing quote was flagged as a duplicate
// of a candidate.
type DuplicateMatch struct {
	Quote            *Quote  `json:"quote"`
	QuoteSimilarity  float64 `json:"quote_similarity"`
	AuthorSimilarity float64 `json:"author_similarity"`
	Reason           string  `json:"reason"`
}

// CheckDuplicate compares a candidate text/author pair against an existing
// quote and returns a match when one of the duplicate rules fires.
func CheckDuplicate(text, author string, existing *Quote) *DuplicateMatch {
	normText := Normalize(text)
	normAuthor := Normalize(author)
	existText := Normalize(existing.Text)
	existAuthor := Normalize(existing.Author)

	qSim := Similarity(normText, existText)
	aSim := Similarity(normAuthor, existAuthor)

	var reason string
	switch {
	case normText == existText && normAuthor == existAuthor:
		reason = "exact_duplicate"
	case qSim >= similarQuoteSameAuthor && normAuthor == existAuthor:
		reason = fmt.Sprintf("similar_quote_same_author_%.2f", qSim)
	case normText == existText && aSim >= sameQuoteSimilarAuthor:
		reason = fmt.Sprintf("same_quote_similar_author_%.2f", aSim)
	case qSim >= bothSimilarQuote && aSim >= bothSimilarAuthor:
		reason = fmt.Sprintf("both_similar_q%.2f_a%.2f", qSim, aSim)
	default:
		return nil
	}

	return &DuplicateMatch{
		Quote:            existing,
		QuoteSimilarity:  qSim,
		AuthorSimilarity: aSim,
		Reason:           reason,
	}
}

// FindDuplicates scans a quote collection for duplicates of the candidate.
func FindDuplicates(text, author string, existing []*Quote) []*DuplicateMatch {
	var matches []*DuplicateMatch
	for _, q := range existing {
		if m := CheckDuplicate(text, author, q); m != nil {
			matches = append(matches, m)
		}
	}
	return matches
}
