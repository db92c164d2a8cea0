package quotes_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteme-backend/domain/quotes"
)

func TestNewQuote(t *testing.T) {
	q, err := quotes.NewQuote("  Be yourself  ", " Oscar Wilde ", []string{"wisdom", "life"}, "admin@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "Be yourself", q.Text)
	assert.Equal(t, "Oscar Wilde", q.Author)
	assert.Equal(t, []string{"wisdom", "life"}, q.Tags)
	assert.Equal(t, "admin@example.com", q.CreatedBy)
	assert.NotEmpty(t, q.CreatedAt)
	assert.Equal(t, q.CreatedAt, q.UpdatedAt)
}

func TestNewQuote_RequiresText(t *testing.T) {
	_, err := quotes.NewQuote("   ", "Oscar Wilde", nil, "admin")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quote text is required")
}

func TestNewQuote_RequiresAuthor(t *testing.T) {
	_, err := quotes.NewQuote("Be yourself", "", nil, "admin")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "author is required")
}

func TestQuote_ApplyUpdate(t *testing.T) {
	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin")
	require.NoError(t, err)

	err = q.ApplyUpdate("Be yourself; everyone else is taken", "Oscar Wilde", []string{"wisdom", "humor"}, "editor")

	require.NoError(t, err)
	assert.Equal(t, "Be yourself; everyone else is taken", q.Text)
	assert.Equal(t, []string{"wisdom", "humor"}, q.Tags)
	assert.Equal(t, "editor", q.UpdatedBy)
	assert.Equal(t, "admin", q.CreatedBy)
}

func TestQuote_ApplyUpdate_RejectsEmptyText(t *testing.T) {
	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", nil, "admin")
	require.NoError(t, err)

	err = q.ApplyUpdate("", "Oscar Wilde", nil, "editor")

	assert.Error(t, err)
	assert.Equal(t, "Be yourself", q.Text)
}

func TestQuote_NormalizedText_TruncatesLongQuotes(t *testing.T) {
	long := strings.Repeat("abcde ", 30)
	q, err := quotes.NewQuote(long, "Anonymous", nil, "admin")
	require.NoError(t, err)

	assert.Len(t, q.NormalizedText(), 100)
}

func TestQuote_HasTag(t *testing.T) {
	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin")
	require.NoError(t, err)

	assert.True(t, q.HasTag("wisdom"))
	assert.False(t, q.HasTag("humor"))
}

func TestCleanTags(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{"nil input", nil, []string{}, false},
		{"trims and dedupes", []string{" wisdom ", "wisdom", "life"}, []string{"wisdom", "life"}, false},
		{"rejects empty tag", []string{"wisdom", "  "}, nil, true},
		{"rejects overlong tag", []string{strings.Repeat("x", quotes.MaxTagLength + 1)}, nil, true},
		{"keeps max length tag", []string{strings.Repeat("x", quotes.MaxTagLength)}, []string{strings.Repeat("x", quotes.MaxTagLength)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := quotes.CleanTags(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagDiff(t *testing.T) {
	toRemove, toAdd := quotes.TagDiff(
		[]string{"wisdom", "life", "humor"},
		[]string{"life", "stoicism"},
	)

	assert.Equal(t, []string{"wisdom", "humor"}, toRemove)
	assert.Equal(t, []string{"stoicism"}, toAdd)
}

func TestTagDiff_NoChanges(t *testing.T) {
	toRemove, toAdd := quotes.TagDiff([]string{"wisdom"}, []string{"wisdom"})

	assert.Empty(t, toRemove)
	assert.Empty(t, toAdd)
}

func TestProposal_Lifecycle(t *testing.T) {
	p, err := quotes.NewProposal("Stay hungry", "Steve Jobs", []string{"ambition"}, "from 2005 speech", "fan@example.com", "A Fan")
	require.NoError(t, err)
	assert.Equal(t, quotes.ProposalPending, p.Status)

	err = p.Review(true, "admin@example.com", "great find")
	require.NoError(t, err)
	assert.Equal(t, quotes.ProposalApproved, p.Status)
	assert.Equal(t, "admin@example.com", p.ReviewedBy)

	q, err := p.Promote("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Stay hungry", q.Text)
	assert.Equal(t, "fan@example.com", q.ProposedBy)
	assert.Equal(t, "admin@example.com", q.ApprovedBy)
}

func TestProposal_CannotReviewTwice(t *testing.T) {
	p, err := quotes.NewProposal("Stay hungry", "Steve Jobs", nil, "", "fan@example.com", "A Fan")
	require.NoError(t, err)
	require.NoError(t, p.Review(false, "admin", "duplicate"))

	err = p.Review(true, "admin", "")

	assert.Error(t, err)
	assert.Equal(t, quotes.ProposalRejected, p.Status)
}

func TestProposal_PromoteRequiresApproval(t *testing.T) {
	p, err := quotes.NewProposal("Stay hungry", "Steve Jobs", nil, "", "fan@example.com", "A Fan")
	require.NoError(t, err)

	_, err = p.Promote("admin")

	assert.Error(t, err)
}

func TestImageJob_Transitions(t *testing.T) {
	j := quotes.NewImageJob("quote-1", "admin@example.com")
	assert.Equal(t, quotes.JobQueued, j.Status)
	assert.False(t, j.Done())

	require.NoError(t, j.Start())
	assert.Equal(t, quotes.JobProcessing, j.Status)

	require.NoError(t, j.Complete("https://cdn.example.com/img.png"))
	assert.Equal(t, quotes.JobCompleted, j.Status)
	assert.True(t, j.Done())
	assert.Equal(t, "https://cdn.example.com/img.png", j.ImageURL)
}

func TestImageJob_CannotCompleteBeforeStart(t *testing.T) {
	j := quotes.NewImageJob("quote-1", "admin")

	err := j.Complete("https://cdn.example.com/img.png")

	assert.Error(t, err)
	assert.Equal(t, quotes.JobQueued, j.Status)
}

func TestImageJob_FailIsTerminal(t *testing.T) {
	j := quotes.NewImageJob("quote-1", "admin")
	require.NoError(t, j.Start())

	j.Fail("image provider timeout")

	assert.Equal(t, quotes.JobFailed, j.Status)
	assert.Equal(t, "image provider timeout", j.Error)
	assert.True(t, j.Done())
}
