package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/domain/quotes"
)

func newProposalService(t *testing.T) (*ProposalService, *QuoteService, *fakeProposalRepo, *fakeMailer) {
	t.Helper()
	quoteSvc, _, _, _ := newQuoteService(t)
	proposalRepo := newFakeProposalRepo()
	mailer := newFakeMailer()
	svc := NewProposalService(proposalRepo, quoteSvc, mailer, zap.NewNop())
	return svc, quoteSvc, proposalRepo, mailer
}

func TestProposalService_SubmitProposal(t *testing.T) {
	svc, _, repo, _ := newProposalService(t)

	p, matches, err := svc.SubmitProposal(context.Background(), "Stay hungry", "Steve Jobs", []string{"ambition"}, "", "fan@example.com", "A Fan")

	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, quotes.ProposalPending, p.Status)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", stored.ProposerEmail)
}

func TestProposalService_SubmitProposal_ReportsDuplicates(t *testing.T) {
	svc, quoteSvc, _, _ := newProposalService(t)
	_, err := quoteSvc.CreateQuote(context.Background(), "Stay hungry", "Steve Jobs", nil, "admin", false)
	require.NoError(t, err)

	p, matches, err := svc.SubmitProposal(context.Background(), "Stay hungry", "Steve Jobs", nil, "", "fan@example.com", "A Fan")

	require.NoError(t, err)
	assert.Equal(t, quotes.ProposalPending, p.Status)
	require.Len(t, matches, 1)
	assert.Equal(t, "exact_duplicate", matches[0].Reason)
}

func TestProposalService_ApprovePublishesQuote(t *testing.T) {
	svc, quoteSvc, _, mailer := newProposalService(t)
	p, _, err := svc.SubmitProposal(context.Background(), "Stay hungry", "Steve Jobs", []string{"ambition"}, "", "fan@example.com", "A Fan")
	require.NoError(t, err)

	reviewed, quote, err := svc.ReviewProposal(context.Background(), p.ID, true, "admin@example.com", "great find")

	require.NoError(t, err)
	assert.Equal(t, quotes.ProposalApproved, reviewed.Status)
	require.NotNil(t, quote)
	assert.Equal(t, "Stay hungry", quote.Text)
	assert.Equal(t, "fan@example.com", quote.ProposedBy)

	total, err := quoteSvc.TotalQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "fan@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "published")
}

func TestProposalService_RejectNotifiesProposer(t *testing.T) {
	svc, quoteSvc, _, mailer := newProposalService(t)
	p, _, err := svc.SubmitProposal(context.Background(), "Stay hungry", "Steve Jobs", nil, "", "fan@example.com", "A Fan")
	require.NoError(t, err)

	reviewed, quote, err := svc.ReviewProposal(context.Background(), p.ID, false, "admin@example.com", "duplicate of an existing quote")

	require.NoError(t, err)
	assert.Equal(t, quotes.ProposalRejected, reviewed.Status)
	assert.Nil(t, quote)

	total, err := quoteSvc.TotalQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].TextBody, "duplicate of an existing quote")
}

func TestProposalService_CannotReviewTwice(t *testing.T) {
	svc, _, _, _ := newProposalService(t)
	p, _, err := svc.SubmitProposal(context.Background(), "Stay hungry", "Steve Jobs", nil, "", "fan@example.com", "A Fan")
	require.NoError(t, err)
	_, _, err = svc.ReviewProposal(context.Background(), p.ID, false, "admin", "")
	require.NoError(t, err)

	_, _, err = svc.ReviewProposal(context.Background(), p.ID, true, "admin", "")

	assert.Error(t, err)
}
