package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
)

// ProposalService handles user-submitted quotes and their review flow.
type ProposalService struct {
	proposalRepo ports.ProposalRepository
	quoteService *QuoteService
	mailer       ports.EmailSender
	logger       *zap.Logger
}

// NewProposalService creates a new proposal service
func NewProposalService(
	proposalRepo ports.ProposalRepository,
	quoteService *QuoteService,
	mailer ports.EmailSender,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		proposalRepo: proposalRepo,
		quoteService: quoteService,
		mailer:       mailer,
		logger:       logger,
	}
}

// SubmitProposal records a new pending proposal, annotated with any
// duplicate matches so reviewers see them up front.
func (s *ProposalService) SubmitProposal(ctx context.Context, text, author string, tags []string, notes, proposerEmail, proposerName string) (*quotes.Proposal, []*quotes.DuplicateMatch, error) {
	proposal, err := quotes.NewProposal(text, author, tags, notes, proposerEmail, proposerName)
	if err != nil {
		return nil, nil, err
	}

	matches, err := s.quoteService.FindDuplicates(ctx, text, author)
	if err != nil {
		s.logger.Warn("duplicate check failed for proposal", zap.Error(err))
		matches = nil
	}

	if err := s.proposalRepo.Save(ctx, proposal); err != nil {
		return nil, nil, err
	}

	s.logger.Info("Proposal submitted",
		zap.String("proposalID", proposal.ID),
		zap.String("proposer", proposerEmail),
		zap.Int("duplicateMatches", len(matches)),
	)
	return proposal, matches, nil
}

// ListProposals returns proposals, filtered by status when given.
func (s *ProposalService) ListProposals(ctx context.Context, status string) ([]*quotes.Proposal, error) {
	return s.proposalRepo.ListByStatus(ctx, status)
}

// GetProposal returns one proposal.
func (s *ProposalService) GetProposal(ctx context.Context, id string) (*quotes.Proposal, error) {
	return s.proposalRepo.GetByID(ctx, id)
}

// ReviewProposal approves or rejects a pending proposal. Approval promotes
// it to a published quote; either way the proposer is notified.
func (s *ProposalService) ReviewProposal(ctx context.Context, id string, approve bool, reviewedBy, feedback string) (*quotes.Proposal, *quotes.Quote, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := proposal.Review(approve, reviewedBy, feedback); err != nil {
		return nil, nil, err
	}

	var quote *quotes.Quote
	if approve {
		promoted, err := proposal.Promote(reviewedBy)
		if err != nil {
			return nil, nil, err
		}
		// Promotion bypasses the duplicate gate; the reviewer saw matches
		// at submission time.
		saved, err := s.quoteService.CreateQuote(ctx, promoted.Text, promoted.Author, promoted.Tags, reviewedBy, true)
		if err != nil {
			return nil, nil, err
		}
		saved.ProposedBy = proposal.ProposerEmail
		saved.ApprovedBy = reviewedBy
		quote = saved
	}

	if err := s.proposalRepo.Save(ctx, proposal); err != nil {
		return nil, nil, err
	}

	s.notifyProposer(ctx, proposal)

	s.logger.Info("Proposal reviewed",
		zap.String("proposalID", proposal.ID),
		zap.String("status", proposal.Status),
		zap.String("reviewedBy", reviewedBy),
	)
	return proposal, quote, nil
}

// DeleteProposal removes a proposal record.
func (s *ProposalService) DeleteProposal(ctx context.Context, id string) error {
	if _, err := s.proposalRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.proposalRepo.Delete(ctx, id)
}

func (s *ProposalService) notifyProposer(ctx context.Context, p *quotes.Proposal) {
	if s.mailer == nil || p.ProposerEmail == "" {
		return
	}

	var subject, verdict string
	if p.Status == quotes.ProposalApproved {
		subject = "Your quote was published"
		verdict = "Your proposed quote has been approved and is now live."
	} else {
		subject = "About your quote proposal"
		verdict = "Your proposed quote was not accepted this time."
	}

	body := fmt.Sprintf(`<html><body style="font-family: Georgia, serif; color: #333;">
<p>%s</p>
<blockquote style="border-left: 3px solid #ccc; padding-left: 12px; font-style: italic;">%s<br/>&mdash; %s</blockquote>`,
		verdict, p.Text, p.Author)
	if p.AdminFeedback != "" {
		body += fmt.Sprintf("<p>Reviewer notes: %s</p>", p.AdminFeedback)
	}
	body += "</body></html>"

	text := fmt.Sprintf("%s\n\n\"%s\"\n- %s", verdict, p.Text, p.Author)
	if p.AdminFeedback != "" {
		text += "\n\nReviewer notes: " + p.AdminFeedback
	}

	if err := s.mailer.Send(ctx, &ports.Email{
		To:       p.ProposerEmail,
		Subject:  subject,
		HTMLBody: body,
		TextBody: text,
	}); err != nil {
		s.logger.Warn("failed to notify proposer",
			zap.Error(err),
			zap.String("proposalID", p.ID),
		)
	}
}
