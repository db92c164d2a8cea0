package quotes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"quoteme-backend/pkg/errors"
)

// Proposal statuses.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// Proposal is a user-submitted quote awaiting admin review.
type Proposal struct {
	ID            string   `json:"id"`
	Text          string   `json:"quote"`
	Author        string   `json:"author"`
	Tags          []string `json:"tags,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	ProposerEmail string   `json:"proposer_email"`
	ProposerName  string   `json:"proposer_name"`
	Status        string   `json:"status"`
	AdminFeedback string   `json:"admin_feedback,omitempty"`
	ReviewedBy    string   `json:"reviewed_by,omitempty"`
	CreatedAt     string   `json:"created_date"`
	UpdatedAt     string   `json:"updated_date"`
}

// NewProposal creates a pending proposal.
func NewProposal(text, author string, tags []string, notes, proposerEmail, proposerName string) (*Proposal, error) {
	text = strings.TrimSpace(text)
	author = strings.TrimSpace(author)

	if text == "" {
		return nil, errors.NewValidationError("quote text is required")
	}
	if author == "" {
		return nil, errors.NewValidationError("author is required")
	}

	cleanTags, err := CleanTags(tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return &Proposal{
		ID:            uuid.New().String(),
		Text:          text,
		Author:        author,
		Tags:          cleanTags,
		Notes:         strings.TrimSpace(notes),
		ProposerEmail: proposerEmail,
		ProposerName:  proposerName,
		Status:        ProposalPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Review transitions the proposal to approved or rejected. Only pending
// proposals can be reviewed.
func (p *Proposal) Review(approve bool, reviewedBy, feedback string) error {
	if p.Status != ProposalPending {
		return errors.NewConflictError("proposal has already been reviewed")
	}

	if approve {
		p.Status = ProposalApproved
	} else {
		p.Status = ProposalRejected
	}
	p.ReviewedBy = reviewedBy
	p.AdminFeedback = feedback
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return nil
}

// Promote turns an approved proposal into a quote credited to the approving
// admin, with the proposer recorded on the quote.
func (p *Proposal) Promote(approvedBy string) (*Quote, error) {
	if p.Status != ProposalApproved {
		return nil, errors.NewConflictError("only approved proposals can be promoted")
	}

	q, err := NewQuote(p.Text, p.Author, p.Tags, approvedBy)
	if err != nil {
		return nil, err
	}
	q.ProposedBy = p.ProposerEmail
	q.ApprovedBy = approvedBy
	return q, nil
}
