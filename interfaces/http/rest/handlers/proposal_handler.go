package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
	"quoteme-backend/pkg/utils"
)

// ProposalHandler serves the public quote proposal endpoint
type ProposalHandler struct {
	proposalService *services.ProposalService
	errs            *errors.ErrorHandler
	logger          *zap.Logger
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *services.ProposalService, errs *errors.ErrorHandler, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		errs:            errs,
		logger:          logger,
	}
}

// SubmitProposalRequest represents the request body for proposing a quote
type SubmitProposalRequest struct {
	Quote         string   `json:"quote" validate:"required"`
	Author        string   `json:"author" validate:"required"`
	Tags          []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=50"`
	Notes         string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
	ProposerEmail string   `json:"proposer_email" validate:"required,email"`
	ProposerName  string   `json:"proposer_name,omitempty" validate:"omitempty,max=100"`
}

// SubmitProposalResponse carries the stored proposal plus any quotes
// already in the catalog that look like the same quote.
type SubmitProposalResponse struct {
	Proposal   interface{} `json:"proposal"`
	Duplicates interface{} `json:"possible_duplicates,omitempty"`
}

// Submit handles POST /proposals
func (h *ProposalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitProposalRequest
	if err := common.ParseJSONBody(r, &req, 16*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	proposal, duplicates, err := h.proposalService.SubmitProposal(
		r.Context(), req.Quote, req.Author, req.Tags, req.Notes, req.ProposerEmail, req.ProposerName,
	)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	resp := SubmitProposalResponse{Proposal: proposal}
	if len(duplicates) > 0 {
		resp.Duplicates = duplicates
	}
	common.RespondJSON(w, http.StatusCreated, resp)
}
