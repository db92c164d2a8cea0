package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/pkg/auth"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
	"quoteme-backend/pkg/utils"
)

// AdminHandler serves the catalog management endpoints. Every route behind
// it requires membership in the admins group.
type AdminHandler struct {
	quoteService    *services.QuoteService
	tagService      *services.TagService
	proposalService *services.ProposalService
	exportService   *services.ExportService
	userService     *services.UserService
	subscriptions   *services.SubscriptionService
	delivery        *services.DeliveryService
	finder          *services.AuthorQuoteLookup
	errs            *errors.ErrorHandler
	logger          *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	quoteService *services.QuoteService,
	tagService *services.TagService,
	proposalService *services.ProposalService,
	exportService *services.ExportService,
	userService *services.UserService,
	subscriptions *services.SubscriptionService,
	delivery *services.DeliveryService,
	finder *services.AuthorQuoteLookup,
	errs *errors.ErrorHandler,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		quoteService:    quoteService,
		tagService:      tagService,
		proposalService: proposalService,
		exportService:   exportService,
		userService:     userService,
		subscriptions:   subscriptions,
		delivery:        delivery,
		finder:          finder,
		errs:            errs,
		logger:          logger,
	}
}

// CreateQuoteRequest represents the request body for creating a quote
type CreateQuoteRequest struct {
	Quote  string   `json:"quote" validate:"required"`
	Author string   `json:"author" validate:"required"`
	Tags   []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=50"`
	Force  bool     `json:"force,omitempty"`
}

// UpdateQuoteRequest represents the request body for updating a quote
type UpdateQuoteRequest struct {
	Quote  string   `json:"quote" validate:"required"`
	Author string   `json:"author" validate:"required"`
	Tags   []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=50"`
}

// ListQuotes handles GET /admin/quotes with cursor pagination. Optional
// tag and author query parameters narrow the listing.
func (h *AdminHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageRequest(r)
	startKey, err := common.DecodePageToken(page.Token)
	if err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid page token"))
		return
	}

	items, nextKey, err := h.quoteService.ListQuotes(
		r.Context(),
		r.URL.Query().Get("tag"),
		r.URL.Query().Get("author"),
		page.Limit,
		startKey,
	)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	nextToken, err := common.EncodePageToken(nextKey)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, common.NewPage(items, len(items), nextToken))
}

// CreateQuote handles POST /admin/quotes. Near-duplicate quotes are
// rejected with the matches attached unless force is set.
func (h *AdminHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := common.ParseJSONBody(r, &req, 32*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	quote, err := h.quoteService.CreateQuote(r.Context(), req.Quote, req.Author, req.Tags, adminID(r), req.Force)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, quote)
}

// UpdateQuote handles PUT /admin/quotes/{quoteID}
func (h *AdminHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuoteRequest
	if err := common.ParseJSONBody(r, &req, 32*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	quote, err := h.quoteService.UpdateQuote(r.Context(), chi.URLParam(r, "quoteID"), req.Quote, req.Author, req.Tags, adminID(r))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, quote)
}

// DeleteQuote handles DELETE /admin/quotes/{quoteID}
func (h *AdminHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	if err := h.quoteService.DeleteQuote(r.Context(), chi.URLParam(r, "quoteID")); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "quote deleted"})
}

// Search handles GET /admin/search?q=
func (h *AdminHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.quoteService.SearchQuotes(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, results)
}

// CheckDuplicatesRequest represents the request body for a duplicate probe
type CheckDuplicatesRequest struct {
	Quote  string `json:"quote" validate:"required"`
	Author string `json:"author" validate:"required"`
}

// CheckDuplicates handles POST /admin/check-duplicates
func (h *AdminHandler) CheckDuplicates(w http.ResponseWriter, r *http.Request) {
	var req CheckDuplicatesRequest
	if err := common.ParseJSONBody(r, &req, 32*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	matches, err := h.quoteService.FindDuplicates(r.Context(), req.Quote, req.Author)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// Authors handles GET /admin/authors
func (h *AdminHandler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.quoteService.AuthorStats(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, authors)
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.quoteService.TotalQuotes(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	tags, err := h.tagService.ListTags(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"total_quotes": total,
		"total_tags":   len(tags),
	})
}

// CreateTagRequest represents the request body for creating a tag
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// RenameTagRequest represents the request body for renaming a tag
type RenameTagRequest struct {
	NewName string `json:"new_name" validate:"required,max=50"`
}

// CreateTag handles POST /admin/tags
func (h *AdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	tag, err := h.tagService.CreateTag(r.Context(), req.Name, adminID(r))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, tag)
}

// RenameTag handles PUT /admin/tags/{tag}
func (h *AdminHandler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req RenameTagRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.tagService.RenameTag(r.Context(), chi.URLParam(r, "tag"), req.NewName); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "tag renamed"})
}

// DeleteTag handles DELETE /admin/tags/{tag}. force=true detaches the tag
// from its quotes first.
func (h *AdminHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if err := h.tagService.DeleteTag(r.Context(), chi.URLParam(r, "tag"), force); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "tag deleted"})
}

// DeleteUnusedTags handles DELETE /admin/tags/unused
func (h *AdminHandler) DeleteUnusedTags(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tagService.DeleteUnusedTags(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// GenerateTagsRequest represents the request body for tag suggestions
type GenerateTagsRequest struct {
	Quote  string `json:"quote" validate:"required"`
	Author string `json:"author,omitempty"`
}

// GenerateTags handles POST /admin/generate-tags
func (h *AdminHandler) GenerateTags(w http.ResponseWriter, r *http.Request) {
	var req GenerateTagsRequest
	if err := common.ParseJSONBody(r, &req, 32*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	tags, err := h.tagService.SuggestTags(r.Context(), req.Quote, req.Author)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

// AuthorQuotes handles GET /admin/author-quotes?author=&limit=. It asks
// the language model for well-documented quotes by the author so admins
// can grow the catalog quickly.
func (h *AdminHandler) AuthorQuotes(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")
	if author == "" {
		h.errs.Handle(w, r, errors.NewValidationError("author parameter is required"))
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			h.errs.Handle(w, r, errors.NewValidationError("limit must be between 1 and 20"))
			return
		}
		limit = parsed
	}

	found, err := h.finder.Lookup(r.Context(), author, limit)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"quotes": found})
}

// ListProposals handles GET /admin/proposals?status=
func (h *AdminHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.proposalService.ListProposals(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, proposals)
}

// ReviewProposalRequest represents the request body for a proposal review
type ReviewProposalRequest struct {
	Approve  bool   `json:"approve"`
	Feedback string `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

// ReviewProposal handles POST /admin/proposals/{proposalID}/review
func (h *AdminHandler) ReviewProposal(w http.ResponseWriter, r *http.Request) {
	var req ReviewProposalRequest
	if err := common.ParseJSONBody(r, &req, 16*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	proposal, quote, err := h.proposalService.ReviewProposal(r.Context(), chi.URLParam(r, "proposalID"), req.Approve, adminID(r), req.Feedback)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	resp := map[string]interface{}{"proposal": proposal}
	if quote != nil {
		resp["quote"] = quote
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// DeleteProposal handles DELETE /admin/proposals/{proposalID}
func (h *AdminHandler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	if err := h.proposalService.DeleteProposal(r.Context(), chi.URLParam(r, "proposalID")); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "proposal deleted"})
}

// Export handles GET /admin/export. The full catalog lands in the export
// bucket and the response carries a short-lived download link.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.exportService.ExportAll(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ListUsers handles GET /admin/users with Cognito pagination
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	users, nextToken, err := h.userService.ListUsers(r.Context(), limit, r.URL.Query().Get("next_token"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	resp := map[string]interface{}{"users": users}
	if nextToken != "" {
		resp["next_token"] = nextToken
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /admin/users/{username}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

// ListSubscriptions handles GET /admin/subscriptions
func (h *AdminHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.ListSubscriptions(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, subs)
}

// TestNuggetRequest represents the request body for a test delivery
type TestNuggetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendTestNugget handles POST /admin/test-nugget
func (h *AdminHandler) SendTestNugget(w http.ResponseWriter, r *http.Request) {
	var req TestNuggetRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.delivery.SendTestNugget(r.Context(), req.Email); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "test nugget sent"})
}

// adminID returns the acting admin's user ID for audit fields
func adminID(r *http.Request) string {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return ""
	}
	return user.UserID
}
