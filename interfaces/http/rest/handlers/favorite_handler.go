package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/pkg/auth"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
	"quoteme-backend/pkg/utils"
)

// FavoriteHandler serves the per-user favorites endpoints
type FavoriteHandler struct {
	favoriteService *services.FavoriteService
	errs            *errors.ErrorHandler
	logger          *zap.Logger
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteService *services.FavoriteService, errs *errors.ErrorHandler, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		errs:            errs,
		logger:          logger,
	}
}

// AddFavoriteRequest represents the request body for saving a favorite
type AddFavoriteRequest struct {
	QuoteID string `json:"quote_id" validate:"required"`
}

// List handles GET /favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errs.Handle(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	favorites, err := h.favoriteService.ListFavorites(r.Context(), user.UserID)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, favorites)
}

// Add handles POST /favorites
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errs.Handle(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	var req AddFavoriteRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	favorite, err := h.favoriteService.AddFavorite(r.Context(), user.UserID, req.QuoteID)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, favorite)
}

// Remove handles DELETE /favorites/{quoteID}
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errs.Handle(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.favoriteService.RemoveFavorite(r.Context(), user.UserID, chi.URLParam(r, "quoteID")); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}

// Check handles GET /favorites/{quoteID}
func (h *FavoriteHandler) Check(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errs.Handle(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	exists, err := h.favoriteService.IsFavorite(r.Context(), user.UserID, chi.URLParam(r, "quoteID"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"is_favorite": exists})
}
