package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
	"quoteme-backend/pkg/utils"
)

// SubscriptionHandler serves the daily nugget subscription endpoints
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	errs                *errors.ErrorHandler
	logger              *zap.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, errs *errors.ErrorHandler, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		errs:                errs,
		logger:              logger,
	}
}

// SubscribeRequest represents the request body for signing up
type SubscribeRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Timezone      string `json:"timezone,omitempty"`
	PreferredHour *int   `json:"preferred_hour,omitempty" validate:"omitempty,min=0,max=23"`
}

// Subscribe handles POST /subscriptions
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := common.ParseJSONBody(r, &req, 4*1024); err != nil {
		h.errs.Handle(w, r, errors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	hour := quotes.DefaultPreferredHour
	if req.PreferredHour != nil {
		hour = *req.PreferredHour
	}

	sub, err := h.subscriptionService.Subscribe(r.Context(), req.Email, req.Timezone, hour)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, sub)
}

// Get handles GET /subscriptions/{email}
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptionService.GetSubscription(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, sub)
}

// Delete handles DELETE /subscriptions/{email}
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptionService.Unsubscribe(r.Context(), chi.URLParam(r, "email")); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}

// Unsubscribe handles GET /unsubscribe?email=. This is the link embedded
// in nugget email, so the response is a small HTML page rather than JSON.
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		common.RespondHTML(w, http.StatusBadRequest, []byte(unsubscribeErrorPage))
		return
	}

	if err := h.subscriptionService.Unsubscribe(r.Context(), email); err != nil {
		h.logger.Error("Unsubscribe failed", zap.Error(err), zap.String("email", email))
		common.RespondHTML(w, http.StatusInternalServerError, []byte(unsubscribeErrorPage))
		return
	}
	common.RespondHTML(w, http.StatusOK, []byte(unsubscribeSuccessPage))
}

const unsubscribeSuccessPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Unsubscribed - Quote Me</title></head>
<body style="font-family: Georgia, serif; text-align: center; padding: 60px 20px;">
<h1>You're unsubscribed</h1>
<p>You will no longer receive Daily Nuggets. Come back any time.</p>
</body>
</html>`

const unsubscribeErrorPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Something went wrong - Quote Me</title></head>
<body style="font-family: Georgia, serif; text-align: center; padding: 60px 20px;">
<h1>Something went wrong</h1>
<p>We could not process your unsubscribe request. Please try the link again later.</p>
</body>
</html>`
