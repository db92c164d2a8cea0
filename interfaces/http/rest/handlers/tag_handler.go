package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
)

// TagHandler serves the public tag endpoints
type TagHandler struct {
	tagService *services.TagService
	errs       *errors.ErrorHandler
	logger     *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *services.TagService, errs *errors.ErrorHandler, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		errs:       errs,
		logger:     logger,
	}
}

// List handles GET /tags. With names=true only the tag names come back,
// which is what the mobile client's tag picker wants.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("names") == "true" {
		names, err := h.tagService.TagNames(r.Context())
		if err != nil {
			h.errs.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, names)
		return
	}

	tags, err := h.tagService.ListTags(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tags)
}
