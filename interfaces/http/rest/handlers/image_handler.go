package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"quoteme-backend/application/services"
	"quoteme-backend/pkg/common"
	"quoteme-backend/pkg/errors"
)

// ImageHandler serves the asynchronous quote illustration endpoints.
type ImageHandler struct {
	imageService *services.ImageService
	errs         *errors.ErrorHandler
	logger       *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService, errs *errors.ErrorHandler, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		errs:         errs,
		logger:       logger,
	}
}

// Generate handles POST /admin/quotes/{quoteID}/generate-image. Generation
// runs on a worker, so the response is the job to poll.
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	job, err := h.imageService.RequestImage(r.Context(), chi.URLParam(r, "quoteID"), adminID(r))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusAccepted, job)
}

// Status handles GET /admin/image-status/{jobID}
func (h *ImageHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.imageService.JobStatus(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, job)
}
