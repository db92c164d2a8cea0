package quotes

import (
	"time"

	"github.com/google/uuid"

	"quoteme-backend/pkg/errors"
)

// Image job statuses.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// ImageJob tracks an asynchronous image generation request for a quote.
type ImageJob struct {
	ID          string `json:"job_id"`
	QuoteID     string `json:"quote_id"`
	Status      string `json:"status"`
	ImageURL    string `json:"image_url,omitempty"`
	Error       string `json:"error,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

// JobTTL bounds how long completed job records stay queryable.
const JobTTL = 24 * time.Hour

// NewImageJob creates a queued job for the given quote.
func NewImageJob(quoteID, requestedBy string) *ImageJob {
	now := time.Now().UTC()
	return &ImageJob{
		ID:          uuid.New().String(),
		QuoteID:     quoteID,
		Status:      JobQueued,
		RequestedBy: requestedBy,
		CreatedAt:   now.Format(time.RFC3339),
		UpdatedAt:   now.Format(time.RFC3339),
		ExpiresAt:   now.Add(JobTTL).Unix(),
	}
}

// Start marks the job as picked up by a worker.
func (j *ImageJob) Start() error {
	if j.Status != JobQueued {
		return errors.NewConflictError("job is not queued")
	}
	j.Status = JobProcessing
	j.touch()
	return nil
}

// Complete records the stored image URL and finishes the job.
func (j *ImageJob) Complete(imageURL string) error {
	if j.Status != JobProcessing {
		return errors.NewConflictError("job is not processing")
	}
	j.Status = JobCompleted
	j.ImageURL = imageURL
	j.Error = ""
	j.touch()
	return nil
}

// Fail records the failure reason. Failed is terminal.
func (j *ImageJob) Fail(reason string) {
	j.Status = JobFailed
	j.Error = reason
	j.touch()
}

// Done reports whether the job reached a terminal status.
func (j *ImageJob) Done() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

func (j *ImageJob) touch() {
	j.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
