package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
)

// ImageService drives asynchronous quote image generation: the API side
// enqueues jobs, the worker side renders and stores them.
type ImageService struct {
	jobRepo   ports.JobRepository
	jobQueue  ports.JobQueue
	quoteRepo ports.QuoteRepository
	generator ports.ImageGenerator
	store     ports.ImageStore
	logger    *zap.Logger
}

// NewImageService creates a new image service
func NewImageService(
	jobRepo ports.JobRepository,
	jobQueue ports.JobQueue,
	quoteRepo ports.QuoteRepository,
	generator ports.ImageGenerator,
	store ports.ImageStore,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		jobRepo:   jobRepo,
		jobQueue:  jobQueue,
		quoteRepo: quoteRepo,
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// RequestImage queues image generation for a quote and returns the job
// the client polls.
func (s *ImageService) RequestImage(ctx context.Context, quoteID, requestedBy string) (*quotes.ImageJob, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	job := quotes.NewImageJob(quote.ID, requestedBy)
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		job.Fail("failed to enqueue job")
		if serr := s.jobRepo.Save(ctx, job); serr != nil {
			s.logger.Error("failed to record enqueue failure",
				zap.Error(serr),
				zap.String("jobID", job.ID),
			)
		}
		return nil, err
	}

	s.logger.Info("Image generation queued",
		zap.String("jobID", job.ID),
		zap.String("quoteID", quote.ID),
	)
	return job, nil
}

// JobStatus returns the current state of a job.
func (s *ImageService) JobStatus(ctx context.Context, jobID string) (*quotes.ImageJob, error) {
	return s.jobRepo.GetByID(ctx, jobID)
}

// ProcessJob runs one queued job end to end: render, store, link to the
// quote. Failures are recorded on the job rather than retried here; the
// queue's redrive policy owns retries.
func (s *ImageService) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Done() {
		s.logger.Info("Skipping finished job",
			zap.String("jobID", job.ID),
			zap.String("status", job.Status),
		)
		return nil
	}

	if err := job.Start(); err != nil {
		return err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return err
	}

	quote, err := s.quoteRepo.GetByID(ctx, job.QuoteID)
	if err != nil {
		return s.failJob(ctx, job, fmt.Sprintf("quote lookup failed: %v", err))
	}

	prompt := BuildImagePrompt(quote.Text, quote.Author, quote.Tags)

	data, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.failJob(ctx, job, fmt.Sprintf("image generation failed: %v", err))
	}

	key := fmt.Sprintf("%s-%s.png", quote.ID, uuid.New().String()[:8])
	imageURL, err := s.store.Put(ctx, key, data, "image/png")
	if err != nil {
		return s.failJob(ctx, job, fmt.Sprintf("image storage failed: %v", err))
	}

	if err := s.quoteRepo.SetImageURL(ctx, quote.ID, imageURL); err != nil {
		// The image exists; surface the job as completed anyway so clients
		// get the URL, but log for cleanup.
		s.logger.Error("failed to link image to quote",
			zap.Error(err),
			zap.String("quoteID", quote.ID),
			zap.String("imageURL", imageURL),
		)
	}

	if err := job.Complete(imageURL); err != nil {
		return err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return err
	}

	s.logger.Info("Image generation completed",
		zap.String("jobID", job.ID),
		zap.String("quoteID", quote.ID),
		zap.String("imageURL", imageURL),
	)
	return nil
}

func (s *ImageService) failJob(ctx context.Context, job *quotes.ImageJob, reason string) error {
	job.Fail(reason)
	if err := s.jobRepo.Save(ctx, job); err != nil {
		s.logger.Error("failed to record job failure",
			zap.Error(err),
			zap.String("jobID", job.ID),
		)
	}
	s.logger.Warn("Image generation failed",
		zap.String("jobID", job.ID),
		zap.String("reason", reason),
	)
	return nil
}

// BuildImagePrompt composes the rendering prompt: shared style guidelines,
// the quote itself, thematic context from tags, and per-author atmosphere
// for well-known figures.
func BuildImagePrompt(text, author string, tags []string) string {
	var b strings.Builder
	b.WriteString(`Create a sophisticated, inspirational image that visually represents the essence of this quote.

Style Guidelines:
- Professional, high-quality digital art aesthetic
- Warm, inviting color palette with subtle gradients (soft blues, golds, warm grays)
- Soft, diffused lighting that creates depth and atmosphere
- Clean, minimalist composition with balanced visual elements
- Slightly abstract or symbolic rather than literal interpretation
- Suitable for displaying alongside inspirational text overlay
- Elegant, timeless feel that complements written wisdom
- Avoid text, words, or letters in the image

Visual Elements:
- Symbolic representations of the quote's core message
- Natural elements like soft light rays, flowing water, or serene landscapes
- Geometric patterns or flowing lines suggesting growth, progress, or wisdom
- Subtle textures that add depth without overwhelming
- Color psychology matching the quote's emotional tone
- Composition leaves space for text overlay

`)
	fmt.Fprintf(&b, "Quote: %q\nAuthor: %s", text, author)

	if len(tags) > 0 {
		fmt.Fprintf(&b, "\nThematic Context: %s", strings.Join(tags, ", "))
	}

	if ctx := authorContext(author); ctx != "" {
		fmt.Fprintf(&b, "\nAuthor Context: %s", ctx)
	}

	return b.String()
}

// authorContext maps well-known figures to a visual atmosphere.
func authorContext(author string) string {
	lower := strings.ToLower(author)
	matches := func(names ...string) bool {
		for _, n := range names {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}

	switch {
	case matches("einstein", "newton", "galileo"):
		return "Scientific, intellectual atmosphere with subtle cosmic or mathematical elements"
	case matches("shakespeare", "wilde", "twain"):
		return "Literary, classical atmosphere with elegant, timeless elements"
	case matches("gandhi", "mandela", "king"):
		return "Peaceful, dignified atmosphere with elements of hope and unity"
	case matches("jobs", "gates", "bezos"):
		return "Modern, innovative atmosphere with clean, technological elegance"
	case matches("buddha", "confucius", "lao"):
		return "Serene, meditative atmosphere with natural, zen-like elements"
	case matches("da vinci", "leonardo"):
		return "Renaissance artistry with elements of innovation, flight, and creative genius"
	}
	return ""
}
