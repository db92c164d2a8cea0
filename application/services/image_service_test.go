package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

func newImageService(t *testing.T) (*ImageService, *fakeQuoteRepo, *fakeJobRepo, *fakeJobQueue, *fakeGenerator, *fakeImageStore) {
	t.Helper()
	quoteRepo := newFakeQuoteRepo()
	jobRepo := newFakeJobRepo()
	queue := &fakeJobQueue{}
	gen := &fakeGenerator{data: []byte("png-bytes")}
	store := &fakeImageStore{}
	svc := NewImageService(jobRepo, queue, quoteRepo, gen, store, zap.NewNop())
	return svc, quoteRepo, jobRepo, queue, gen, store
}

func seedQuote(t *testing.T, repo *fakeQuoteRepo) *quotes.Quote {
	t.Helper()
	q, err := quotes.NewQuote("Be yourself", "Oscar Wilde", []string{"wisdom"}, "admin")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), q))
	return q
}

func TestImageService_RequestImage(t *testing.T) {
	svc, quoteRepo, jobRepo, queue, _, _ := newImageService(t)
	q := seedQuote(t, quoteRepo)

	job, err := svc.RequestImage(context.Background(), q.ID, "admin@example.com")

	require.NoError(t, err)
	assert.Equal(t, quotes.JobQueued, job.Status)
	assert.Equal(t, q.ID, job.QuoteID)
	assert.Equal(t, []string{job.ID}, queue.enqueued)

	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, quotes.JobQueued, stored.Status)
}

func TestImageService_RequestImage_UnknownQuote(t *testing.T) {
	svc, _, _, _, _, _ := newImageService(t)

	_, err := svc.RequestImage(context.Background(), "missing", "admin")

	assert.True(t, errors.IsNotFound(err))
}

func TestImageService_ProcessJob_Completes(t *testing.T) {
	svc, quoteRepo, jobRepo, _, _, store := newImageService(t)
	q := seedQuote(t, quoteRepo)
	job, err := svc.RequestImage(context.Background(), q.ID, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.ProcessJob(context.Background(), job.ID))

	done, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, quotes.JobCompleted, done.Status)
	assert.Contains(t, done.ImageURL, "https://images.example.com/")

	updated, err := quoteRepo.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, done.ImageURL, updated.ImageURL)
	assert.Len(t, store.keys, 1)
}

func TestImageService_ProcessJob_GeneratorFailureMarksJobFailed(t *testing.T) {
	svc, quoteRepo, jobRepo, _, gen, _ := newImageService(t)
	q := seedQuote(t, quoteRepo)
	job, err := svc.RequestImage(context.Background(), q.ID, "admin")
	require.NoError(t, err)

	gen.err = errors.NewExternalError("openai", errors.NewInternalError("timeout"))

	require.NoError(t, svc.ProcessJob(context.Background(), job.ID))

	failed, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, quotes.JobFailed, failed.Status)
	assert.Contains(t, failed.Error, "image generation failed")
}

func TestImageService_ProcessJob_SkipsFinishedJob(t *testing.T) {
	svc, quoteRepo, jobRepo, _, _, store := newImageService(t)
	q := seedQuote(t, quoteRepo)
	job, err := svc.RequestImage(context.Background(), q.ID, "admin")
	require.NoError(t, err)
	require.NoError(t, svc.ProcessJob(context.Background(), job.ID))
	require.Len(t, store.keys, 1)

	require.NoError(t, svc.ProcessJob(context.Background(), job.ID))

	assert.Len(t, store.keys, 1)
	done, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, quotes.JobCompleted, done.Status)
}

func TestBuildImagePrompt(t *testing.T) {
	prompt := BuildImagePrompt("Imagination is more important than knowledge", "Albert Einstein", []string{"science", "wisdom"})

	assert.Contains(t, prompt, `"Imagination is more important than knowledge"`)
	assert.Contains(t, prompt, "Albert Einstein")
	assert.Contains(t, prompt, "Thematic Context: science, wisdom")
	assert.Contains(t, prompt, "cosmic or mathematical elements")
	assert.Contains(t, prompt, "Avoid text, words, or letters")
}

func TestBuildImagePrompt_UnknownAuthorHasNoContext(t *testing.T) {
	prompt := BuildImagePrompt("Some words", "Nobody Special", nil)

	assert.NotContains(t, prompt, "Author Context:")
	assert.NotContains(t, prompt, "Thematic Context:")
}
