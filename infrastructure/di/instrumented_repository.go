package di

import (
	"context"
	"time"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/observability"
)

// instrumentedQuoteRepository wraps the DynamoDB quote repository with
// Prometheus operation metrics and a read-through cache for GetByID.
// Writes invalidate the cached entry before hitting the table.
type instrumentedQuoteRepository struct {
	inner     ports.QuoteRepository
	cache     *QuoteCache
	collector *observability.Collector
	table     string
}

// NewInstrumentedQuoteRepository decorates a quote repository with metrics
// and caching. Either cache or collector may be nil to disable that layer.
func NewInstrumentedQuoteRepository(
	inner ports.QuoteRepository,
	cache *QuoteCache,
	collector *observability.Collector,
	table string,
) ports.QuoteRepository {
	return &instrumentedQuoteRepository{
		inner:     inner,
		cache:     cache,
		collector: collector,
		table:     table,
	}
}

func (r *instrumentedQuoteRepository) observe(operation string, start time.Time, err error) {
	if r.collector == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.collector.DBOperations.WithLabelValues(operation, r.table, status).Inc()
	r.collector.DBDuration.WithLabelValues(operation, r.table).Observe(time.Since(start).Seconds())
}

func (r *instrumentedQuoteRepository) Save(ctx context.Context, quote *quotes.Quote) error {
	start := time.Now()
	err := r.inner.Save(ctx, quote)
	r.observe("save", start, err)
	return err
}

func (r *instrumentedQuoteRepository) GetByID(ctx context.Context, id string) (*quotes.Quote, error) {
	if r.cache != nil {
		if quote, ok := r.cache.Get(id); ok {
			return quote, nil
		}
	}

	start := time.Now()
	quote, err := r.inner.GetByID(ctx, id)
	r.observe("get", start, err)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(quote)
	}
	return quote, nil
}

func (r *instrumentedQuoteRepository) Update(ctx context.Context, quote *quotes.Quote, oldTags []string) error {
	if r.cache != nil {
		r.cache.Invalidate(quote.ID)
	}

	start := time.Now()
	err := r.inner.Update(ctx, quote, oldTags)
	r.observe("update", start, err)
	return err
}

func (r *instrumentedQuoteRepository) Delete(ctx context.Context, quote *quotes.Quote) error {
	if r.cache != nil {
		r.cache.Invalidate(quote.ID)
	}

	start := time.Now()
	err := r.inner.Delete(ctx, quote)
	r.observe("delete", start, err)
	return err
}

func (r *instrumentedQuoteRepository) Random(ctx context.Context, tag string) (*quotes.Quote, error) {
	start := time.Now()
	quote, err := r.inner.Random(ctx, tag)
	r.observe("random", start, err)
	return quote, err
}

func (r *instrumentedQuoteRepository) List(ctx context.Context, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	start := time.Now()
	items, nextKey, err := r.inner.List(ctx, limit, startKey)
	r.observe("list", start, err)
	return items, nextKey, err
}

func (r *instrumentedQuoteRepository) ListByTag(ctx context.Context, tag string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	start := time.Now()
	items, nextKey, err := r.inner.ListByTag(ctx, tag, limit, startKey)
	r.observe("list_by_tag", start, err)
	return items, nextKey, err
}

func (r *instrumentedQuoteRepository) ListByAuthor(ctx context.Context, author string, limit int, startKey map[string]string) ([]*quotes.Quote, map[string]string, error) {
	start := time.Now()
	items, nextKey, err := r.inner.ListByAuthor(ctx, author, limit, startKey)
	r.observe("list_by_author", start, err)
	return items, nextKey, err
}

func (r *instrumentedQuoteRepository) ListAll(ctx context.Context) ([]*quotes.Quote, error) {
	start := time.Now()
	items, err := r.inner.ListAll(ctx)
	r.observe("list_all", start, err)
	return items, err
}

func (r *instrumentedQuoteRepository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	count, err := r.inner.Count(ctx)
	r.observe("count", start, err)
	return count, err
}

func (r *instrumentedQuoteRepository) SetImageURL(ctx context.Context, id, imageURL string) error {
	if r.cache != nil {
		r.cache.Invalidate(id)
	}

	start := time.Now()
	err := r.inner.SetImageURL(ctx, id, imageURL)
	r.observe("set_image_url", start, err)
	return err
}
