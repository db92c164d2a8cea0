package services

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"quoteme-backend/application/ports"
	"quoteme-backend/domain/quotes"
	"quoteme-backend/pkg/errors"
)

// In-memory port implementations shared by the service tests.

type fakeQuoteRepo struct {
	mu     sync.Mutex
	byID   map[string]*quotes.Quote
	random *quotes.Quote
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{byID: make(map[string]*quotes.Quote)}
}

func (r *fakeQuoteRepo) Save(_ context.Context, q *quotes.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[q.ID] = q
	return nil
}

func (r *fakeQuoteRepo) GetByID(_ context.Context, id string) (*quotes.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("quote")
	}
	return q, nil
}

func (r *fakeQuoteRepo) Update(_ context.Context, q *quotes.Quote, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[q.ID]; !ok {
		return errors.NewNotFoundError("quote")
	}
	r.byID[q.ID] = q
	return nil
}

func (r *fakeQuoteRepo) Delete(_ context.Context, q *quotes.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, q.ID)
	return nil
}

func (r *fakeQuoteRepo) Random(_ context.Context, tag string) (*quotes.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.random != nil {
		return r.random, nil
	}
	var pool []*quotes.Quote
	for _, q := range r.byID {
		if tag == "" || q.HasTag(tag) {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil, errors.NewNotFoundError("quote")
	}
	return pool[rand.Intn(len(pool))], nil
}

func (r *fakeQuoteRepo) List(_ context.Context, _ int, _ map[string]string) ([]*quotes.Quote, map[string]string, error) {
	all, _ := r.ListAll(context.Background())
	return all, nil, nil
}

func (r *fakeQuoteRepo) ListByTag(_ context.Context, tag string, _ int, _ map[string]string) ([]*quotes.Quote, map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quotes.Quote
	for _, q := range r.byID {
		if q.HasTag(tag) {
			out = append(out, q)
		}
	}
	return out, nil, nil
}

func (r *fakeQuoteRepo) ListByAuthor(_ context.Context, author string, _ int, _ map[string]string) ([]*quotes.Quote, map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quotes.Quote
	for _, q := range r.byID {
		if q.NormalizedAuthor() == author {
			out = append(out, q)
		}
	}
	return out, nil, nil
}

func (r *fakeQuoteRepo) ListAll(_ context.Context) ([]*quotes.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*quotes.Quote, 0, len(r.byID))
	for _, q := range r.byID {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeQuoteRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *fakeQuoteRepo) SetImageURL(_ context.Context, id, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.byID[id]
	if !ok {
		return errors.NewNotFoundError("quote")
	}
	q.ImageURL = imageURL
	return nil
}

type fakeTagRepo struct {
	mu     sync.Mutex
	byName map[string]*quotes.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{byName: make(map[string]*quotes.Tag)}
}

func (r *fakeTagRepo) Save(_ context.Context, t *quotes.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[t.Name] = t
	return nil
}

func (r *fakeTagRepo) GetByName(_ context.Context, name string) (*quotes.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("tag")
	}
	return t, nil
}

func (r *fakeTagRepo) ListAll(_ context.Context) ([]*quotes.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*quotes.Tag, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTagRepo) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, name)
	return nil
}

func (r *fakeTagRepo) Rename(_ context.Context, oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byName[oldName]
	if !ok {
		return errors.NewNotFoundError("tag")
	}
	delete(r.byName, oldName)
	t.Name = newName
	r.byName[newName] = t
	return nil
}

func (r *fakeTagRepo) AdjustCount(_ context.Context, name string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byName[name]; ok {
		t.QuoteCount += delta
	}
	return nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakeEventPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []*ports.Email
	fail map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{fail: make(map[string]bool)}
}

func (m *fakeMailer) Send(_ context.Context, msg *ports.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.NewExternalError("ses", errors.NewInternalError("address suppressed"))
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeSubRepo struct {
	mu      sync.Mutex
	byEmail map[string]*quotes.Subscription
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{byEmail: make(map[string]*quotes.Subscription)}
}

func (r *fakeSubRepo) Save(_ context.Context, s *quotes.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[s.Email] = s
	return nil
}

func (r *fakeSubRepo) GetByEmail(_ context.Context, email string) (*quotes.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byEmail[email]
	if !ok {
		return nil, errors.NewNotFoundError("subscription")
	}
	return s, nil
}

func (r *fakeSubRepo) ListActive(_ context.Context) ([]*quotes.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quotes.Subscription
	for _, s := range r.byEmail {
		if s.IsSubscribed {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubRepo) ListAll(_ context.Context) ([]*quotes.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quotes.Subscription
	for _, s := range r.byEmail {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSubRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byEmail, email)
	return nil
}

type fakeProposalRepo struct {
	mu   sync.Mutex
	byID map[string]*quotes.Proposal
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{byID: make(map[string]*quotes.Proposal)}
}

func (r *fakeProposalRepo) Save(_ context.Context, p *quotes.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProposalRepo) GetByID(_ context.Context, id string) (*quotes.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("proposal")
	}
	return p, nil
}

func (r *fakeProposalRepo) ListByStatus(_ context.Context, status string) ([]*quotes.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quotes.Proposal
	for _, p := range r.byID {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	byID map[string]*quotes.ImageJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{byID: make(map[string]*quotes.ImageJob)}
}

func (r *fakeJobRepo) Save(_ context.Context, j *quotes.ImageJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *j
	r.byID[j.ID] = &copied
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*quotes.ImageJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("job")
	}
	copied := *j
	return &copied, nil
}

type fakeJobQueue struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (q *fakeJobQueue) Enqueue(_ context.Context, j *quotes.ImageJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, j.ID)
	return nil
}

type fakeGenerator struct {
	data []byte
	err  error
}

func (g *fakeGenerator) Generate(_ context.Context, _ string) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

type fakeImageStore struct {
	mu   sync.Mutex
	keys []string
}

func (s *fakeImageStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://images.example.com/" + key, nil
}

type fakeFavRepo struct {
	mu   sync.Mutex
	favs map[string]*ports.Favorite
}

func newFakeFavRepo() *fakeFavRepo {
	return &fakeFavRepo{favs: make(map[string]*ports.Favorite)}
}

func favKey(userID, quoteID string) string { return userID + "#" + quoteID }

func (r *fakeFavRepo) Save(_ context.Context, f *ports.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.favs[favKey(f.UserID, f.QuoteID)] = f
	return nil
}

func (r *fakeFavRepo) Delete(_ context.Context, userID, quoteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.favs, favKey(userID, quoteID))
	return nil
}

func (r *fakeFavRepo) ListByUser(_ context.Context, userID string) ([]*ports.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ports.Favorite
	for _, f := range r.favs {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *fakeFavRepo) Exists(_ context.Context, userID, quoteID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.favs[favKey(userID, quoteID)]
	return ok, nil
}

type fakeSuggester struct {
	tags []string
	err  error
}

func (s *fakeSuggester) SuggestTags(_ context.Context, _, _ string, _ []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tags, nil
}

type fakeFinder struct {
	found []ports.FoundQuote
	err   error
}

func (f *fakeFinder) FindByAuthor(_ context.Context, _ string, _ int) ([]ports.FoundQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.found, nil
}

// fixedClock pins service time in tests.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
