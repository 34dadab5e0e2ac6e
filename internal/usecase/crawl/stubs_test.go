package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"webwatch/internal/domain/entity"
	"webwatch/internal/usecase/crawl"
)

/* ───────── スタブ実装 ───────── */

type stubSourceRepo struct {
	mu        sync.Mutex
	sources   []*entity.Source
	listErr   error
	lockErr   error
	locked    map[string]bool
	saved     []entity.Source
	unlocked  []string
	lockCalls int
}

func newStubSourceRepo(srcs ...*entity.Source) *stubSourceRepo {
	return &stubSourceRepo{sources: srcs, locked: make(map[string]bool)}
}

func (s *stubSourceRepo) Get(_ context.Context, id string) (*entity.Source, error) {
	for _, src := range s.sources {
		if src.ID == id {
			return src, nil
		}
	}
	return nil, nil
}

func (s *stubSourceRepo) List(_ context.Context) ([]*entity.Source, error) {
	return s.sources, s.listErr
}

func (s *stubSourceRepo) ListDue(_ context.Context, now time.Time) ([]*entity.Source, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*entity.Source
	for _, src := range s.sources {
		if src.IsDue(now) {
			out = append(out, src)
		}
	}
	return out, nil
}

func (s *stubSourceRepo) Create(_ context.Context, src *entity.Source) error {
	s.sources = append(s.sources, src)
	return nil
}

func (s *stubSourceRepo) Update(_ context.Context, _ *entity.Source) error { return nil }

func (s *stubSourceRepo) Deactivate(_ context.Context, _ string) error { return nil }

func (s *stubSourceRepo) SaveCrawlState(_ context.Context, src *entity.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *src)
	return nil
}

func (s *stubSourceRepo) TryLockCrawl(_ context.Context, id string, _ time.Time, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockCalls++
	if s.lockErr != nil {
		return false, s.lockErr
	}
	if s.locked[id] {
		return false, nil
	}
	s.locked[id] = true
	return true, nil
}

func (s *stubSourceRepo) UnlockCrawl(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locked, id)
	s.unlocked = append(s.unlocked, id)
	return nil
}

type stubRecordRepo struct {
	mu        sync.Mutex
	records   []*entity.Record
	byHash    map[string]bool
	failHash  map[string]error
	existsErr error
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{byHash: make(map[string]bool), failHash: make(map[string]error)}
}

func (r *stubRecordRepo) ExistsByHash(_ context.Context, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.byHash[hash], nil
}

func (r *stubRecordRepo) Create(_ context.Context, rec *entity.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failHash[rec.ContentHash]; err != nil {
		return err
	}
	if r.byHash[rec.ContentHash] {
		return entity.ErrDuplicate
	}
	r.byHash[rec.ContentHash] = true
	r.records = append(r.records, rec)
	return nil
}

func (r *stubRecordRepo) Get(_ context.Context, id string) (*entity.Record, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *stubRecordRepo) List(_ context.Context, _ entity.RecordFilter) ([]*entity.Record, error) {
	return r.records, nil
}

func (r *stubRecordRepo) UpdateEngagement(_ context.Context, _ string, _ entity.Engagement) error {
	return nil
}

type stubProjectRepo struct {
	projects map[string]*entity.Project
	err      error
}

func (p *stubProjectRepo) Get(_ context.Context, id string) (*entity.Project, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.projects[id], nil
}

func (p *stubProjectRepo) List(_ context.Context) ([]*entity.Project, error) { return nil, nil }

func (p *stubProjectRepo) Create(_ context.Context, _ *entity.Project) error { return nil }

// stubFetcher serves pages by URL; errs takes precedence.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, req crawl.FetchRequest) (*crawl.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.URL)
	if err := f.errs[req.URL]; err != nil {
		return nil, err
	}
	body, ok := f.pages[req.URL]
	if !ok {
		return nil, errors.New("not found")
	}
	return &crawl.Page{URL: req.URL, StatusCode: 200, Body: []byte(body)}, nil
}

// stubExtractor returns fixed candidates per base URL.
type stubExtractor struct {
	candidates map[string][]entity.ExtractedContent
	err        error
}

func (e *stubExtractor) Extract(_ []byte, baseURL string, _ entity.Selectors) ([]entity.ExtractedContent, error) {
	if e.err != nil {
		return nil, e.err
	}
	// copy so body rewrites by the orchestrator do not leak between runs
	src := e.candidates[baseURL]
	out := make([]entity.ExtractedContent, len(src))
	copy(out, src)
	return out, nil
}

// stubAnalyzer labels text containing "terrible" negative, everything else positive.
type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, text string) entity.Sentiment {
	if strings.Contains(strings.ToLower(text), "terrible") {
		return entity.Sentiment{Label: entity.SentimentNegative, Score: -0.8, Confidence: 0.7}
	}
	return entity.Sentiment{Label: entity.SentimentPositive, Score: 0.5, Confidence: 0.6}
}

type stubContentFetcher struct {
	text  string
	err   error
	calls []string
}

func (c *stubContentFetcher) FetchContent(_ context.Context, req crawl.FetchRequest) (string, error) {
	c.calls = append(c.calls, req.URL)
	return c.text, c.err
}

type stubAlerter struct {
	records []*entity.Record
	err     error
}

func (a *stubAlerter) NotifyMention(_ context.Context, rec *entity.Record, _ *entity.Source) error {
	a.records = append(a.records, rec)
	return a.err
}

/* ───────── ヘルパー ───────── */

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSource(id, url string) *entity.Source {
	src := &entity.Source{ID: id, Name: "source " + id, URL: url, IsActive: true}
	src.ApplyDefaults()
	return src
}

func candidate(title, body, link string) entity.ExtractedContent {
	return entity.ExtractedContent{Title: title, Body: body, URL: link}
}

type fixture struct {
	sources  *stubSourceRepo
	records  *stubRecordRepo
	fetcher  *stubFetcher
	html     *stubExtractor
	sleeps   []time.Duration
	svc      *crawl.Service
	idSerial int
}

func newFixture(srcs ...*entity.Source) *fixture {
	f := &fixture{
		sources: newStubSourceRepo(srcs...),
		records: newStubRecordRepo(),
		fetcher: &stubFetcher{pages: map[string]string{}, errs: map[string]error{}},
		html:    &stubExtractor{candidates: map[string][]entity.ExtractedContent{}},
	}
	f.svc = &crawl.Service{
		Sources:    f.sources,
		Records:    f.records,
		Fetcher:    f.fetcher,
		HTML:       f.html,
		Classifier: stubAnalyzer{},
		Config:     crawl.DefaultConfig(),
		Now:        func() time.Time { return t0 },
		Sleep: func(_ context.Context, d time.Duration) error {
			f.sleeps = append(f.sleeps, d)
			return nil
		},
		NewID: func() string {
			f.idSerial++
			return fmt.Sprintf("rec-%d", f.idSerial)
		},
	}
	return f
}

// serve registers a page and the candidates extracted from it.
func (f *fixture) serve(url string, cs ...entity.ExtractedContent) {
	f.fetcher.pages[url] = "<html></html>"
	f.html.candidates[url] = cs
}

// storeSourceRepo behaves like a real store: callers always get copies and
// writes only touch the fields the real adapters write.
type storeSourceRepo struct {
	mu     sync.Mutex
	rows   map[string]entity.Source
	order  []string
	locked map[string]bool
}

func newStoreSourceRepo(srcs ...*entity.Source) *storeSourceRepo {
	r := &storeSourceRepo{rows: make(map[string]entity.Source), locked: make(map[string]bool)}
	for _, src := range srcs {
		r.rows[src.ID] = *src
		r.order = append(r.order, src.ID)
	}
	return r
}

func (r *storeSourceRepo) row(id string) entity.Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

func (r *storeSourceRepo) edit(id string, fn func(*entity.Source)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.rows[id]
	fn(&src)
	r.rows[id] = src
}

func (r *storeSourceRepo) Get(_ context.Context, id string) (*entity.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &src, nil
}

func (r *storeSourceRepo) List(_ context.Context) ([]*entity.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Source, 0, len(r.order))
	for _, id := range r.order {
		src := r.rows[id]
		out = append(out, &src)
	}
	return out, nil
}

func (r *storeSourceRepo) ListDue(_ context.Context, now time.Time) ([]*entity.Source, error) {
	all, _ := r.List(context.Background())
	var out []*entity.Source
	for _, src := range all {
		if src.IsDue(now) {
			out = append(out, src)
		}
	}
	return out, nil
}

func (r *storeSourceRepo) Create(_ context.Context, src *entity.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[src.ID] = *src
	r.order = append(r.order, src.ID)
	return nil
}

func (r *storeSourceRepo) Update(_ context.Context, _ *entity.Source) error { return nil }

func (r *storeSourceRepo) Deactivate(_ context.Context, id string) error {
	r.edit(id, func(s *entity.Source) { s.IsActive = false })
	return nil
}

func (r *storeSourceRepo) SaveCrawlState(_ context.Context, src *entity.Source) error {
	r.edit(src.ID, func(s *entity.Source) {
		s.LastCrawled = src.LastCrawled
		s.NextCrawl = src.NextCrawl
		s.Statistics = src.Statistics
	})
	return nil
}

func (r *storeSourceRepo) TryLockCrawl(_ context.Context, id string, _ time.Time, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[id] {
		return false, nil
	}
	r.locked[id] = true
	return true, nil
}

func (r *storeSourceRepo) UnlockCrawl(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locked, id)
	return nil
}
