package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"webwatch/internal/domain/entity"
)

/* ───────── in-memory repositories ───────── */

type memSources struct {
	mu   sync.Mutex
	rows []*entity.Source
	err  error
}

func (m *memSources) Get(_ context.Context, id string) (*entity.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSources) List(context.Context) ([]*entity.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]*entity.Source(nil), m.rows...), nil
}

func (m *memSources) ListDue(_ context.Context, now time.Time) ([]*entity.Source, error) {
	var out []*entity.Source
	for _, s := range m.rows {
		if s.IsDue(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSources) Create(_ context.Context, s *entity.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.URL == s.URL {
			return entity.ErrDuplicate
		}
	}
	s.ID = fmt.Sprintf("src-%d", len(m.rows)+1)
	m.rows = append(m.rows, s)
	return nil
}

func (m *memSources) Update(context.Context, *entity.Source) error         { return nil }
func (m *memSources) Deactivate(context.Context, string) error             { return nil }
func (m *memSources) SaveCrawlState(context.Context, *entity.Source) error { return nil }
func (m *memSources) TryLockCrawl(context.Context, string, time.Time, time.Duration) (bool, error) {
	return true, nil
}
func (m *memSources) UnlockCrawl(context.Context, string) error { return nil }

type memProjects struct {
	mu   sync.Mutex
	rows []*entity.Project
}

func (m *memProjects) Get(_ context.Context, id string) (*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProjects) List(context.Context) ([]*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.Project(nil), m.rows...), nil
}

func (m *memProjects) Create(_ context.Context, p *entity.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if strings.EqualFold(r.Name, p.Name) {
			return entity.ErrDuplicate
		}
	}
	p.ID = fmt.Sprintf("prj-%d", len(m.rows)+1)
	m.rows = append(m.rows, p)
	return nil
}
