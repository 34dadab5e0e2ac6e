package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webwatch/internal/domain/entity"
	projUC "webwatch/internal/usecase/project"
	srcUC "webwatch/internal/usecase/source"
)

const sampleSeed = `
projects:
  - name: Acme
    keywords: [acme, "acme corp"]
    exclude_keywords: [vaga]
    hashtags: ["#acme"]
sources:
  - name: Example News
    url: https://news.example.com
    type: news
    project: acme
    crawl_frequency_minutes: 30
    selectors:
      container: article.post
      title: h2
    crawl_settings:
      delay_ms: 2000
  - name: Example Feed
    url: https://blog.example.com/feed.xml
    type: rss
    crawl_settings:
      respect_robots: false
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	seed, err := loadSeedFile(writeSeed(t, sampleSeed))
	require.NoError(t, err)
	require.Len(t, seed.Projects, 1)
	require.Len(t, seed.Sources, 2)
	assert.Equal(t, "article.post", seed.Sources[0].Selectors.Container)
	assert.Equal(t, 2000, seed.Sources[0].CrawlSettings.DelayMs)
	require.NotNil(t, seed.Sources[1].CrawlSettings.RespectRobots)
	assert.False(t, *seed.Sources[1].CrawlSettings.RespectRobots)
}

func TestLoadSeedFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "sources:\n  - name: x\n    urll: https://x.example.com\n"},
		{"empty", ""},
		{"nothing listed", "projects: []\n"},
		{"not yaml", "sources: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSeedFile(writeSeed(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := loadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplySeed(t *testing.T) {
	seed, err := loadSeedFile(writeSeed(t, sampleSeed))
	require.NoError(t, err)

	sources := &memSources{}
	projects := &memProjects{}
	projSvc := &projUC.Service{Repo: projects}
	srcSvc := &srcUC.Service{Repo: sources, Projects: projects}

	report := applySeed(context.Background(), seed, projSvc, srcSvc)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.ProjectsCreated)
	assert.Equal(t, 2, report.SourcesCreated)

	require.Len(t, sources.rows, 2)
	news := sources.rows[0]
	assert.Equal(t, "prj-1", news.ProjectID)
	assert.Equal(t, 30, news.CrawlFrequencyMinutes)
	assert.True(t, news.CrawlSettings.RespectRobots)
	assert.Equal(t, entity.DefaultCrawlTimeoutSeconds, news.CrawlSettings.TimeoutSeconds)
	assert.False(t, sources.rows[1].CrawlSettings.RespectRobots)

	// 2回目は全件スキップされる
	again := applySeed(context.Background(), seed, projSvc, srcSvc)
	assert.Empty(t, again.Errors)
	assert.Equal(t, 0, again.ProjectsCreated)
	assert.Equal(t, 1, again.ProjectsSkipped)
	assert.Equal(t, 2, again.SourcesSkipped)
	assert.Len(t, sources.rows, 2)
}

func TestApplySeed_FailuresDoNotStopTheRun(t *testing.T) {
	seed := &seedFile{Sources: []seedSource{
		{Name: "bad project", URL: "https://a.example.com", Project: "nope"},
		{Name: "", URL: "https://b.example.com"},
		{Name: "ok", URL: "https://c.example.com"},
	}}
	sources := &memSources{}
	projects := &memProjects{}

	report := applySeed(context.Background(), seed,
		&projUC.Service{Repo: projects},
		&srcUC.Service{Repo: sources, Projects: projects})

	assert.Len(t, report.Errors, 2)
	assert.Equal(t, 1, report.SourcesCreated)
}

func TestApplySeed_ListFailureIsReported(t *testing.T) {
	seed := &seedFile{Sources: []seedSource{{Name: "ok", URL: "https://c.example.com"}}}
	sources := &memSources{err: errors.New("connection refused")}

	report := applySeed(context.Background(), seed,
		&projUC.Service{Repo: &memProjects{}},
		&srcUC.Service{Repo: sources})

	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "connection refused")
}
