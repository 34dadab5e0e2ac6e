package source

import (
	"time"

	"webwatch/internal/domain/entity"
)

// DTO is the API view of a source. Lock fields are reduced to a flag.
type DTO struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	URL                   string               `json:"url"`
	Type                  string               `json:"type"`
	Category              string               `json:"category,omitempty"`
	ProjectID             string               `json:"project_id,omitempty"`
	Selectors             entity.Selectors     `json:"selectors"`
	CrawlFrequencyMinutes int                  `json:"crawl_frequency_minutes"`
	Keywords              []string             `json:"keywords"`
	ExcludeKeywords       []string             `json:"exclude_keywords"`
	Hashtags              []string             `json:"hashtags"`
	CrawlSettings         entity.CrawlSettings `json:"crawl_settings"`
	IsActive              bool                 `json:"is_active"`
	CrawlInProgress       bool                 `json:"crawl_in_progress"`
	LastCrawled           *time.Time           `json:"last_crawled,omitempty"`
	NextCrawl             *time.Time           `json:"next_crawl,omitempty"`
	Statistics            entity.Statistics    `json:"statistics"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

func toDTO(s *entity.Source) DTO {
	return DTO{
		ID:                    s.ID,
		Name:                  s.Name,
		URL:                   s.URL,
		Type:                  s.Type,
		Category:              s.Category,
		ProjectID:             s.ProjectID,
		Selectors:             s.Selectors,
		CrawlFrequencyMinutes: s.CrawlFrequencyMinutes,
		Keywords:              nonNil(s.Keywords),
		ExcludeKeywords:       nonNil(s.ExcludeKeywords),
		Hashtags:              nonNil(s.Hashtags),
		CrawlSettings:         s.CrawlSettings,
		IsActive:              s.IsActive,
		CrawlInProgress:       s.CrawlInProgress,
		LastCrawled:           s.LastCrawled,
		NextCrawl:             s.NextCrawl,
		Statistics:            s.Statistics,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// request is the body of POST /sources and PUT /sources/{id}.
// On PUT, absent fields are left unchanged.
type request struct {
	Name                  string                `json:"name"`
	URL                   string                `json:"url"`
	Type                  string                `json:"type"`
	Category              *string               `json:"category"`
	ProjectID             *string               `json:"project_id"`
	Selectors             *entity.Selectors     `json:"selectors"`
	CrawlFrequencyMinutes *int                  `json:"crawl_frequency_minutes"`
	Keywords              []string              `json:"keywords"`
	ExcludeKeywords       []string              `json:"exclude_keywords"`
	Hashtags              []string              `json:"hashtags"`
	CrawlSettings         *entity.CrawlSettings `json:"crawl_settings"`
	IsActive              *bool                 `json:"is_active"`
}

// CrawlResultDTO is returned by POST /sources/{id}/crawl.
type CrawlResultDTO struct {
	SourceID   string   `json:"source_id"`
	Found      int      `json:"found"`
	Persisted  int      `json:"persisted"`
	Duplicates int      `json:"duplicates"`
	Rejected   int      `json:"rejected"`
	Errors     []string `json:"errors,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}
