package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"webwatch/internal/domain/entity"
	projUC "webwatch/internal/usecase/project"
	srcUC "webwatch/internal/usecase/source"
)

// seedFile is the YAML layout accepted by `webwatchctl seed`.
//
//	projects:
//	  - name: acme
//	    keywords: [acme, "acme corp"]
//	sources:
//	  - name: Example News
//	    url: https://news.example.com
//	    type: news
//	    project: acme
//	    crawl_settings: {delay_ms: 2000, respect_robots: true}
type seedFile struct {
	Projects []seedProject `yaml:"projects"`
	Sources  []seedSource  `yaml:"sources"`
}

type seedProject struct {
	Name            string   `yaml:"name"`
	Keywords        []string `yaml:"keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	Hashtags        []string `yaml:"hashtags"`
	Active          *bool    `yaml:"active"`
}

type seedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Category string `yaml:"category"`
	// Project is a project name, resolved against the file and the store.
	Project               string             `yaml:"project"`
	ProjectID             string             `yaml:"project_id"`
	CrawlFrequencyMinutes int                `yaml:"crawl_frequency_minutes"`
	Keywords              []string           `yaml:"keywords"`
	ExcludeKeywords       []string           `yaml:"exclude_keywords"`
	Hashtags              []string           `yaml:"hashtags"`
	Selectors             seedSelectors      `yaml:"selectors"`
	CrawlSettings         *seedCrawlSettings `yaml:"crawl_settings"`
	Active                *bool              `yaml:"active"`
}

type seedSelectors struct {
	Container string `yaml:"container"`
	Title     string `yaml:"title"`
	Content   string `yaml:"content"`
	Author    string `yaml:"author"`
	Date      string `yaml:"date"`
	Image     string `yaml:"image"`
	Link      string `yaml:"link"`
}

type seedCrawlSettings struct {
	MaxDepth            int               `yaml:"max_depth"`
	DelayMs             int               `yaml:"delay_ms"`
	FollowExternalLinks bool              `yaml:"follow_external_links"`
	RespectRobots       *bool             `yaml:"respect_robots"`
	UserAgent           string            `yaml:"user_agent"`
	Headers             map[string]string `yaml:"headers"`
	TimeoutSeconds      int               `yaml:"timeout_seconds"`
	MaxRedirects        int               `yaml:"max_redirects"`
}

// seedReport counts what a seed run did. Failures never stop the run.
type seedReport struct {
	ProjectsCreated int      `json:"projects_created"`
	ProjectsSkipped int      `json:"projects_skipped"`
	SourcesCreated  int      `json:"sources_created"`
	SourcesSkipped  int      `json:"sources_skipped"`
	Errors          []string `json:"errors,omitempty"`
}

func (c *cli) seedCmd() *cobra.Command {
	var file string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "seed --file sources.yaml",
		Short: "Create projects and sources from a YAML file",
		Long: `Create the projects and sources listed in a YAML file.
Entries that already exist (same project name, same source URL) are skipped,
so the command can be re-run safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := loadSeedFile(file)
			if err != nil {
				return err
			}
			if dryRun {
				return c.printSeedPlan(seed)
			}

			stores, closeFn, err := c.openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			report := applySeed(cmd.Context(), seed,
				&projUC.Service{Repo: stores.Projects},
				&srcUC.Service{Repo: stores.Sources, Projects: stores.Projects})
			if err := c.printSeedReport(report); err != nil {
				return err
			}
			if len(report.Errors) > 0 {
				return fmt.Errorf("%d seed entries failed", len(report.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file and print what would be created")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(seed.Projects) == 0 && len(seed.Sources) == 0 {
		return nil, errors.New("seed file lists no projects or sources")
	}
	return &seed, nil
}

// applySeed creates projects first so sources can reference them by name.
func applySeed(ctx context.Context, seed *seedFile, projects *projUC.Service, sources *srcUC.Service) seedReport {
	var report seedReport
	fail := func(kind, name string, err error) {
		report.Errors = append(report.Errors, fmt.Sprintf("%s %q: %v", kind, name, err))
	}

	byName := map[string]string{}
	if existing, err := projects.List(ctx); err == nil {
		for _, p := range existing {
			byName[strings.ToLower(p.Name)] = p.ID
		}
	} else {
		fail("projects", "*", err)
	}

	for _, sp := range seed.Projects {
		key := strings.ToLower(strings.TrimSpace(sp.Name))
		if _, ok := byName[key]; ok {
			report.ProjectsSkipped++
			continue
		}
		p, err := projects.Create(ctx, projUC.CreateInput{
			Name:            sp.Name,
			Keywords:        sp.Keywords,
			ExcludeKeywords: sp.ExcludeKeywords,
			Hashtags:        sp.Hashtags,
			Active:          sp.Active,
		})
		if errors.Is(err, projUC.ErrDuplicateProject) {
			report.ProjectsSkipped++
			continue
		}
		if err != nil {
			fail("project", sp.Name, err)
			continue
		}
		byName[key] = p.ID
		report.ProjectsCreated++
	}

	knownURLs := map[string]bool{}
	if existing, err := sources.List(ctx); err == nil {
		for _, s := range existing {
			knownURLs[s.URL] = true
		}
	} else {
		fail("sources", "*", err)
	}

	for _, ss := range seed.Sources {
		in, err := ss.toInput(byName)
		if err != nil {
			fail("source", ss.Name, err)
			continue
		}
		if knownURLs[in.URL] {
			report.SourcesSkipped++
			continue
		}
		if _, err := sources.Create(ctx, in); err != nil {
			if errors.Is(err, srcUC.ErrDuplicateSource) {
				report.SourcesSkipped++
				continue
			}
			fail("source", ss.Name, err)
			continue
		}
		knownURLs[in.URL] = true
		report.SourcesCreated++
	}
	return report
}

func (ss seedSource) toInput(projectIDs map[string]string) (srcUC.CreateInput, error) {
	in := srcUC.CreateInput{
		Name:                  ss.Name,
		URL:                   strings.TrimSpace(ss.URL),
		Type:                  ss.Type,
		Category:              ss.Category,
		ProjectID:             ss.ProjectID,
		CrawlFrequencyMinutes: ss.CrawlFrequencyMinutes,
		Keywords:              ss.Keywords,
		ExcludeKeywords:       ss.ExcludeKeywords,
		Hashtags:              ss.Hashtags,
		Selectors:             entity.Selectors(ss.Selectors),
		Active:                ss.Active,
	}
	if ss.Project != "" {
		id, ok := projectIDs[strings.ToLower(strings.TrimSpace(ss.Project))]
		if !ok {
			return in, fmt.Errorf("unknown project %q", ss.Project)
		}
		in.ProjectID = id
	}
	if cs := ss.CrawlSettings; cs != nil {
		in.CrawlSettings = &entity.CrawlSettings{
			MaxDepth:            cs.MaxDepth,
			DelayMs:             cs.DelayMs,
			FollowExternalLinks: cs.FollowExternalLinks,
			RespectRobots:       cs.RespectRobots == nil || *cs.RespectRobots,
			UserAgent:           cs.UserAgent,
			Headers:             cs.Headers,
			TimeoutSeconds:      cs.TimeoutSeconds,
			MaxRedirects:        cs.MaxRedirects,
		}
	}
	return in, nil
}

func (c *cli) printSeedPlan(seed *seedFile) error {
	if c.jsonOutput() {
		return c.printJSON(seed)
	}
	fmt.Fprintf(c.out, "%d projects, %d sources (dry run)\n", len(seed.Projects), len(seed.Sources))
	for _, p := range seed.Projects {
		fmt.Fprintf(c.out, "  project  %s\n", p.Name)
	}
	for _, s := range seed.Sources {
		fmt.Fprintf(c.out, "  source   %s  %s\n", s.Name, s.URL)
	}
	return nil
}

func (c *cli) printSeedReport(r seedReport) error {
	if c.jsonOutput() {
		return c.printJSON(r)
	}
	fmt.Fprintf(c.out, "projects: %d created, %d skipped\n", r.ProjectsCreated, r.ProjectsSkipped)
	fmt.Fprintf(c.out, "sources:  %d created, %d skipped\n", r.SourcesCreated, r.SourcesSkipped)
	for _, e := range r.Errors {
		fmt.Fprintf(c.out, "error: %s\n", e)
	}
	return nil
}
