package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"webwatch/internal/domain/entity"
	"webwatch/internal/infra/pipeline"
	"webwatch/internal/usecase/crawl"
)

// crawlSummary is the printable form of one source crawl.
type crawlSummary struct {
	SourceID   string   `json:"source_id"`
	Found      int      `json:"found"`
	Persisted  int      `json:"persisted"`
	Duplicates int      `json:"duplicates"`
	Rejected   int      `json:"rejected"`
	Errors     []string `json:"errors,omitempty"`
	Duration   string   `json:"duration"`
}

type batchSummary struct {
	Succeeded     int      `json:"succeeded"`
	Failed        int      `json:"failed"`
	Skipped       int      `json:"skipped"`
	TotalArticles int      `json:"total_articles"`
	Failures      []string `json:"failures,omitempty"`
	Duration      string   `json:"duration"`
}

func (c *cli) crawlCmd() *cobra.Command {
	var sourceID string
	var due, noAlerts bool
	cmd := &cobra.Command{
		Use:   "crawl (--source <id> | --due)",
		Short: "Crawl one source now, or every source that is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (sourceID == "") == !due {
				return errors.New("exactly one of --source or --due is required")
			}

			stores, closeFn, err := c.openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			p := pipeline.Build(stores, pipeline.Options{DisableAlerts: noAlerts}, c.logger)

			if due {
				res, err := p.Scheduler.RunDueSources(cmd.Context())
				if err != nil {
					return fmt.Errorf("batch crawl: %w", err)
				}
				return c.printBatch(res)
			}

			res, err := p.Crawler.CrawlByID(cmd.Context(), sourceID)
			switch {
			case errors.Is(err, entity.ErrNotFound):
				return fmt.Errorf("source %s not found", sourceID)
			case errors.Is(err, crawl.ErrSourceInactive):
				return fmt.Errorf("source %s is inactive", sourceID)
			case errors.Is(err, crawl.ErrCrawlInProgress):
				return fmt.Errorf("source %s is already being crawled", sourceID)
			}
			if res != nil {
				if perr := c.printCrawl(res); perr != nil {
					return perr
				}
			}
			if err != nil {
				return fmt.Errorf("crawl %s: %w", sourceID, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&sourceID, "source", "s", "", "source id to crawl")
	cmd.Flags().BoolVar(&due, "due", false, "crawl every active source whose next crawl has passed")
	cmd.Flags().BoolVar(&noAlerts, "no-alerts", false, "do not send slack/discord alerts")
	return cmd
}

func summarizeCrawl(res *crawl.SourceResult) crawlSummary {
	s := crawlSummary{
		SourceID:   res.SourceID,
		Found:      res.Found,
		Persisted:  res.Persisted,
		Duplicates: res.Duplicates,
		Rejected:   res.Rejected,
		Duration:   res.Duration.Round(time.Millisecond).String(),
	}
	for _, e := range res.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	return s
}

func summarizeBatch(res *crawl.BatchResult) batchSummary {
	s := batchSummary{
		Succeeded:     res.Succeeded,
		Failed:        res.Failed,
		Skipped:       res.Skipped,
		TotalArticles: res.TotalArticles,
		Duration:      res.Duration.Round(time.Millisecond).String(),
	}
	for _, id := range slices.Sorted(maps.Keys(res.Failures)) {
		s.Failures = append(s.Failures, id+": "+res.Failures[id].Error())
	}
	return s
}

func (c *cli) printCrawl(res *crawl.SourceResult) error {
	s := summarizeCrawl(res)
	if c.jsonOutput() {
		return c.printJSON(s)
	}
	fmt.Fprintf(c.out, "source %s: found=%d persisted=%d duplicates=%d rejected=%d (%s)\n",
		s.SourceID, s.Found, s.Persisted, s.Duplicates, s.Rejected, s.Duration)
	for _, e := range s.Errors {
		fmt.Fprintf(c.out, "  error: %s\n", e)
	}
	return nil
}

func (c *cli) printBatch(res *crawl.BatchResult) error {
	s := summarizeBatch(res)
	if c.jsonOutput() {
		return c.printJSON(s)
	}
	fmt.Fprintf(c.out, "batch: succeeded=%d failed=%d skipped=%d articles=%d (%s)\n",
		s.Succeeded, s.Failed, s.Skipped, s.TotalArticles, s.Duration)
	for _, f := range s.Failures {
		fmt.Fprintf(c.out, "  failure: %s\n", f)
	}
	return nil
}
