package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"webwatch/internal/domain/entity"
	"webwatch/internal/infra/classifier"
	"webwatch/internal/usecase/sentiment"
)

type analysis struct {
	Text      string           `json:"text"`
	Sentiment entity.Sentiment `json:"sentiment"`
}

func (c *cli) analyzeCmd() *cobra.Command {
	var batch bool
	var chunkSize int
	var pause time.Duration
	var language string
	cmd := &cobra.Command{
		Use:   "analyze [--batch] <text...>",
		Short: "Classify the sentiment of text",
		Long: `Classify each argument with the configured sentiment provider
(SENTIMENT_PROVIDER), falling back to the lexicon. Pass "-" to read one
text per line from stdin. With --batch the texts are sent in chunks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := collectTexts(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg := classifier.LoadConfigFromEnv(c.logger)
			if language != "" {
				cfg.Language = language
			}
			analyzer := classifier.NewAnalyzer(cfg,
				c.v.GetString("anthropic_api_key"),
				c.v.GetString("openai_api_key"),
				c.logger)

			var results []entity.Sentiment
			if batch {
				results = sentiment.AnalyzeBatch(cmd.Context(), analyzer, texts, sentiment.BatchOptions{
					ChunkSize: chunkSize,
					Pause:     pause,
				})
			} else {
				for _, t := range texts {
					results = append(results, analyzer.Analyze(cmd.Context(), t))
				}
			}
			return c.printAnalyses(texts, results)
		},
	}
	cmd.Flags().BoolVar(&batch, "batch", false, "classify in chunks with one request per chunk")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", sentiment.DefaultChunkSize, "texts per batch request")
	cmd.Flags().DurationVar(&pause, "pause", time.Second, "pause between batch requests")
	cmd.Flags().StringVar(&language, "language", "", "lexicon language: pt or en (default SENTIMENT_LANGUAGE)")
	return cmd
}

// collectTexts expands "-" into the non-blank lines of stdin.
func collectTexts(args []string, stdin io.Reader) ([]string, error) {
	var texts []string
	for _, a := range args {
		if a != "-" {
			if strings.TrimSpace(a) != "" {
				texts = append(texts, a)
			}
			continue
		}
		if stdin == nil {
			stdin = os.Stdin
		}
		sc := bufio.NewScanner(stdin)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				texts = append(texts, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	if len(texts) == 0 {
		return nil, errors.New("no text to analyze")
	}
	return texts, nil
}

func (c *cli) printAnalyses(texts []string, results []entity.Sentiment) error {
	out := make([]analysis, len(texts))
	for i := range texts {
		out[i] = analysis{Text: texts[i], Sentiment: results[i]}
	}
	if c.jsonOutput() {
		return c.printJSON(out)
	}
	for _, a := range out {
		fmt.Fprintf(c.out, "%-8s score=%+.2f confidence=%.2f  %s\n",
			a.Sentiment.Label, a.Sentiment.Score, a.Sentiment.Confidence, preview(a.Text, 60))
	}
	return nil
}

func preview(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
