package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webwatch/internal/domain/entity"
	"webwatch/internal/infra/db"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

/* ───────── configuration ───────── */

func TestStorageConfig(t *testing.T) {
	t.Run("defaults to mongo", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		t.Setenv("WEBWATCH_STORAGE_DRIVER", "")
		c := &cli{v: newViper()}
		cfg, err := c.storageConfig()
		require.NoError(t, err)
		assert.Equal(t, db.DriverMongo, cfg.Driver)
		assert.Equal(t, "webwatch", cfg.MongoDatabase)
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		t.Setenv("WEBWATCH_STORAGE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "postgres://u:p@localhost/webwatch")
		c := &cli{v: newViper()}
		cfg, err := c.storageConfig()
		require.NoError(t, err)
		assert.Equal(t, db.DriverPostgres, cfg.Driver)
		assert.Equal(t, "postgres://u:p@localhost/webwatch", cfg.DatabaseURL)
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("WEBWATCH_STORAGE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")
		t.Setenv("WEBWATCH_DATABASE_URL", "")
		_, err := (&cli{v: newViper()}).storageConfig()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("WEBWATCH_STORAGE_DRIVER", "redis")
		_, err := (&cli{v: newViper()}).storageConfig()
		assert.ErrorContains(t, err, "invalid storage driver")
	})
}

func TestRoot_InvalidOutput(t *testing.T) {
	_, err := execute(t, "", "analyze", "--output", "xml", "hello")
	assert.ErrorContains(t, err, "invalid output")
}

/* ───────── crawl ───────── */

func TestCrawl_RequiresExactlyOneMode(t *testing.T) {
	_, err := execute(t, "", "crawl")
	assert.ErrorContains(t, err, "exactly one of --source or --due")

	_, err = execute(t, "", "crawl", "--source", "abc", "--due")
	assert.ErrorContains(t, err, "exactly one of --source or --due")
}

/* ───────── analyze ───────── */

func TestAnalyze_JSON(t *testing.T) {
	t.Setenv("SENTIMENT_PROVIDER", "lexicon")
	t.Setenv("SENTIMENT_LANGUAGE", "en")

	out, err := execute(t, "", "analyze", "-o", "json", "This is really great!", "terrible and broken")
	require.NoError(t, err)

	var got []analysis
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, entity.SentimentPositive, got[0].Sentiment.Label)
	assert.Equal(t, entity.SentimentNegative, got[1].Sentiment.Label)
}

func TestAnalyze_BatchFromStdin(t *testing.T) {
	t.Setenv("SENTIMENT_PROVIDER", "lexicon")

	out, err := execute(t, "great product\n\nawful support\n", "analyze", "--batch", "--pause", "0s", "--language", "en", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], entity.SentimentPositive))
	assert.True(t, strings.HasPrefix(lines[1], entity.SentimentNegative))
}

func TestCollectTexts(t *testing.T) {
	texts, err := collectTexts([]string{"a", "  ", "-"}, strings.NewReader("b\n\n c \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)

	_, err = collectTexts([]string{" "}, nil)
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n  text", 60))
	assert.Equal(t, "abcdefg...", preview(strings.Repeat("abcdefghij", 3), 10))
}
