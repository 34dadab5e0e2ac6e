package config

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvInt(t *testing.T) {
	t.Run("unset uses default silently", func(t *testing.T) {
		t.Setenv("WW_TEST_INT", "")
		r := LoadEnvInt("WW_TEST_INT", 7, nil)
		assert.Equal(t, 7, r.Value)
		assert.False(t, r.FallbackApplied)
		assert.Empty(t, r.Warnings)
	})

	t.Run("valid", func(t *testing.T) {
		t.Setenv("WW_TEST_INT", "12")
		r := LoadEnvInt("WW_TEST_INT", 7, IntRange(1, 20))
		assert.Equal(t, 12, r.Value)
		assert.False(t, r.FallbackApplied)
	})

	t.Run("parse error falls back", func(t *testing.T) {
		t.Setenv("WW_TEST_INT", "twelve")
		r := LoadEnvInt("WW_TEST_INT", 7, nil)
		assert.Equal(t, 7, r.Value)
		assert.True(t, r.FallbackApplied)
		require.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0], "WW_TEST_INT='twelve'")
	})

	t.Run("validation error falls back", func(t *testing.T) {
		t.Setenv("WW_TEST_INT", "99")
		r := LoadEnvInt("WW_TEST_INT", 7, IntRange(1, 20))
		assert.Equal(t, 7, r.Value)
		assert.True(t, r.FallbackApplied)
	})
}

func TestLoadEnvDurationAndBool(t *testing.T) {
	t.Setenv("WW_TEST_DUR", "90s")
	t.Setenv("WW_TEST_BOOL", "nope")

	d := LoadEnvDuration("WW_TEST_DUR", time.Second, ValidatePositiveDuration)
	assert.Equal(t, 90*time.Second, d.Value)

	b := LoadEnvBool("WW_TEST_BOOL", true)
	assert.True(t, b.Value)
	assert.True(t, b.FallbackApplied)
}

func TestLoader_CollectsWarnings(t *testing.T) {
	t.Setenv("WW_A", "bad")
	t.Setenv("WW_B", "mongo")
	t.Setenv("WW_C", "-5")

	var l Loader
	a := Get(&l, "WW_A", LoadEnvDuration("WW_A", time.Minute, nil))
	b := Get(&l, "WW_B", LoadEnvWithFallback("WW_B", "postgres", OneOf("mongo", "postgres")))
	c := Get(&l, "WW_C", LoadEnvInt64("WW_C", 1024, Int64Range(1, 1<<20)))
	l.Done()

	assert.Equal(t, time.Minute, a)
	assert.Equal(t, "mongo", b)
	assert.Equal(t, int64(1024), c)
	assert.Equal(t, []string{"WW_A", "WW_C"}, l.Fallbacks)
	assert.Len(t, l.Warnings, 2)
}

func TestLoader_Metrics(t *testing.T) {
	t.Setenv("WW_M", "nope")
	reg := prometheus.NewRegistry()
	m := newConfigMetrics(reg, "test")

	l := Loader{Metrics: m}
	_ = Get(&l, "WW_M", LoadEnvInt("WW_M", 3, nil))
	l.Done()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("WW_M")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Positive(t, testutil.ToFloat64(m.LoadedAt))

	// 正常値で再ロードするとフラグは下がる
	t.Setenv("WW_M", "4")
	l = Loader{Metrics: m}
	assert.Equal(t, 4, Get(&l, "WW_M", LoadEnvInt("WW_M", 3, nil)))
	l.Done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("*/5 * * * *"))
	assert.NoError(t, ValidateCronSchedule("@every 10m"))
	assert.Error(t, ValidateCronSchedule(""))
	assert.Error(t, ValidateCronSchedule("61 * * * *"))

	assert.NoError(t, ValidateTimezone("America/Sao_Paulo"))
	assert.Error(t, ValidateTimezone("Mars/Olympus"))

	assert.Error(t, ValidatePositiveDuration(0))
	assert.NoError(t, DurationRange(time.Second, time.Minute)(30*time.Second))
	assert.Error(t, DurationRange(time.Second, time.Minute)(time.Hour))

	assert.NoError(t, OneOf("pt", "en")("EN"))
	assert.Error(t, OneOf("pt", "en")("fr"))
}
