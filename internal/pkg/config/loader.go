// Package config loads settings from environment variables with fail-open
// semantics: an unparsable or invalid value never aborts startup, it falls
// back to the default and produces a warning the caller is expected to log.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigLoadResult is the outcome of loading one value.
type ConfigLoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func fallback[T any](envKey, raw string, def T, reason error) ConfigLoadResult[T] {
	return ConfigLoadResult[T]{
		Value:           def,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, reason, def)},
		FallbackApplied: true,
	}
}

// load reads envKey, parses and validates it. Unset or empty variables
// yield the default without a warning.
func load[T any](envKey string, def T, parse func(string) (T, error), validator func(T) error) ConfigLoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return ConfigLoadResult[T]{Value: def}
	}
	v, err := parse(raw)
	if err != nil {
		return fallback(envKey, raw, def, err)
	}
	if validator != nil {
		if err := validator(v); err != nil {
			return fallback(envKey, raw, def, err)
		}
	}
	return ConfigLoadResult[T]{Value: v}
}

// LoadEnvString returns the variable or defaultValue when unset. No validation.
func LoadEnvString(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// LoadEnvWithFallback loads a validated string.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a Go duration string ("30s", "5m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult[int] {
	return load(envKey, defaultValue, strconv.Atoi, validator)
}

// LoadEnvInt64 loads a base-10 64-bit integer (byte sizes).
func LoadEnvInt64(envKey string, defaultValue int64, validator func(int64) error) ConfigLoadResult[int64] {
	return load(envKey, defaultValue, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }, validator)
}

// LoadEnvBool loads a boolean accepted by strconv.ParseBool.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult[bool] {
	return load(envKey, defaultValue, strconv.ParseBool, nil)
}

// Loader accumulates warnings across several loads so config structs can be
// filled field by field.
//
//	var l config.Loader
//	cfg.Timeout = config.Get(&l, config.LoadEnvDuration("FETCH_TIMEOUT", 30*time.Second, config.ValidatePositiveDuration))
//	for _, w := range l.Warnings { logger.Warn(w) }
type Loader struct {
	Warnings []string
	// Fallbacks lists the env keys that fell back, in load order.
	Fallbacks []string
	Metrics   *ConfigMetrics
}

// Get records r's warnings on l and returns its value.
func Get[T any](l *Loader, envKey string, r ConfigLoadResult[T]) T {
	if r.FallbackApplied {
		l.Warnings = append(l.Warnings, r.Warnings...)
		l.Fallbacks = append(l.Fallbacks, envKey)
		if l.Metrics != nil {
			l.Metrics.fellBack(envKey)
		}
	}
	return r.Value
}

// Done finalizes the load: it stamps the load time and the fallback gauge.
func (l *Loader) Done() {
	if l.Metrics == nil {
		return
	}
	l.Metrics.loaded(len(l.Fallbacks) > 0)
}
