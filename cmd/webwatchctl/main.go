// Command webwatchctl is the operator CLI: it seeds sources and projects
// from YAML, triggers crawls outside the worker schedule and runs the
// sentiment classifier on ad-hoc text.
//
// Settings come from flags, WEBWATCH_* environment variables, the plain
// service variables (STORAGE_DRIVER, MONGODB_URI, ...) and an optional
// YAML config file, in that order of precedence.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webwatch/internal/infra/db"
	"webwatch/internal/observability/logging"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// cli carries what every subcommand needs.
type cli struct {
	v      *viper.Viper
	out    io.Writer
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: newViper(), out: out, logger: logging.NewTextLogger()}
	var cfgFile string
	var verbose bool

	root := &cobra.Command{
		Use:           "webwatchctl",
		Short:         "Operate the webwatch crawler",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			if cfgFile != "" {
				c.v.SetConfigFile(cfgFile)
				if err := c.v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			switch o := c.v.GetString("output"); o {
			case outputText, outputJSON:
			default:
				return fmt.Errorf("invalid output %q (must be text or json)", o)
			}
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file path (yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringP("output", "o", outputText, "output format: text or json")
	pf.String("storage", db.DriverMongo, "storage driver: mongo or postgres")
	_ = c.v.BindPFlag("output", pf.Lookup("output"))
	_ = c.v.BindPFlag("storage.driver", pf.Lookup("storage"))

	root.AddCommand(c.seedCmd(), c.crawlCmd(), c.analyzeCmd())
	return root
}

// newViper binds each key to its WEBWATCH_* variable first and to the
// variable the services read second.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WEBWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("output", outputText)
	v.SetDefault("storage.driver", db.DriverMongo)
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "webwatch")

	_ = v.BindEnv("storage.driver", "WEBWATCH_STORAGE_DRIVER", "STORAGE_DRIVER")
	_ = v.BindEnv("mongodb.uri", "WEBWATCH_MONGODB_URI", "MONGODB_URI")
	_ = v.BindEnv("mongodb.database", "WEBWATCH_MONGODB_DATABASE", "MONGODB_DATABASE")
	_ = v.BindEnv("database_url", "WEBWATCH_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("anthropic_api_key", "WEBWATCH_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai_api_key", "WEBWATCH_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.AutomaticEnv()
	return v
}

func (c *cli) storageConfig() (db.StorageConfig, error) {
	cfg := db.StorageConfig{
		Driver:        strings.ToLower(c.v.GetString("storage.driver")),
		MongoURI:      c.v.GetString("mongodb.uri"),
		MongoDatabase: c.v.GetString("mongodb.database"),
		DatabaseURL:   c.v.GetString("database_url"),
		Pool:          db.DefaultConnectionConfig(),
	}
	switch cfg.Driver {
	case db.DriverMongo:
	case db.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("database_url is required for the postgres driver")
		}
	default:
		return cfg, fmt.Errorf("invalid storage driver %q (must be mongo or postgres)", cfg.Driver)
	}
	return cfg, nil
}

// openStores connects and returns a closer suitable for defer.
func (c *cli) openStores(ctx context.Context) (*db.Stores, func(), error) {
	cfg, err := c.storageConfig()
	if err != nil {
		return nil, nil, err
	}
	stores, err := db.OpenStores(ctx, cfg, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return stores, func() {
		if err := stores.Close(context.Background()); err != nil {
			c.logger.Warn("failed to close storage", slog.Any("error", err))
		}
	}, nil
}

func (c *cli) jsonOutput() bool { return c.v.GetString("output") == outputJSON }

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
