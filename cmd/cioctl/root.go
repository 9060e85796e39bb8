package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/constructorio/client"
	"github.com/jonesrussell/north-cloud/constructorio/config"
	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/metrics"
	"github.com/jonesrussell/north-cloud/constructorio/response"
	"github.com/jonesrussell/north-cloud/constructorio/store"
)

const stateFile = "state.db"

type rootOptions struct {
	configPath   string
	apiKey       string
	storeDriver  string
	storePath    string
	debug        bool
	printMetrics bool
}

type app struct {
	opts   rootOptions
	out    io.Writer
	errOut io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout, errOut: stderr}

	root := &cobra.Command{
		Use:           "cioctl",
		Short:         "Query and track against the search API",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (YAML); environment variables apply on top")
	flags.StringVar(&a.opts.apiKey, "api-key", "", "API key, overrides the config")
	flags.StringVar(&a.opts.storeDriver, "store", "", "identity store: memory, sqlite or redis; overrides store.driver (default sqlite)")
	flags.StringVar(&a.opts.storePath, "store-path", defaultStatePath(), "SQLite file for the sqlite store")
	flags.BoolVar(&a.opts.debug, "debug", false, "log at debug level")
	flags.BoolVar(&a.opts.printMetrics, "print-metrics", false, "print Prometheus metrics to stderr on exit")

	root.AddCommand(
		a.autocompleteCommand(),
		a.searchCommand(),
		a.browseCommand(),
		a.browseItemsCommand(),
		a.browseFacetsCommand(),
		a.browseFacetOptionsCommand(),
		a.browseGroupsCommand(),
		a.recommendationsCommand(),
		a.quizCommand(),
		a.identityCommand(),
		a.resetSessionCommand(),
		a.trackCommand(),
	)
	return root
}

func defaultStatePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cioctl", stateFile)
}

// loadConfig reads the config and applies the persistent flags. Identity is
// kept in SQLite when neither the flags, the file nor the environment name a
// store, so it survives between invocations.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := a.opts.configPath
	if path == "" {
		path = config.GetConfigPath("")
	}
	cfg, err := config.LoadWithDefaults(path, cliDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if a.opts.apiKey != "" {
		cfg.APIKey = a.opts.apiKey
	}
	if a.opts.storeDriver != "" {
		cfg.Store.Driver = a.opts.storeDriver
	}
	if cmd.Flags().Changed("store-path") || cfg.Store.Path == "" {
		cfg.Store.Path = a.opts.storePath
	}
	if a.opts.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func cliDefaults(cfg *config.Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = config.StoreDriverSQLite
	}
	config.SetDefaults(cfg)
}

// withClient builds a client for the length of one command.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) (err error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      logger.FormatConsole,
		Development: a.opts.debug,
		Writer:      a.errOut,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Store.Driver == config.StoreDriverSQLite {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o750); mkErr != nil {
			return fmt.Errorf("create state directory: %w", mkErr)
		}
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { err = errors.Join(err, st.Close()) }()

	opts := []client.Option{client.WithLogger(log)}
	var collector *metrics.Collector
	if a.opts.printMetrics {
		collector = metrics.New()
		opts = append(opts, client.WithMetrics(collector))
	}

	c, err := client.New(cfg, st, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	err = fn(ctx, c)
	err = errors.Join(err, c.Close(context.WithoutCancel(ctx)))

	if collector != nil {
		err = errors.Join(err, collector.WriteText(a.errOut))
	}
	return err
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints the value of env, or an empty object when the service had no results.
func emit[T any](a *app, env response.Envelope[T]) error {
	if err := env.Err(); err != nil {
		return err
	}
	v, ok := env.Value()
	if !ok {
		return a.printJSON(struct{}{})
	}
	return a.printJSON(v)
}
