package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pevans/newsscrape"
	"github.com/pevans/newsscrape/config"
	"github.com/pevans/newsscrape/fetcher"
	"github.com/pevans/newsscrape/history"
	"github.com/pevans/newsscrape/logger"
	"github.com/rs/zerolog"
)

type options struct {
	Config    string        `long:"config" env:"NEWSSCRAPE_CONFIG" description:"path to YAML config file (default: ~/.newsscrape/config.yaml)"`
	OutputDir string        `long:"output-dir" env:"NEWSSCRAPE_OUTPUT_DIR" description:"directory for CSV output (default: scraped_data)"`
	Timeout   time.Duration `long:"timeout" env:"NEWSSCRAPE_TIMEOUT" description:"per-request timeout, 0 for none"`
	UserAgent string        `long:"user-agent" env:"NEWSSCRAPE_USER_AGENT" description:"User-Agent header for requests"`
	HistoryDB string        `long:"history-db" env:"NEWSSCRAPE_HISTORY_DB" description:"SQLite file recording runs (disabled when empty)"`
	JSONLogs  bool          `long:"json-logs" env:"JSON_LOGS" description:"turn on json logs"`
	Debug     bool          `long:"dbg" env:"DEBUG" description:"turn on debug mode"`

	History historyCmd `command:"history" description:"show recent runs from the history database"`
}

// app carries what a run writes to and scrapes. Targets defaults to
// newsscrape.Targets().
type app struct {
	stdout  io.Writer
	targets []newsscrape.Target
}

func main() {
	a := &app{stdout: os.Stdout}
	os.Exit(a.run(os.Args[1:]))
}

// run parses args, performs the selected command and returns the exit code.
// Per-site failures still exit 0.
func (a *app) run(args []string) int {
	var opts options
	opts.History.opts = &opts
	opts.History.out = a.stdout

	p := flags.NewParser(&opts, flags.Default)
	p.SubcommandsOptional = true

	if _, err := p.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	// A subcommand has already run inside Parse
	if p.Active != nil {
		return 0
	}

	lg := logger.New(a.stdout, logger.Options{Debug: opts.Debug, JSON: opts.JSONLogs})
	if err := a.scrape(lg, &opts); err != nil {
		lg.Error().Err(err).Msg("Scrape failed")
		return 1
	}
	return 0
}

// resolveConfig merges defaults, the config file and command-line overrides.
func resolveConfig(opts *options) (config.Config, error) {
	path := opts.Config
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = defaultPath
	}

	return config.Resolve(path, config.Config{
		OutputDir: opts.OutputDir,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		HistoryDB: opts.HistoryDB,
	})
}

// scrape performs one run over all sites. Per-site failures are only
// logged; an error is returned for setup problems and history failures.
func (a *app) scrape(lg zerolog.Logger, opts *options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var store newsscrape.RunStore
	if cfg.HistoryDB != "" {
		historyStore, err := history.NewStore(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer historyStore.Close()
		store = historyStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newsscrape.New(newsscrape.Options{
		Fetcher: fetcher.New(fetcher.Options{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Logger:    lg.With().Str("prefix", "fetcher").Logger(),
		}),
		Targets:   a.targets,
		OutputDir: cfg.OutputDir,
		History:   store,
		Logger:    lg,
	})

	_, err = s.Run(ctx)
	return err
}
