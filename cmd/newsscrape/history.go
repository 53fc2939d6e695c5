package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pevans/newsscrape/history"
	"github.com/pevans/newsscrape/scraper"
)

type historyCmd struct {
	Limit int `long:"limit" default:"10" description:"number of runs to show, 0 for all"`

	opts *options
	out  io.Writer
}

// Execute prints the most recent runs and the outcome of each site.
func (c *historyCmd) Execute(_ []string) error {
	cfg, err := resolveConfig(c.opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.HistoryDB == "" {
		return errors.New("no history database configured (set --history-db or history_db)")
	}

	store, err := history.OpenReadOnly(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(c.Limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	printRuns(c.out, runs)
	return nil
}

// printRuns prints runs in human-readable table format
func printRuns(w io.Writer, runs []scraper.RunResult) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  (%s, %d failed)\n",
			run.RunID.String(),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
			run.Failed(),
		)

		for _, site := range run.Sites {
			fmt.Fprintf(w, "   %-6s %-15s links=%-5d articles=%-5d %s\n",
				site.Site,
				site.Status,
				site.Links,
				site.Articles,
				site.URL,
			)
			if site.Error != "" {
				fmt.Fprintf(w, "          error: %s\n", site.Error)
			}
		}
		fmt.Fprintln(w)
	}
}
