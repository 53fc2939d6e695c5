// Package newsscrape fetches the Dawn and BBC homepages, extracts their links
// and article teasers, and writes both lists to CSV files.
package newsscrape

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/pevans/newsscrape/config"
	"github.com/pevans/newsscrape/csvout"
	"github.com/pevans/newsscrape/extract"
	"github.com/pevans/newsscrape/scraper"
	"github.com/rs/zerolog"
)

// Target pairs a homepage URL with the extractor that understands it.
type Target struct {
	Site    scraper.Site
	URL     string
	Extract extract.Func // nil selects the site's own extractor
}

// Targets returns the homepages scraped on every run, in order.
func Targets() []Target {
	return []Target{
		{Site: scraper.SiteDawn, URL: "https://www.dawn.com/"},
		{Site: scraper.SiteBBC, URL: "https://www.bbc.com/"},
	}
}

// OutputBase turns a URL into the stem used for its CSV files: the https://
// and www. prefixes are dropped and every slash becomes an underscore.
func OutputBase(url string) string {
	base := strings.TrimPrefix(url, "https://")
	base = strings.TrimPrefix(base, "www.")
	return strings.ReplaceAll(base, "/", "_")
}

// LinksFilename is the name of the link-only CSV for url.
func LinksFilename(url string) string {
	return OutputBase(url) + "_links.csv"
}

// ArticlesFilename is the name of the articles CSV for url.
func ArticlesFilename(url string) string {
	return OutputBase(url) + "_articles.csv"
}

// Fetcher retrieves and parses a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// RunStore records finished runs.
type RunStore interface {
	SaveRun(run *scraper.RunResult) error
}

// Options configures a Scraper. Fetcher is required; everything else has a
// default.
type Options struct {
	Fetcher   Fetcher
	Targets   []Target // defaults to Targets()
	OutputDir string   // defaults to config.DefaultOutputDir
	History   RunStore // nil disables history
	Logger    zerolog.Logger
}

// Scraper drives one pass over the targets. Sites are processed one at a
// time, in order.
type Scraper struct {
	fetcher   Fetcher
	targets   []Target
	outputDir string
	history   RunStore
	log       zerolog.Logger
}

// New creates a scraper from opts.
func New(opts Options) *Scraper {
	if opts.Targets == nil {
		opts.Targets = Targets()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}

	return &Scraper{
		fetcher:   opts.Fetcher,
		targets:   opts.Targets,
		outputDir: opts.OutputDir,
		history:   opts.History,
		log:       opts.Logger,
	}
}

// Run scrapes every target. A failing site is logged, recorded in the
// result and skipped; it never stops the remaining sites. The returned error
// is only non-nil when the run could not be saved to history.
func (s *Scraper) Run(ctx context.Context) (*scraper.RunResult, error) {
	run := &scraper.RunResult{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
	lg := s.log.With().Str("run_id", run.RunID.String()).Logger()

	for _, target := range s.targets {
		run.Sites = append(run.Sites, s.scrape(ctx, lg, target))
	}
	run.FinishedAt = time.Now()

	lg.Info().
		Int("sites", len(run.Sites)).
		Int("failed", run.Failed()).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("Run finished")

	if s.history != nil {
		if err := s.history.SaveRun(run); err != nil {
			return run, fmt.Errorf("failed to save run history: %w", err)
		}
	}

	return run, nil
}

// scrape fetches, extracts and writes a single target.
func (s *Scraper) scrape(ctx context.Context, lg zerolog.Logger, target Target) scraper.SiteResult {
	result := scraper.SiteResult{Site: target.Site, URL: target.URL}
	lg = lg.With().Stringer("site", target.Site).Logger()

	lg.Info().Msgf("Scraping %s", target.URL)

	extractFn := target.Extract
	if extractFn == nil {
		var err error
		if extractFn, err = extract.For(target.Site); err != nil {
			lg.Error().Err(err).Msgf("Error extracting %s", target.URL)
			result.Status = scraper.StatusExtractFailed
			result.Error = err.Error()
			return result
		}
	}

	doc, err := s.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		lg.Error().Err(err).Msgf("Error fetching %s", target.URL)
		result.Status = scraper.StatusFetchFailed
		result.Error = err.Error()
		return result
	}

	links, articles, err := extractFn(doc)
	if err != nil {
		lg.Error().Err(err).Msgf("Error extracting %s", target.URL)
		result.Status = scraper.StatusExtractFailed
		result.Error = err.Error()
		return result
	}
	result.Links = len(links)
	result.Articles = len(articles)

	linksPath := filepath.Join(s.outputDir, LinksFilename(target.URL))
	if err := csvout.WriteFile(linksPath, scraper.LinkRecords(links)); err != nil {
		lg.Error().Err(err).Msgf("Error saving links for %s", target.URL)
		result.Status = scraper.StatusWriteFailed
		result.Error = err.Error()
		return result
	}
	result.LinksPath = linksPath

	articlesPath := filepath.Join(s.outputDir, ArticlesFilename(target.URL))
	if err := csvout.WriteFile(articlesPath, articles); err != nil {
		lg.Error().Err(err).Msgf("Error saving articles for %s", target.URL)
		result.Status = scraper.StatusWriteFailed
		result.Error = err.Error()
		return result
	}
	result.ArticlesPath = articlesPath

	lg.Info().
		Int("links", result.Links).
		Int("articles", result.Articles).
		Str("links_path", linksPath).
		Str("articles_path", articlesPath).
		Msgf("Saved %s", target.URL)

	result.Status = scraper.StatusOK
	return result
}
