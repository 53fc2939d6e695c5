package scraper

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of scraping a single site.
type Status string

const (
	StatusOK            Status = "ok"
	StatusFetchFailed   Status = "fetch_failed"
	StatusExtractFailed Status = "extract_failed"
	StatusWriteFailed   Status = "write_failed"
)

// SiteResult records what happened to one site during a run.
type SiteResult struct {
	Site         Site   `json:"site"`
	URL          string `json:"url"`
	Status       Status `json:"status"`
	Links        int    `json:"links"`
	Articles     int    `json:"articles"`
	LinksPath    string `json:"links_path,omitempty"`
	ArticlesPath string `json:"articles_path,omitempty"`
	Error        string `json:"error,omitempty"`
}

// OK reports whether both CSV files were written for the site.
func (r SiteResult) OK() bool {
	return r.Status == StatusOK
}

// RunResult is the outcome of one pass over all configured sites.
type RunResult struct {
	RunID      uuid.UUID    `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Sites      []SiteResult `json:"sites"`
}

// Failed returns the number of sites that did not complete.
func (r *RunResult) Failed() int {
	failed := 0
	for _, site := range r.Sites {
		if !site.OK() {
			failed++
		}
	}
	return failed
}
