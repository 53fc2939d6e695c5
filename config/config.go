package config

import "time"

// DefaultOutputDir is where CSV files are written unless configured
// otherwise.
const DefaultOutputDir = "scraped_data"

// Config holds the settings for a scrape run. A zero field means "not set"
// when merging.
type Config struct {
	// Directory the CSV files are written under
	OutputDir string `yaml:"output_dir"`
	// Per-request timeout; zero leaves the HTTP client default (none)
	Timeout time.Duration `yaml:"timeout"`
	// User-Agent header sent with each request; empty sends Go's default
	UserAgent string `yaml:"user_agent"`
	// Path to the SQLite run history; empty disables history
	HistoryDB string `yaml:"history_db"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		OutputDir: DefaultOutputDir,
	}
}

// Merge returns c with every non-zero field of over applied on top.
func (c Config) Merge(over Config) Config {
	if over.OutputDir != "" {
		c.OutputDir = over.OutputDir
	}
	if over.Timeout != 0 {
		c.Timeout = over.Timeout
	}
	if over.UserAgent != "" {
		c.UserAgent = over.UserAgent
	}
	if over.HistoryDB != "" {
		c.HistoryDB = over.HistoryDB
	}
	return c
}

// Resolve builds the effective configuration: defaults, then the config
// file at path (if it exists), then overrides.
func Resolve(path string, overrides Config) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if fileCfg != nil {
		cfg = cfg.Merge(*fileCfg)
	}

	return cfg.Merge(overrides), nil
}
