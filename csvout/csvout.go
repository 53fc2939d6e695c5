// Package csvout writes article records to CSV files with a fixed
// Title,Description,Link header.
package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/pevans/newsscrape/scraper"
)

// Header is the first row of every file written by this package.
var Header = []string{"Title", "Description", "Link"}

// ErrBadHeader is returned by Read when the first row is not Header.
var ErrBadHeader = errors.New("unexpected csv header")

// Write writes the header followed by one row per record, in order.
func Write(w io.Writer, records []scraper.ArticleRecord) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Title, rec.Description, rec.Link}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates the parent directories of path and writes records to
// it, replacing any existing file. The write is not atomic.
func WriteFile(path string, records []scraper.ArticleRecord) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := Write(f, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Read parses a CSV produced by Write back into records.
func Read(r io.Reader) ([]scraper.ArticleRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrBadHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	records := []scraper.ArticleRecord{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		records = append(records, scraper.ArticleRecord{
			Title:       row[0],
			Description: row[1],
			Link:        row[2],
		})
	}

	return records, nil
}

// ReadFile reads a CSV file produced by WriteFile.
func ReadFile(path string) ([]scraper.ArticleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}
