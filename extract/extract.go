// Package extract holds the site-specific extractors that turn a parsed
// homepage into a list of links and a list of article records.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsscrape/scraper"
	"github.com/samber/lo"
)

var (
	// ErrMissingLink is returned when an article element has no anchor to
	// take its link from.
	ErrMissingLink = errors.New("article has no link")
	ErrUnknownSite = errors.New("no extractor for site")
)

// ExtractionError describes an article element that could not be turned
// into a record.
type ExtractionError struct {
	Site  scraper.Site
	Index int // position of the article element within the page
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: article %d: %v", e.Site, e.Index, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Func extracts links and article records from a parsed homepage.
type Func func(doc *goquery.Document) (links []string, articles []scraper.ArticleRecord, err error)

// For returns the extractor for the given site.
func For(site scraper.Site) (Func, error) {
	switch site {
	case scraper.SiteDawn:
		return Dawn, nil
	case scraper.SiteBBC:
		return BBC, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSite, site)
	}
}

// Links returns the href of every anchor on the page whose href contains
// "http". Order follows the document and duplicates are kept.
func Links(doc *goquery.Document) []string {
	hrefs := doc.Find("a[href]").Map(func(_ int, s *goquery.Selection) string {
		href, _ := s.Attr("href")
		return href
	})

	return lo.Filter(hrefs, func(href string, _ int) bool {
		return strings.Contains(href, "http")
	})
}

// teasers builds one record per element in sel. The title comes from the
// first titleTag descendant, the description from the first <p>, and the
// link from the first anchor, which must exist.
func teasers(site scraper.Site, sel *goquery.Selection, titleTag string) ([]scraper.ArticleRecord, error) {
	records := make([]scraper.ArticleRecord, 0, sel.Length())

	var err error
	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		link, ok := s.Find("a").First().Attr("href")
		if !ok {
			err = &ExtractionError{Site: site, Index: i, Err: ErrMissingLink}
			return false
		}

		records = append(records, scraper.ArticleRecord{
			Title:       firstText(s, titleTag),
			Description: firstText(s, "p"),
			Link:        link,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// firstText returns the trimmed text of the first tag descendant of s, or ""
// if there is none.
func firstText(s *goquery.Selection, tag string) string {
	found := s.Find(tag).First()
	if found.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(found.Text())
}
