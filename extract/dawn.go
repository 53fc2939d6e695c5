package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsscrape/scraper"
)

// Dawn extracts links and articles from the dawn.com homepage. Every
// <article> element is a teaser with its headline in an <h2>.
func Dawn(doc *goquery.Document) ([]string, []scraper.ArticleRecord, error) {
	articles, err := teasers(scraper.SiteDawn, doc.Find("article"), "h2")
	if err != nil {
		return nil, nil, err
	}

	return Links(doc), articles, nil
}
