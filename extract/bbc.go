package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsscrape/scraper"
)

// BBC extracts links and articles from the bbc.com homepage. Teasers are any
// element carrying the gs-c-promo class, headlined by an <h3>.
func BBC(doc *goquery.Document) ([]string, []scraper.ArticleRecord, error) {
	articles, err := teasers(scraper.SiteBBC, doc.Find(".gs-c-promo"), "h3")
	if err != nil {
		return nil, nil, err
	}

	return Links(doc), articles, nil
}
