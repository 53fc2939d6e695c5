package scraper

// ArticleRecord is a single article teaser extracted from a homepage. It maps
// to one row of an output CSV file.
type ArticleRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// LinkRecord wraps a bare link in a record with an empty title and
// description, which is how links are written to the link-only CSV.
func LinkRecord(link string) ArticleRecord {
	return ArticleRecord{Link: link}
}

// LinkRecords converts a list of links to link-only records, preserving
// order.
func LinkRecords(links []string) []ArticleRecord {
	records := make([]ArticleRecord, 0, len(links))
	for _, link := range links {
		records = append(records, LinkRecord(link))
	}
	return records
}

// Site identifies one of the homepages the scraper knows how to read.
type Site int

const (
	SiteDawn Site = iota + 1
	SiteBBC
)

// String returns the short lowercase name of the site.
func (s Site) String() string {
	switch s {
	case SiteDawn:
		return "dawn"
	case SiteBBC:
		return "bbc"
	default:
		return "unknown"
	}
}

// ParseSite is the inverse of Site.String. Unknown names return 0 and false.
func ParseSite(name string) (Site, bool) {
	switch name {
	case "dawn":
		return SiteDawn, true
	case "bbc":
		return SiteBBC, true
	default:
		return 0, false
	}
}
