package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/crawlpage/crawlpage/internal/config"
)

// Built-in profile names accepted in site configurations.
const (
	ProfileBooks  = "books"
	ProfileQuotes = "quotes"
)

// ratingWords maps the star-rating class words used by books.toscrape-style
// sites to their numeric value.
var ratingWords = map[string]int{
	"One": 1, "Two": 2, "Three": 3, "Four": 4, "Five": 5,
}

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// FromSiteConfig builds the extractor for a site: an explicit selector
// block wins, then a named built-in profile, then the books profile as the
// default target shape.
func FromSiteConfig(site config.SiteConfig) (Extractor, error) {
	if site.Selectors != nil {
		return NewSelectorExtractor(*site.Selectors)
	}
	switch site.Profile {
	case ProfileBooks, "":
		return NewBooksExtractor(), nil
	case ProfileQuotes:
		return NewQuotesExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extractor profile %q", site.Profile)
	}
}

// NewBooksExtractor returns the extractor for books.toscrape.com-style
// catalogues: one .product_pod per book with title, price, star rating,
// and availability.
func NewBooksExtractor() *SelectorExtractor {
	return &SelectorExtractor{
		itemSelector: ".product_pod",
		nextSelector: ".next a",
		fields: map[string]fieldSpec{
			"title": {selector: "h3 a", attr: "title"},
			"price": {selector: ".price_color", parse: parsePrice},
			"rating": {
				selector: ".star-rating",
				attr:     "class",
				parse:    parseRating,
			},
			"availability": {selector: ".availability", parse: squashSpace},
		},
	}
}

// NewQuotesExtractor returns the extractor for quotes.toscrape.com-style
// listings: one .quote per item with text, author, and tags.
func NewQuotesExtractor() *SelectorExtractor {
	return &SelectorExtractor{
		itemSelector: ".quote",
		nextSelector: ".next a",
		fields: map[string]fieldSpec{
			"text":   {selector: ".text"},
			"author": {selector: ".author"},
			"tags":   {selector: ".tags", parse: splitTags},
		},
	}
}

// parsePrice strips currency symbols and parses the remainder as a float,
// e.g. "£51.77" -> 51.77. Unparseable input degrades to the raw string so
// the record still carries the evidence.
func parsePrice(raw string) any {
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return raw
	}
	return f
}

// parseRating extracts the numeric rating from a class attribute like
// "star-rating Three". Unknown words yield 0.
func parseRating(raw string) any {
	for _, cls := range strings.Fields(raw) {
		if n, ok := ratingWords[cls]; ok {
			return n
		}
	}
	return 0
}

// splitTags splits whitespace-separated tag text into a list.
func splitTags(raw string) any {
	fields := strings.Fields(raw)
	tags := make([]string, 0, len(fields))
	tags = append(tags, fields...)
	return tags
}

// squashSpace collapses runs of whitespace, cleaning up multi-line
// availability text like "In stock (22 available)".
func squashSpace(raw string) any {
	return strings.Join(strings.Fields(raw), " ")
}
