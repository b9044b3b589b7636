package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/crawlpage/crawlpage/internal/config"
	"github.com/crawlpage/crawlpage/internal/model"
)

// fieldSpec describes how one record field is read from an item node:
// a CSS selector, an optional attribute to read instead of text, and an
// optional parser converting the raw string into a typed value.
type fieldSpec struct {
	selector string
	attr     string
	parse    func(string) any
}

// SelectorExtractor extracts records with CSS selectors via goquery.
// One selector picks the item nodes; per-field selectors run inside each
// item; one more selector finds the next-page anchor.
type SelectorExtractor struct {
	itemSelector string
	fields       map[string]fieldSpec
	nextSelector string
}

// NewSelectorExtractor builds an extractor from a site configuration's
// selector block. Field selectors may carry an "@attr" suffix to read an
// attribute instead of the element text, e.g. "h3 a@title".
func NewSelectorExtractor(sel config.Selectors) (*SelectorExtractor, error) {
	if sel.Item == "" {
		return nil, fmt.Errorf("selector config: item selector is required")
	}
	if len(sel.Fields) == 0 {
		return nil, fmt.Errorf("selector config: at least one field selector is required")
	}

	fields := make(map[string]fieldSpec, len(sel.Fields))
	for name, raw := range sel.Fields {
		spec := fieldSpec{selector: raw}
		if at := strings.LastIndex(raw, "@"); at > 0 {
			spec.selector = raw[:at]
			spec.attr = raw[at+1:]
		}
		fields[name] = spec
	}

	return &SelectorExtractor{
		itemSelector: sel.Item,
		fields:       fields,
		nextSelector: sel.Next,
	}, nil
}

// Extract implements Extractor.
func (e *SelectorExtractor) Extract(addr model.PageAddress, body []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", addr, err)
	}

	items := doc.Find(e.itemSelector)
	if items.Length() == 0 {
		return nil, fmt.Errorf("%w: %s (selector %q)", ErrNoItems, addr, e.itemSelector)
	}

	records := make([]model.Record, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		record := make(model.Record, len(e.fields))
		for name, spec := range e.fields {
			record[name] = readField(item, spec)
		}
		records = append(records, record)
	})

	return &Result{
		Records:  records,
		NextLink: e.nextLink(doc, body),
	}, nil
}

// nextLink locates the next-page href: the configured selector first, then
// a rel=next walk over the raw document as a fallback.
func (e *SelectorExtractor) nextLink(doc *goquery.Document, body []byte) string {
	if e.nextSelector != "" {
		if href, ok := doc.Find(e.nextSelector).First().Attr("href"); ok {
			return strings.TrimSpace(href)
		}
	}
	return findRelNext(body)
}

// readField reads one field value from an item node.
func readField(item *goquery.Selection, spec fieldSpec) any {
	sel := item
	if spec.selector != "" {
		sel = item.Find(spec.selector).First()
	}

	var raw string
	if spec.attr != "" {
		raw, _ = sel.Attr(spec.attr)
	} else {
		raw = sel.Text()
	}
	raw = strings.TrimSpace(raw)

	if spec.parse != nil {
		return spec.parse(raw)
	}
	return raw
}
