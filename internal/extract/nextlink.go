package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// findRelNext walks the document for a rel="next" link or anchor and
// returns its href. This is the fallback when a site exposes standard
// pagination metadata instead of a themed next button.
func findRelNext(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var href string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if href != "" {
			return
		}
		if n.Type == html.ElementNode && (n.Data == "link" || n.Data == "a") {
			if strings.EqualFold(getAttr(n, "rel"), "next") {
				href = strings.TrimSpace(getAttr(n, "href"))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return href
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
