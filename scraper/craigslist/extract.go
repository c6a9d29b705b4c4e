package craigslist

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"apartment-watcher/models"
)

// Extract parses rendered page HTML into listings in document order.
// Relative links are resolved against pageURL. A result row that lacks the
// title link, price, or date element fails the whole page with
// models.ErrFetch; a page with no result rows yields an empty slice.
func Extract(html, pageURL string, sel Selectors) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", models.ErrFetch, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page url %q: %v", models.ErrFetch, pageURL, err)
	}

	listings := make([]models.Listing, 0)
	var rowErr error

	doc.Find(sel.ResultRow).EachWithBreak(func(i int, row *goquery.Selection) bool {
		titleLink := row.Find(sel.TitleLink).First()
		if titleLink.Length() == 0 {
			rowErr = missingElement(i, "title link", sel.TitleLink)
			return false
		}
		price := row.Find(sel.Price).First()
		if price.Length() == 0 {
			rowErr = missingElement(i, "price", sel.Price)
			return false
		}
		date := row.Find(sel.Date).First()
		if date.Length() == 0 {
			rowErr = missingElement(i, "date", sel.Date)
			return false
		}

		id, _ := row.Attr(sel.IDAttr)
		dateTime, _ := date.Attr(sel.DateAttr)

		listings = append(listings, models.Listing{
			ID:    id,
			URL:   resolveHref(base, titleLink.AttrOr("href", "")),
			Title: titleLink.Text(),
			Price: price.Text(),
			Date:  dateTime,
		})
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return listings, nil
}

func missingElement(row int, what, selector string) error {
	return fmt.Errorf("%w: result row %d has no %s (%q)", models.ErrFetch, row, what, selector)
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
