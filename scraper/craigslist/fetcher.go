package craigslist

import (
	"context"
	"fmt"

	"apartment-watcher/models"
	"apartment-watcher/utils"
)

// Renderer loads a page in a script-capable rendering context and returns
// its HTML and final URL. *Browser is the production implementation.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (html string, location string, err error)
}

// Fetcher turns a search URL into the listings shown on that page.
type Fetcher struct {
	renderer  Renderer
	selectors Selectors
	logger    *utils.Logger
}

// NewFetcher creates a Fetcher that renders pages through r.
func NewFetcher(r Renderer, sel Selectors, logger *utils.Logger) *Fetcher {
	return &Fetcher{renderer: r, selectors: sel, logger: logger}
}

// Fetch renders searchURL and extracts its result rows in page order.
// Every failure is reported as models.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, searchURL string) ([]models.Listing, error) {
	html, location, err := f.renderer.Render(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFetch, err)
	}

	listings, err := Extract(html, location, f.selectors)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("[craigslist] %d result rows at %s", len(listings), location)
	return listings, nil
}
