package models

import "errors"

var (
	// ErrCorruptState is returned when the persisted listing state is missing,
	// unreadable, or cannot be decoded.
	ErrCorruptState = errors.New("corrupt state")
	// ErrPersistence is returned when the listing state cannot be written.
	ErrPersistence = errors.New("persistence failure")
	// ErrFetch is returned when the search page cannot be loaded or its
	// result rows do not have the expected structure.
	ErrFetch = errors.New("fetch failed")
)

// Listing is one classified ad scraped from the search results page.
// The JSON field names are the on-disk state format and must not change.
type Listing struct {
	ID    string `json:"id" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title"`
	Price string `json:"price"`
	Date  string `json:"date"`
}

// CycleReport summarises one fetch → diff → notify → persist cycle.
type CycleReport struct {
	RunID   string
	Fetched int
	Dropped int
	New     []Listing
	Stored  int
	Trimmed int
}
