package services

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"apartment-watcher/models"
	"apartment-watcher/utils"
)

// Cleaner drops scraped rows that cannot be tracked. Title, price and date
// are stored as the page rendered them.
type Cleaner struct {
	logger   *utils.Logger
	validate *validator.Validate
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Clean returns the usable listings in their original order. Rows without an
// id or a valid absolute URL are dropped, as are repeated ids.
func (c *Cleaner) Clean(raw []models.Listing) []models.Listing {
	seen := utils.NewIDSet()
	result := make([]models.Listing, 0, len(raw))

	for _, r := range raw {
		l := models.Listing{
			ID:    strings.TrimSpace(r.ID),
			URL:   strings.TrimSpace(r.URL),
			Title: r.Title,
			Price: r.Price,
			Date:  r.Date,
		}

		if err := c.validate.Struct(l); err != nil {
			c.logger.Warn("[cleaner] Dropping listing %q: %v", l.Title, err)
			continue
		}

		if !seen.Add(l.ID) {
			c.logger.Debug("[cleaner] Duplicate id skipped: %s", l.ID)
			continue
		}

		result = append(result, l)
	}

	if dropped := len(raw) - len(result); dropped > 0 {
		c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d, %d unique ids)",
			len(raw), len(result), dropped, seen.Size())
	}
	return result
}
