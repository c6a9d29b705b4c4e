package services

import (
	"apartment-watcher/models"
	"apartment-watcher/utils"
)

// Diff returns the listings in current whose id does not appear in previous,
// keeping current's order.
func Diff(current, previous []models.Listing) []models.Listing {
	known := utils.NewIDSet()
	for _, l := range previous {
		known.Add(l.ID)
	}

	fresh := make([]models.Listing, 0)
	for _, l := range current {
		if !known.Contains(l.ID) {
			fresh = append(fresh, l)
		}
	}
	return fresh
}

// Merge prepends fresh to previous and, when maxStored is positive, keeps
// only the first maxStored entries. It returns the merged sequence and the
// number of entries trimmed.
func Merge(fresh, previous []models.Listing, maxStored int) ([]models.Listing, int) {
	merged := make([]models.Listing, 0, len(fresh)+len(previous))
	merged = append(merged, fresh...)
	merged = append(merged, previous...)

	if maxStored > 0 && len(merged) > maxStored {
		trimmed := len(merged) - maxStored
		return merged[:maxStored], trimmed
	}
	return merged, 0
}
