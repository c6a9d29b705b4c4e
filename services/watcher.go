package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"apartment-watcher/models"
	"apartment-watcher/storage"
	"apartment-watcher/utils"
)

// ListingFetcher returns the listings currently shown for a search URL.
type ListingFetcher interface {
	Fetch(ctx context.Context, searchURL string) ([]models.Listing, error)
}

// ListingNotifier announces a new listing. Implementations must not block
// on delivery.
type ListingNotifier interface {
	Notify(l models.Listing)
}

// WatcherOptions holds the tunables of a Watcher.
type WatcherOptions struct {
	SearchURL         string
	PollInterval      time.Duration
	MaxStoredListings int
}

// Watcher runs the fetch → diff → notify → persist cycle.
type Watcher struct {
	opts     WatcherOptions
	store    storage.ListingStore
	fetcher  ListingFetcher
	notifier ListingNotifier
	history  storage.HistoryWriter
	cleaner  *Cleaner
	logger   *utils.Logger
	now      func() time.Time
}

// NewWatcher wires a Watcher. history may be nil.
func NewWatcher(opts WatcherOptions, store storage.ListingStore, fetcher ListingFetcher,
	notifier ListingNotifier, history storage.HistoryWriter, logger *utils.Logger) *Watcher {
	return &Watcher{
		opts:     opts,
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		history:  history,
		cleaner:  NewCleaner(logger),
		logger:   logger,
		now:      time.Now,
	}
}

// RunCycle performs one cycle. The stored state is loaded before anything
// is fetched, so a corrupt state aborts the cycle without touching the page.
// Notifications for new listings are dispatched before the merged state is
// saved; if the save fails they will be announced again next cycle.
func (w *Watcher) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	report := &models.CycleReport{RunID: uuid.NewString()[:8]}

	previous, err := w.store.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load state: %w", err)
	}

	w.logger.Info("🏠 Looking for new apartments at %s... [run %s]", utils.Clock(w.now()), report.RunID)

	fetched, err := w.fetcher.Fetch(ctx, w.opts.SearchURL)
	if err != nil {
		return report, fmt.Errorf("fetch listings: %w", err)
	}
	report.Fetched = len(fetched)

	current := w.cleaner.Clean(fetched)
	report.Dropped = len(fetched) - len(current)

	fresh := Diff(current, previous)
	report.New = fresh
	report.Stored = len(previous)

	if len(fresh) == 0 {
		w.logger.Info("😞 No new apartments at this time, I'll check again in %s!", w.opts.PollInterval)
		return report, nil
	}

	w.logger.Info("✨ Found %d new apartments!", len(fresh))
	for _, l := range fresh {
		w.logger.Info("🏡  - %q for %s\n    - %s", utils.CollapseSpace(l.Title), utils.CollapseSpace(l.Price), l.URL)
		w.notifier.Notify(l)
	}

	if w.history != nil {
		if err := w.history.Append(fresh); err != nil {
			w.logger.Warn("[watcher] History append failed: %v", err)
		}
	}

	merged, trimmed := Merge(fresh, previous, w.opts.MaxStoredListings)
	if trimmed > 0 {
		w.logger.Debug("[watcher] Retention dropped %d oldest listings", trimmed)
	}
	if err := w.store.Save(ctx, merged); err != nil {
		return report, fmt.Errorf("save state: %w", err)
	}
	report.Stored = len(merged)
	report.Trimmed = trimmed

	return report, nil
}

// Run performs one cycle and logs any failure instead of returning it, so
// the scheduler survives to the next tick.
func (w *Watcher) Run(ctx context.Context) {
	report, err := w.RunCycle(ctx)
	if err == nil {
		w.logger.Info("[watcher] Cycle %s done: fetched %d, dropped %d, new %d, stored %d, trimmed %d",
			report.RunID, report.Fetched, report.Dropped, len(report.New), report.Stored, report.Trimmed)
		return
	}

	switch {
	case errors.Is(err, models.ErrCorruptState):
		w.logger.Error("[watcher] Cycle %s aborted, state is unusable: %v", report.RunID, err)
	case errors.Is(err, models.ErrFetch):
		w.logger.Error("[watcher] Cycle %s aborted, could not fetch listings: %v", report.RunID, err)
	case errors.Is(err, models.ErrPersistence):
		w.logger.Error("[watcher] Cycle %s could not save state, %d listings will be re-announced: %v",
			report.RunID, len(report.New), err)
	default:
		w.logger.Error("[watcher] Cycle %s failed: %v", report.RunID, err)
	}
}
