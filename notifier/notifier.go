package notifier

import (
	"time"

	"apartment-watcher/models"
	"apartment-watcher/utils"
)

// Banner is the title of every new-listing notification.
const Banner = "🏡 New apartment listed!"

// Notifier dispatches one desktop notification per new listing without
// waiting for delivery. Delivery errors are logged at debug level only.
type Notifier struct {
	sender Sender
	pool   *utils.WorkerPool
	sound  string
	logger *utils.Logger
}

// New creates a Notifier that sends through s with at most concurrency
// deliveries in flight and spacingMs between delivery starts.
func New(s Sender, sound string, concurrency, spacingMs int, logger *utils.Logger) *Notifier {
	return &Notifier{
		sender: s,
		pool:   utils.NewWorkerPool(concurrency, spacingMs),
		sound:  sound,
		logger: logger,
	}
}

// Notify queues a notification for l and returns immediately.
func (n *Notifier) Notify(l models.Listing) {
	msg := FormatListing(l, n.sound)
	n.pool.Submit(func() {
		if err := n.sender.Send(msg); err != nil {
			n.logger.Debug("[notifier] Delivery failed for %s: %v", l.ID, err)
		}
	})
}

// Drain waits up to timeout for queued notifications to be handed to the OS.
func (n *Notifier) Drain(timeout time.Duration) bool {
	return n.pool.WaitTimeout(timeout)
}

// FormatListing builds the notification for a listing: price as subtitle,
// title as body, and the listing URL as click target. Stored text keeps the
// page's whitespace, so it is collapsed here for the banner.
func FormatListing(l models.Listing, sound string) Message {
	return Message{
		Title:    Banner,
		Subtitle: utils.CollapseSpace(l.Price),
		Body:     utils.CollapseSpace(l.Title),
		Open:     l.URL,
		Sound:    sound,
	}
}
