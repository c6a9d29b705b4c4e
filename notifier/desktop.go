package notifier

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
)

// Message is one desktop notification.
type Message struct {
	Title    string
	Subtitle string
	Body     string
	Open     string // URL opened when the notification is clicked
	Sound    string
}

// Sender delivers a Message to the OS notification subsystem.
type Sender interface {
	Send(msg Message) error
}

const execTimeout = 10 * time.Second

// NewDesktopSender picks the richest sender available on this machine:
// terminal-notifier on macOS (supports subtitle, click URL and named sounds),
// otherwise beeep's cross-platform notifications.
func NewDesktopSender() Sender {
	if runtime.GOOS == "darwin" {
		if path, err := exec.LookPath("terminal-notifier"); err == nil {
			return &TerminalNotifier{bin: path}
		}
	}
	return BeeepSender{}
}

// TerminalNotifier shells out to the terminal-notifier binary.
type TerminalNotifier struct {
	bin string
}

func (t *TerminalNotifier) Send(msg Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, t.bin, terminalNotifierArgs(msg)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("terminal-notifier: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func terminalNotifierArgs(msg Message) []string {
	args := []string{"-title", msg.Title, "-message", msg.Body}
	if msg.Subtitle != "" {
		args = append(args, "-subtitle", msg.Subtitle)
	}
	if msg.Open != "" {
		args = append(args, "-open", msg.Open)
	}
	if msg.Sound != "" {
		args = append(args, "-sound", msg.Sound)
	}
	return args
}

// BeeepSender uses github.com/gen2brain/beeep. It has no subtitle, click
// action or sound name, so those are folded into the body text.
type BeeepSender struct{}

func (BeeepSender) Send(msg Message) error {
	if err := beeep.Notify(msg.Title, beeepBody(msg), ""); err != nil {
		return fmt.Errorf("beeep: %w", err)
	}
	return nil
}

func beeepBody(msg Message) string {
	lines := make([]string, 0, 3)
	if msg.Subtitle != "" {
		lines = append(lines, msg.Subtitle)
	}
	lines = append(lines, msg.Body)
	if msg.Open != "" {
		lines = append(lines, msg.Open)
	}
	return strings.Join(lines, "\n")
}
