package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// Markers put in front of each notification so they stand out from the
// stage output even without color.
const (
	markNormal = "~"
	markUrgent = "!!"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// NotifierOption configures a CLINotifier.
type NotifierOption func(*CLINotifier)

// WithColor turns ANSI styling on or off. On by default.
func WithColor(on bool) NotifierOption {
	return func(n *CLINotifier) { n.color = on }
}

// CLINotifier prints timer and watcher notifications above the prompt.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
	color   bool
}

// NewCLINotifier creates a terminal notifier.
// If printFn is nil, fmt.Printf is used.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc, opts ...NotifierOption) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	n := &CLINotifier{log: log, printFn: printFn, color: true}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify prints a normal notification in cyan.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.emit(cyan, markNormal, message)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.emit(red, markUrgent, message)
	return nil
}

func (n *CLINotifier) emit(color, mark, message string) {
	if !n.color {
		n.printFn("%s %s", mark, message)
		return
	}
	n.printFn("%s%s%s %s%s", color, bold, mark, message, reset)
}
