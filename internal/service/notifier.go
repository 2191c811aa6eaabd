package service

import (
	"context"
	"fmt"
	"io"
)

// Notifier delivers short user-facing messages
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// WriterNotifier prints each message on its own line
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify writes message to the underlying writer
func (n *WriterNotifier) Notify(_ context.Context, message string) error {
	if _, err := fmt.Fprintln(n.w, message); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return nil
}

// MultiNotifier sends every message to each notifier in turn
type MultiNotifier []Notifier

// Notify delivers message to all notifiers and returns the first error
func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
