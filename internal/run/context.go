// Package run carries the state of a single analysis run: its identity, logger
// and counters. A Context is created per run and passed to every stage.
package run

import (
	"log/slog"

	"github.com/google/uuid"
)

// Stats counts what a run did.
type Stats struct {
	FilesScanned int `json:"files_scanned"`
	FilesSkipped int `json:"files_skipped"`
	FilesFailed  int `json:"files_failed"`
	Scripts      int `json:"scripts"`
	Operations   int `json:"operations"`
}

// Context is the per-run state. It is not safe for concurrent use.
type Context struct {
	ID     string
	Logger *slog.Logger
	Stats  Stats

	opSeq int
}

// New creates a Context with a fresh run ID. A nil logger discards all output.
func New(logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	return &Context{
		ID:     id,
		Logger: logger.With("run_id", id),
	}
}

// NextOperation advances the operation counter and returns its new value.
func (c *Context) NextOperation() int {
	c.opSeq++
	c.Stats.Operations = c.opSeq
	return c.opSeq
}

// Info logs an informational message.
func (c *Context) Info(msg string, args ...any) {
	c.Logger.Info(msg, args...)
}

// Debug logs a debug message.
func (c *Context) Debug(msg string, args ...any) {
	c.Logger.Debug(msg, args...)
}

// Error logs an error message.
func (c *Context) Error(msg string, args ...any) {
	c.Logger.Error(msg, args...)
}
