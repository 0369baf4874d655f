package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/kuota/internal/model"
	"github.com/schollz/progressbar/v3"
)

// BatchReporter shows per-attempt results and a progress bar while a batch runs.
type BatchReporter struct {
	console *Console
	bar     *progressbar.ProgressBar
}

// NewBatchReporter creates a reporter for count attempts. The bar draws on
// the console's underlying writer and only while the console is held.
func NewBatchReporter(console *Console, count int, description string) *BatchReporter {
	r := &BatchReporter{console: console}
	r.bar = progressbar.NewOptions(count,
		progressbar.OptionSetWriter(console.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(console.out); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return r
}

// Observe prints one attempt's outcome and advances the bar. Its signature
// matches the batch runner's attempt observer.
func (r *BatchReporter) Observe(attempt int, result model.SettlementResult, err error) {
	if err != nil && result.Message == "" {
		result = model.FailedResult(err.Error())
	}

	r.console.Exclusive(func(w io.Writer) {
		if clearErr := r.bar.Clear(); clearErr != nil {
			slog.Warn("Failed to clear progress bar", "error", clearErr)
		}
		if writeErr := RenderResult(w, attempt, result); writeErr != nil {
			slog.Warn("Failed to write attempt result", "error", writeErr)
		}
		if addErr := r.bar.Add(1); addErr != nil {
			slog.Warn("Failed to update progress bar", "error", addErr)
		}
	})
}

// Close finishes the bar even when the batch stopped early.
func (r *BatchReporter) Close() {
	r.console.Exclusive(func(io.Writer) {
		if err := r.bar.Exit(); err != nil {
			slog.Warn("Failed to close progress bar", "error", err)
		}
	})
}
