package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Console serializes terminal output that comes from more than one goroutine,
// such as batch progress and the interrupt notice.
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

// NewConsole wraps w.
func NewConsole(w io.Writer) *Console {
	return &Console{out: w}
}

// Write implements io.Writer. Each call is written whole.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

// Print writes s followed by a newline.
func (c *Console) Print(s string) {
	if _, err := fmt.Fprintln(c, s); err != nil {
		slog.Warn("Failed to write to console", "error", err)
	}
}

// Exclusive runs fn while holding the console, so output written by fn to w
// is never interleaved with other writers. fn must not call back into c.
func (c *Console) Exclusive(fn func(w io.Writer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.out)
}
