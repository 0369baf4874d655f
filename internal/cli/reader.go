package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a prompt is abandoned because its
// context ended.
var ErrInputCancelled = errors.New("input canceled")

type scannedLine struct {
	err  error
	text string
}

// lineReader reads whole lines on one background goroutine so a prompt can
// give up on ctx without losing a line typed afterwards; that line goes to
// the next prompt.
type lineReader struct {
	src   io.Reader
	lines chan scannedLine
	start sync.Once
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{src: r, lines: make(chan scannedLine)}
}

func (r *lineReader) pump() {
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		r.lines <- scannedLine{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		r.lines <- scannedLine{err: err}
	}
}

// ReadLine returns the next line with surrounding whitespace removed.
func (r *lineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.start.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line := <-r.lines:
		if line.err != nil {
			return "", line.err
		}
		return strings.TrimSpace(line.text), nil
	}
}
