package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user for the values a command was not given as flags.
type Prompter struct {
	reader *lineReader
	writer io.Writer
}

// NewPrompter creates a prompter reading from r and writing prompts to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: newLineReader(r),
		writer: w,
	}
}

// Ask prints label and returns the trimmed answer, or def when the answer is
// blank. A non-empty def is shown in the prompt.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, formatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question until it gets an answer it understands.
// A blank answer takes def.
func (p *Prompter) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	choices := "y/N"
	if def {
		choices = "Y/n"
	}
	for {
		answer, err := p.Ask(ctx, fmt.Sprintf("%s (%s)", label, choices), "")
		if err != nil {
			return false, err
		}
		if answer == "" {
			return def, nil
		}
		if yes, ok := parseYesNo(answer); ok {
			return yes, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Jawab y atau n.")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}

func parseYesNo(s string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "ya", "iya":
		return true, true
	case "n", "no", "tidak", "t":
		return false, true
	default:
		return false, false
	}
}
