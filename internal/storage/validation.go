// Package storage provides the data persistence layer for kuota.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/kuota/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidBookmark = errors.New("invalid bookmark")
	ErrInvalidRecord   = errors.New("invalid purchase record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateBookmark(b *model.Bookmark) error {
	if b == nil {
		return fmt.Errorf("%w: bookmark", ErrNilParameter)
	}
	if strings.TrimSpace(b.FamilyCode) == "" {
		return fmt.Errorf("%w: missing family code", ErrInvalidBookmark)
	}
	if strings.TrimSpace(b.FamilyName) == "" {
		return fmt.Errorf("%w: missing family name", ErrInvalidBookmark)
	}
	if b.Order < 0 {
		return fmt.Errorf("%w: negative order", ErrInvalidBookmark)
	}
	return nil
}

func validateRecord(r *model.PurchaseRecord) error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if r.BatchID == "" {
		return fmt.Errorf("%w: missing batch ID", ErrInvalidRecord)
	}
	if r.Attempt < 1 {
		return fmt.Errorf("%w: attempt must be at least 1", ErrInvalidRecord)
	}
	if r.OptionCode == "" {
		return fmt.Errorf("%w: missing option code", ErrInvalidRecord)
	}
	switch r.Status {
	case model.StatusSuccess, model.StatusFailed, model.StatusUnknown:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidRecord, r.Status)
	}
	return nil
}
