package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
)

// AddBookmark saves a bookmark. Adding the same family/variant/option/order
// twice returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) AddBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBookmark(bookmark); err != nil {
		return err
	}
	if bookmark.CreatedAt.IsZero() {
		bookmark.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO bookmarks
			(family_code, family_name, is_enterprise, variant_name, option_name, option_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, bookmark.FamilyCode, bookmark.FamilyName, bookmark.IsEnterprise,
		bookmark.VariantName, bookmark.OptionName, bookmark.Order, bookmark.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check bookmark insert: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bookmark %s", common.ErrDuplicateEntry, bookmark.FamilyCode)
	}

	id, err := res.LastInsertId()
	if err == nil {
		bookmark.ID = id
	}
	return nil
}

// GetBookmarks returns all bookmarks in insertion order.
func (s *SQLiteStorage) GetBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family_code, family_name, is_enterprise, variant_name, option_name, option_order, created_at
		FROM bookmarks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bookmarks []model.Bookmark
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.FamilyCode, &b.FamilyName, &b.IsEnterprise,
			&b.VariantName, &b.OptionName, &b.Order, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, rows.Err()
}

// RenameBookmarkFamily changes the display name of every bookmark of a family.
func (s *SQLiteStorage) RenameBookmarkFamily(ctx context.Context, familyCode, newName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(familyCode, "familyCode"); err != nil {
		return err
	}
	if err := validateString(newName, "newName"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE bookmarks SET family_name = ? WHERE family_code = ?`, newName, familyCode)
	if err != nil {
		return fmt.Errorf("failed to rename bookmark: %w", err)
	}
	return requireAffected(res, "bookmark family "+familyCode)
}

// DeleteBookmarkFamily removes every bookmark of a family.
func (s *SQLiteStorage) DeleteBookmarkFamily(ctx context.Context, familyCode string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(familyCode, "familyCode"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE family_code = ?`, familyCode)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return requireAffected(res, "bookmark family "+familyCode)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffected, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, what)
	}
	return nil
}
