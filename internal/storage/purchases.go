package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/kuota/internal/model"
)

// SavePurchaseRecord appends one batch attempt to the purchase history.
func (s *SQLiteStorage) SavePurchaseRecord(ctx context.Context, record *model.PurchaseRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchase_history
			(batch_id, attempt, option_code, method, status, message, total_amount, retried, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.BatchID, record.Attempt, record.OptionCode, record.Method, string(record.Status),
		record.Message, record.TotalAmount, record.Retried, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save purchase record: %w", err)
	}
	return nil
}

// GetPurchaseRecords returns the most recent records first. limit <= 0 means all.
func (s *SQLiteStorage) GetPurchaseRecords(ctx context.Context, limit int) ([]model.PurchaseRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	return s.queryRecords(ctx, s.db, `
		SELECT batch_id, attempt, option_code, method, status, message, total_amount, retried, created_at
		FROM purchase_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

// GetPurchaseRecordsByBatch returns the attempts of one batch in order.
func (s *SQLiteStorage) GetPurchaseRecordsByBatch(ctx context.Context, batchID string) ([]model.PurchaseRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return nil, err
	}
	return s.queryRecords(ctx, s.db, `
		SELECT batch_id, attempt, option_code, method, status, message, total_amount, retried, created_at
		FROM purchase_history
		WHERE batch_id = ?
		ORDER BY attempt
	`, batchID)
}

func (s *SQLiteStorage) queryRecords(ctx context.Context, q queryable, query string, args ...any) ([]model.PurchaseRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.PurchaseRecord
	for rows.Next() {
		var r model.PurchaseRecord
		var status string
		if err := rows.Scan(&r.BatchID, &r.Attempt, &r.OptionCode, &r.Method, &status,
			&r.Message, &r.TotalAmount, &r.Retried, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase record: %w", err)
		}
		r.Status = model.SettlementStatus(status)
		records = append(records, r)
	}

	return records, rows.Err()
}
