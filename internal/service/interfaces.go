// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/kuota/internal/model"
)

// SettlementInvoker performs exactly one settlement attempt. Transport
// failures are reported as FAILED results, never as panics or retries.
type SettlementInvoker interface {
	Settle(ctx context.Context, req model.SettlementRequest) model.SettlementResult
}

// DecoyResolver maps a payment channel to the option code of its decoy package.
type DecoyResolver interface {
	ResolveDecoy(ctx context.Context, channel string) (string, error)
}

// PackageFetcher looks up package details, including a fresh confirmation token.
type PackageFetcher interface {
	GetPackage(ctx context.Context, optionCode string) (*model.PackageDetail, error)
}

// FamilyFetcher lists the variants and options of a package family.
type FamilyFetcher interface {
	GetFamily(ctx context.Context, familyCode string, opts FamilyOptions) (*model.Family, error)
}

// FamilyOptions narrows a family lookup.
type FamilyOptions struct {
	MigrationType string
	IsEnterprise  bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Bookmark operations
	AddBookmark(ctx context.Context, bookmark *model.Bookmark) error
	GetBookmarks(ctx context.Context) ([]model.Bookmark, error)
	RenameBookmarkFamily(ctx context.Context, familyCode, newName string) error
	DeleteBookmarkFamily(ctx context.Context, familyCode string) error

	// Purchase history
	SavePurchaseRecord(ctx context.Context, record *model.PurchaseRecord) error
	GetPurchaseRecords(ctx context.Context, limit int) ([]model.PurchaseRecord, error)
	GetPurchaseRecordsByBatch(ctx context.Context, batchID string) ([]model.PurchaseRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
