package model

import "time"

// AttemptState tracks a single purchase attempt inside a batch.
type AttemptState string

// Attempt states.
const (
	AttemptPending       AttemptState = "PENDING"
	AttemptSettling      AttemptState = "SETTLING"
	AttemptRetrySettling AttemptState = "RETRY_SETTLING"
	AttemptSucceeded     AttemptState = "SUCCESS"
	AttemptFailed        AttemptState = "FAILED"
)

// BatchRun is one user-initiated "buy N times" command.
type BatchRun struct {
	StartedAt time.Time
	ID        string
	Results   []SettlementResult
	Count     int
	Delay     time.Duration
	UseDecoy  bool
}

// Succeeded returns how many recorded attempts settled successfully.
func (b *BatchRun) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Succeeded() {
			n++
		}
	}
	return n
}

// PurchaseRecord is a persisted batch attempt.
type PurchaseRecord struct {
	CreatedAt   time.Time
	BatchID     string
	OptionCode  string
	Method      string
	Status      SettlementStatus
	Message     string
	Attempt     int
	TotalAmount int64
	Retried     bool
}
