package purchase

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
)

// scriptedInvoker returns its results in order and records every request.
type scriptedInvoker struct {
	results  []model.SettlementResult
	requests []model.SettlementRequest
	mu       sync.Mutex
}

func (s *scriptedInvoker) Settle(_ context.Context, req model.SettlementRequest) model.SettlementResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.results) == 0 {
		return model.SettlementResult{Status: model.StatusSuccess}
	}
	next := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return next
}

func (s *scriptedInvoker) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// mapResolver resolves channels from a fixed map.
type mapResolver map[string]string

func (m mapResolver) ResolveDecoy(_ context.Context, channel string) (string, error) {
	code, ok := m[channel]
	if !ok {
		return "", common.ErrDecoyUnavailable
	}
	return code, nil
}

// catalog serves package details keyed by option code and counts lookups.
type catalog struct {
	details map[string]*model.PackageDetail
	lookups int
}

func (c *catalog) GetPackage(_ context.Context, code string) (*model.PackageDetail, error) {
	c.lookups++
	return c.details[code], nil
}

func detail(name string, price int64, token string) *model.PackageDetail {
	d := &model.PackageDetail{TokenConfirmation: token}
	d.Option.Name = name
	d.Option.Price = price
	return d
}

// recordingSleeper counts waits without blocking.
type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}
