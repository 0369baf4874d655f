package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementRequest_Total(t *testing.T) {
	req := NewSettlementRequest(
		PaymentItem{ItemCode: "A", ItemPrice: 10000},
		PaymentItem{ItemCode: "B", ItemPrice: 1000},
	)
	assert.Equal(t, int64(11000), req.Total())
	assert.Equal(t, PaymentForBuyPackage, req.PaymentFor)
	assert.Equal(t, DefaultSignerIndex, req.TokenConfirmationIndex)

	corrected := req.WithTotal(10500)
	assert.Equal(t, int64(10500), corrected.Total())
	assert.Equal(t, int64(11000), corrected.ItemsTotal())
	assert.Nil(t, req.TotalAmountOverride)

	corrected.Items[0].ItemCode = "changed"
	assert.Equal(t, "A", req.Items[0].ItemCode)
}

func TestSettlementRequest_SignerToken(t *testing.T) {
	req := NewSettlementRequest(
		PaymentItem{TokenConfirmation: "primary"},
		PaymentItem{TokenConfirmation: "decoy"},
	)

	tests := []struct {
		want  string
		index int
	}{
		{index: -1, want: "primary"},
		{index: 0, want: "primary"},
		{index: 1, want: "decoy"},
		{index: 7, want: "primary"},
	}
	for _, tt := range tests {
		req.TokenConfirmationIndex = tt.index
		assert.Equal(t, tt.want, req.SignerToken(), "index %d", tt.index)
	}

	assert.Empty(t, NewSettlementRequest().SignerToken())
}

func TestParseSettlementStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, ParseSettlementStatus("SUCCESS"))
	assert.Equal(t, StatusFailed, ParseSettlementStatus("FAILED"))
	assert.Equal(t, StatusFailed, ParseSettlementStatus("ERROR"))
	assert.Equal(t, StatusUnknown, ParseSettlementStatus(""))
}

func TestFamily_Entries(t *testing.T) {
	f := Family{
		Family: PackageFamily{Name: "Xtra", RCBonusType: "MYREWARDS"},
		Variants: []PackageVariant{
			{Name: "Daily", Options: []PackageOption{{Name: "1GB", Code: "D1", Price: 5000, Order: 1}}},
			{Name: "Weekly", Options: []PackageOption{
				{Name: "5GB", Code: "W5", Price: 20000, Order: 2},
				{Name: "10GB", Code: "W10", Price: 35000, Order: 3},
			}},
		},
	}

	entries := f.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Number)
	assert.Equal(t, "W10", entries[2].Code)
	assert.Equal(t, 3, entries[2].Number)
	assert.Equal(t, "Weekly", entries[2].VariantName)
	assert.Equal(t, "Poin", f.PriceCurrency())

	f.Family.RCBonusType = ""
	assert.Equal(t, "Rp", f.PriceCurrency())
}

func TestPackageDetail_PaymentItem(t *testing.T) {
	d := PackageDetail{TokenConfirmation: "tok"}
	d.Family.Name = "Xtra"
	d.Variant.Name = "Daily"
	d.Option = PackageOption{Name: "1GB", Code: "D1", Price: 5000}

	item := d.PaymentItem("")
	assert.Equal(t, "D1", item.ItemCode)
	assert.Equal(t, "Daily 1GB", item.ItemName)
	assert.Equal(t, int64(5000), item.ItemPrice)
	assert.Equal(t, "tok", item.TokenConfirmation)
	assert.Equal(t, "Xtra - Daily - 1GB", d.Title())
	assert.Equal(t, PaymentForBuyPackage, d.PaymentFor())

	assert.Equal(t, "OVERRIDE", d.PaymentItem("OVERRIDE").ItemCode)
}

func TestBatchRun_Succeeded(t *testing.T) {
	run := BatchRun{Results: []SettlementResult{
		{Status: StatusSuccess}, FailedResult("x"), {Status: StatusUnknown}, {Status: StatusSuccess},
	}}
	assert.Equal(t, 2, run.Succeeded())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, Session{}.Expired(now), "unknown expiry never expires")
	assert.False(t, Session{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Hour)}.Expired(now))
}

func TestBenefit_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantRemaining int64
		wantUsed      int64
	}{
		{name: "missing remaining is unused", input: `{"data_type":"DATA","total":2000000000}`, wantRemaining: 2000000000},
		{name: "reported remaining", input: `{"data_type":"DATA","total":1000,"remaining":250}`, wantRemaining: 250, wantUsed: 750},
		{name: "fully used", input: `{"data_type":"TEXT","total":100,"remaining":0}`, wantRemaining: 0, wantUsed: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Benefit
			require.NoError(t, json.Unmarshal([]byte(tt.input), &b))
			assert.Equal(t, tt.wantRemaining, b.Remaining)
			assert.Equal(t, tt.wantUsed, b.Used())
		})
	}
}

func TestPackageDetail_QuotaTimestamps(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantActivated int64
		wantReset     int64
	}{
		{
			name:          "top level wins",
			input:         `{"activated_at":10,"reset_at":20,"package_option":{"activated_at":1,"reset_at":2}}`,
			wantActivated: 10,
			wantReset:     20,
		},
		{
			name:          "alternate top level names",
			input:         `{"active_since":11,"reset_quota_at":21}`,
			wantActivated: 11,
			wantReset:     21,
		},
		{
			name:          "option fields",
			input:         `{"package_option":{"active_since":3,"reset_quota_at":4}}`,
			wantActivated: 3,
			wantReset:     4,
		},
		{name: "none", input: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var detail PackageDetail
			require.NoError(t, json.Unmarshal([]byte(tt.input), &detail))
			assert.Equal(t, tt.wantActivated, detail.QuotaActivated())
			assert.Equal(t, tt.wantReset, detail.QuotaReset())
		})
	}
}

func TestStorePackage_Price(t *testing.T) {
	assert.Equal(t, int64(8000), StorePackage{OriginalPrice: 10000, DiscountedPrice: 8000}.Price())
	assert.Equal(t, int64(10000), StorePackage{OriginalPrice: 10000}.Price())
}
