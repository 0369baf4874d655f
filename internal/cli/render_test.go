package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/kuota/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatQuota(t *testing.T) {
	tests := []struct {
		name      string
		dataType  string
		want      string
		total     int64
		remaining int64
	}{
		{name: "gigabytes", dataType: "DATA", total: 2_147_483_648, want: "2.00 GB"},
		{name: "megabytes", dataType: "DATA", total: 524_288_000, want: "500.00 MB"},
		{name: "kilobytes", dataType: "DATA", total: 2048, want: "2.00 KB"},
		{name: "bytes", dataType: "DATA", total: 512, want: "512 B"},
		{name: "voice minutes", dataType: "VOICE", total: 600, want: "10.00 menit"},
		{name: "sms", dataType: "TEXT", total: 100, want: "100 SMS"},
		{name: "other type", dataType: "POINT", total: 10, remaining: 4, want: "4 / 10"},
		{name: "zero data total", dataType: "DATA", total: 0, remaining: 0, want: "0 / 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatQuota(tt.dataType, tt.total, tt.remaining))
		})
	}
}

func TestUsageBar(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		used    int64
		total   int64
		filled  int
		noTotal bool
	}{
		{name: "half", used: 50, total: 100, filled: 5, want: "50%"},
		{name: "empty", used: 0, total: 100, filled: 0, want: "0%"},
		{name: "clamped over", used: 150, total: 100, filled: 10, want: "100%"},
		{name: "clamped under", used: -5, total: 100, filled: 0, want: "0%"},
		{name: "no total", used: 5, total: 0, noTotal: true, want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := UsageBar(tt.used, tt.total, 10)
			assert.True(t, strings.HasSuffix(bar, tt.want), bar)
			if !tt.noTotal {
				assert.Equal(t, tt.filled, strings.Count(bar, "█"))
				assert.Equal(t, 10-tt.filled, strings.Count(bar, "░"))
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, time.May, 7, 13, 4, 5, 0, time.UTC)

	assert.Equal(t, "07 Mei 2025 13:04:05", FormatTimestamp(ts.Unix(), time.UTC))
	assert.Equal(t, "07 Mei 2025 13:04:05", FormatTimestamp(ts.UnixMilli(), time.UTC), "milliseconds are detected")

	aug := time.Date(2024, time.August, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "17 Agu 2024 00:00:00", FormatTimestamp(aug.Unix(), time.UTC))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysUntil(now.Add(3*24*time.Hour+time.Hour).Unix(), now))
	assert.Equal(t, 0, DaysUntil(now.Add(time.Hour).UnixMilli(), now))
	assert.Equal(t, -1, DaysUntil(now.Add(-time.Hour).Unix(), now))
}

func TestRenderPackageDetail(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	detail := &model.PackageDetail{
		Family:  model.PackageFamily{Name: "Xtra Combo", PlanType: "PREPAID"},
		Variant: model.PackageVariant{Name: "Flex"},
		Option: model.PackageOption{
			Name:     "S",
			Code:     "OPT-S",
			Price:    15000,
			Validity: "30 HARI",
			ResetAt:  now.Add(10*24*time.Hour + time.Hour).Unix(),
			Benefits: []model.Benefit{
				{Name: "Kuota Utama", DataType: "DATA", Total: 2_147_483_648, Remaining: 1_073_741_824},
				{Name: "Nelpon", DataType: "VOICE", Total: 600, Remaining: 600},
				{Name: "Sosmed", DataType: "DATA", IsUnlimited: true},
			},
		},
		Addon: model.PackageAddon{ParentCode: "PARENT"},
	}

	var out bytes.Buffer
	require.NoError(t, RenderPackageDetail(&out, detail, "", now))

	s := out.String()
	assert.Contains(t, s, "Xtra Combo - Flex - S")
	assert.Contains(t, s, "Rp 15000")
	assert.Contains(t, s, "BUY_PACKAGE")
	assert.Contains(t, s, "OPT-S")
	assert.Contains(t, s, "PARENT")
	assert.Contains(t, s, "sisa 10 hari")
	assert.Contains(t, s, "2.00 GB")
	assert.Contains(t, s, "10.00 menit")
	assert.Contains(t, s, "Unlimited")
	assert.NotContains(t, s, "Masa Aktif Kuota", "no activation timestamp was given")
}

func TestRenderPackageDetail_BenefitWithoutRemaining(t *testing.T) {
	var detail model.PackageDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"package_option": {
			"name": "Kuota 1GB",
			"benefits": [{"name": "Kuota Utama", "data_type": "DATA", "total": 1073741824}]
		}
	}`), &detail))

	var out bytes.Buffer
	require.NoError(t, RenderPackageDetail(&out, &detail, "OPT", time.Now()))

	s := out.String()
	assert.Contains(t, s, " 0%", "a store listing has used none of its quota")
	assert.NotContains(t, s, "100%")
}

func TestRenderPackageDetail_QuotaTimestampFallbacks(t *testing.T) {
	now := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	activated := time.Date(2025, time.April, 20, 8, 0, 0, 0, time.UTC)
	reset := now.Add(5*24*time.Hour + time.Hour)

	tests := []struct {
		detail model.PackageDetail
		name   string
	}{
		{
			name:   "top level",
			detail: model.PackageDetail{ActivatedAt: activated.Unix(), ResetAt: reset.Unix()},
		},
		{
			name:   "top level alternates",
			detail: model.PackageDetail{ActiveSince: activated.Unix(), ResetQuotaAt: reset.UnixMilli()},
		},
		{
			name: "option alternates",
			detail: model.PackageDetail{Option: model.PackageOption{
				ActiveSince:  activated.UnixMilli(),
				ResetQuotaAt: reset.Unix(),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, RenderPackageDetail(&out, &tt.detail, "OPT", now))

			s := out.String()
			assert.Contains(t, s, "Masa Aktif Kuota")
			assert.Contains(t, s, "20 Apr 2025 08:00:00")
			assert.Contains(t, s, "sisa 5 hari")
		})
	}
}

func TestQuotaSummary(t *testing.T) {
	tests := []struct {
		name     string
		want     string
		benefits []model.Benefit
	}{
		{name: "none", want: "No benefits"},
		{
			name:     "data",
			benefits: []model.Benefit{{DataType: "DATA", Total: 2_147_483_648, Remaining: 1_073_741_824}},
			want:     "1.00 GB / 2.00 GB",
		},
		{
			name:     "voice",
			benefits: []model.Benefit{{DataType: "VOICE", Total: 600, Remaining: 90}},
			want:     "1.5m / 10.0m",
		},
		{
			name: "text with more",
			benefits: []model.Benefit{
				{DataType: "TEXT", Total: 100, Remaining: 40},
				{DataType: "DATA"},
				{DataType: "VOICE"},
			},
			want: "40 / 100 TEXT (+2 more)",
		},
		{
			name:     "unlimited",
			benefits: []model.Benefit{{DataType: "DATA", IsUnlimited: true}},
			want:     "Unlimited DATA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuotaSummary(tt.benefits))
		})
	}
}

func TestRenderQuotas(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderQuotas(&out, nil))
	assert.Contains(t, out.String(), "No active packages")

	out.Reset()
	require.NoError(t, RenderQuotas(&out, []model.Quota{
		{QuotaCode: "Q1", Name: "Xtra Combo", Benefits: []model.Benefit{{DataType: "TEXT", Total: 10, Remaining: 10}}},
		{QuotaCode: "Q2", Name: "Masa Aktif"},
	}))
	s := out.String()
	assert.Contains(t, s, "Xtra Combo")
	assert.Contains(t, s, "10 / 10 TEXT")
	assert.Contains(t, s, "No benefits")
	assert.NotContains(t, s, "Q1", "quota codes are not shown")
}

func TestRenderStore(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderStoreFamilies(&out, nil))
	assert.Contains(t, out.String(), "No family list found")

	out.Reset()
	require.NoError(t, RenderStoreFamilies(&out, []model.StoreFamily{{ID: "FAM-1", Label: "Xtra Combo"}, {ID: "FAM-2"}}))
	assert.Contains(t, out.String(), "FAM-1")
	assert.Contains(t, out.String(), "N/A")

	out.Reset()
	require.NoError(t, RenderStorePackages(&out, nil))
	assert.Contains(t, out.String(), "No store packages found")

	out.Reset()
	require.NoError(t, RenderStorePackages(&out, []model.StorePackage{
		{Title: "Kuota 10GB", FamilyName: "Xtra", Validity: "30 Hari", OriginalPrice: 50000, DiscountedPrice: 45000},
	}))
	s := out.String()
	assert.Contains(t, s, "Kuota 10GB")
	assert.Contains(t, s, "Rp45000")
	assert.Contains(t, s, "30 Hari")
}

func TestRenderFamily(t *testing.T) {
	family := &model.Family{
		Family: model.PackageFamily{Name: "Rewards", RCBonusType: "MYREWARDS"},
		Variants: []model.PackageVariant{
			{Name: "A", Options: []model.PackageOption{{Name: "one", Code: "C1", Price: 10}, {Name: "two", Code: "C2", Price: 20}}},
			{Name: "B", Options: []model.PackageOption{{Name: "three", Code: "C3", Price: 30}}},
		},
	}

	var out bytes.Buffer
	require.NoError(t, RenderFamily(&out, family))

	s := out.String()
	assert.Contains(t, s, "Poin 20")
	assert.Contains(t, s, "C3")
	assert.Contains(t, s, "three")

	out.Reset()
	require.NoError(t, RenderFamily(&out, &model.Family{Family: model.PackageFamily{Code: "EMPTY"}}))
	assert.Contains(t, out.String(), "No packages")
}

func TestRenderBookmarksAndHistory(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderBookmarks(&out, nil))
	assert.Contains(t, out.String(), "No bookmarks")

	out.Reset()
	require.NoError(t, RenderBookmarks(&out, []model.Bookmark{
		{FamilyCode: "FAM", FamilyName: "Akrab", VariantName: "Big", OptionName: "L", Order: 3, IsEnterprise: true},
	}))
	assert.Contains(t, out.String(), "Akrab "+starIcon)
	assert.Contains(t, out.String(), "FAM")

	out.Reset()
	require.NoError(t, RenderHistory(&out, []model.PurchaseRecord{
		{BatchID: "0123456789abcdef", Attempt: 2, OptionCode: "OPT", Method: "balance", Status: model.StatusSuccess, TotalAmount: 500, Retried: true},
	}))
	s := out.String()
	assert.Contains(t, s, "01234567")
	assert.NotContains(t, s, "0123456789abcdef")
	assert.Contains(t, s, "500*")
}

func TestRenderResult(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		result model.SettlementResult
	}{
		{name: "success", result: model.SettlementResult{Status: model.StatusSuccess, TransactionID: "TX1"}, want: "Purchase succeeded"},
		{name: "corrected", result: model.SettlementResult{Status: model.StatusSuccess, Retried: true, CorrectedAmount: 777}, want: "amount correction to 777"},
		{name: "failed", result: model.FailedResult("saldo kurang"), want: "saldo kurang"},
		{name: "deep link", result: model.SettlementResult{Status: model.StatusSuccess, DeepLink: "gojek://pay/1"}, want: "gojek://pay/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, RenderResult(&out, 3, tt.result))
			assert.Contains(t, out.String(), tt.want)
			assert.Contains(t, out.String(), "[3]")
		})
	}
}

func TestBatchReporter(t *testing.T) {
	var out bytes.Buffer
	r := NewBatchReporter(NewConsole(&out), 2, "Buying")

	r.Observe(1, model.SettlementResult{Status: model.StatusSuccess}, nil)
	r.Observe(2, model.SettlementResult{}, errors.New("boom"))
	r.Close()

	s := out.String()
	assert.Contains(t, s, "[1] Purchase succeeded")
	assert.Contains(t, s, "[2] Purchase failed: boom")
}

func TestRenderBatchSummary(t *testing.T) {
	run := &model.BatchRun{
		ID:       "batch-1",
		Count:    3,
		Delay:    2 * time.Second,
		UseDecoy: true,
		Results: []model.SettlementResult{
			{Status: model.StatusSuccess},
			model.FailedResult("x"),
		},
	}

	var out bytes.Buffer
	require.NoError(t, RenderBatchSummary(&out, run))
	s := out.String()
	assert.Contains(t, s, "batch-1")
	assert.Contains(t, s, "Attempts: 2 of 3")
	assert.Contains(t, s, "Decoy: on")
}
