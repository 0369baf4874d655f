package model

import "encoding/json"

// Benefit is one quota entry of a package option.
type Benefit struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	Total       int64  `json:"total"`
	Remaining   int64  `json:"remaining"`
	IsUnlimited bool   `json:"is_unlimited"`
}

// UnmarshalJSON treats a benefit without a remaining amount as untouched:
// store listings omit it, and only active quotas report usage.
func (b *Benefit) UnmarshalJSON(data []byte) error {
	type plain Benefit
	var raw struct {
		plain
		Remaining *int64 `json:"remaining"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Benefit(raw.plain)
	b.Remaining = b.Total
	if raw.Remaining != nil {
		b.Remaining = *raw.Remaining
	}
	return nil
}

// Used returns the consumed part of the benefit.
func (b Benefit) Used() int64 {
	return b.Total - b.Remaining
}

// PackageOption describes a purchasable option.
type PackageOption struct {
	Name         string    `json:"name"`
	Code         string    `json:"package_option_code"`
	TNC          string    `json:"tnc"`
	Validity     string    `json:"validity"`
	Benefits     []Benefit `json:"benefits"`
	Price        int64     `json:"price"`
	Point        int64     `json:"point"`
	Order        int       `json:"order"`
	ActivatedAt  int64     `json:"activated_at"`
	ActiveSince  int64     `json:"active_since"`
	ResetAt      int64     `json:"reset_at"`
	ResetQuotaAt int64     `json:"reset_quota_at"`
}

// PackageFamily groups related variants.
type PackageFamily struct {
	Name        string `json:"name"`
	Code        string `json:"package_family_code"`
	Type        string `json:"package_family_type"`
	PaymentFor  string `json:"payment_for"`
	PlanType    string `json:"plan_type"`
	RCBonusType string `json:"rc_bonus_type"`
}

// PackageVariant holds the options of one family variant.
type PackageVariant struct {
	Name    string          `json:"name"`
	Code    string          `json:"package_variant_code"`
	Options []PackageOption `json:"package_options"`
}

// PackageAddon links an addon option to its parent package.
type PackageAddon struct {
	ParentCode string `json:"parent_code"`
}

// PackageDetail is the result of a package-detail lookup. Its token is only
// valid for the session that fetched it.
type PackageDetail struct {
	Family            PackageFamily  `json:"package_family"`
	Variant           PackageVariant `json:"package_detail_variant"`
	Addon             PackageAddon   `json:"package_addon"`
	TokenConfirmation string         `json:"token_confirmation"`
	Option            PackageOption  `json:"package_option"`
	Timestamp         int64          `json:"timestamp"`
	ActivatedAt       int64          `json:"activated_at"`
	ActiveSince       int64          `json:"active_since"`
	ResetAt           int64          `json:"reset_at"`
	ResetQuotaAt      int64          `json:"reset_quota_at"`
}

// QuotaActivated returns when the quota became active, or 0 when unknown.
// The top-level fields of an active subscription take precedence over the
// option's own.
func (p *PackageDetail) QuotaActivated() int64 {
	return firstSet(p.ActivatedAt, p.ActiveSince, p.Option.ActivatedAt, p.Option.ActiveSince)
}

// QuotaReset returns when the quota resets, or 0 when unknown.
func (p *PackageDetail) QuotaReset() int64 {
	return firstSet(p.ResetAt, p.ResetQuotaAt, p.Option.ResetAt, p.Option.ResetQuotaAt)
}

func firstSet(timestamps ...int64) int64 {
	for _, ts := range timestamps {
		if ts > 0 {
			return ts
		}
	}
	return 0
}

// Title is the display title used by the detail view.
func (p *PackageDetail) Title() string {
	return joinNonEmpty(" - ", p.Family.Name, p.Variant.Name, p.Option.Name)
}

// PaymentFor returns the family's payment purpose, defaulting to BUY_PACKAGE.
func (p *PackageDetail) PaymentFor() string {
	if p.Family.PaymentFor == "" {
		return PaymentForBuyPackage
	}
	return p.Family.PaymentFor
}

// PaymentItem converts the detail into a settlement line item.
func (p *PackageDetail) PaymentItem(optionCode string) PaymentItem {
	if optionCode == "" {
		optionCode = p.Option.Code
	}
	return PaymentItem{
		ItemCode:          optionCode,
		ItemPrice:         p.Option.Price,
		ItemName:          joinNonEmpty(" ", p.Variant.Name, p.Option.Name),
		TokenConfirmation: p.TokenConfirmation,
	}
}

// Family is the result of a family lookup.
type Family struct {
	Family   PackageFamily    `json:"package_family"`
	Variants []PackageVariant `json:"package_variants"`
}

// FamilyEntry is a flattened, numbered option from a family listing.
type FamilyEntry struct {
	VariantName string
	OptionName  string
	Code        string
	Price       int64
	Number      int
	Order       int
}

// Entries flattens variants into numbered entries starting at 1.
func (f *Family) Entries() []FamilyEntry {
	var entries []FamilyEntry
	n := 1
	for _, v := range f.Variants {
		for _, o := range v.Options {
			entries = append(entries, FamilyEntry{
				Number:      n,
				VariantName: v.Name,
				OptionName:  o.Name,
				Price:       o.Price,
				Code:        o.Code,
				Order:       o.Order,
			})
			n++
		}
	}
	return entries
}

// PriceCurrency returns the label prices are shown in.
func (f *Family) PriceCurrency() string {
	if f.Family.RCBonusType == "MYREWARDS" {
		return "Poin"
	}
	return "Rp"
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
