package model

// Quota is a package currently active on the subscriber's line.
type Quota struct {
	QuotaCode        string    `json:"quota_code"`
	Name             string    `json:"name"`
	SubscriptionType string    `json:"product_subscription_type"`
	Domain           string    `json:"product_domain"`
	Benefits         []Benefit `json:"benefits"`
}

// StoreFamily is one entry of the store's family search.
type StoreFamily struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// StoreActionPDP marks a store entry that opens a package detail page. Its
// action parameter is the option code.
const StoreActionPDP = "PDP"

// StorePackage is one entry of the store's package search.
type StorePackage struct {
	Title           string `json:"title"`
	FamilyName      string `json:"family_name"`
	Validity        string `json:"validity"`
	ActionType      string `json:"action_type"`
	ActionParam     string `json:"action_param"`
	OriginalPrice   int64  `json:"original_price"`
	DiscountedPrice int64  `json:"discounted_price"`
}

// Price is the discounted price when there is one.
func (p StorePackage) Price() int64 {
	if p.DiscountedPrice > 0 {
		return p.DiscountedPrice
	}
	return p.OriginalPrice
}
