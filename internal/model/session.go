package model

import "time"

// Session carries the active subscriber's credentials. It is passed
// explicitly to every API call.
type Session struct {
	ExpiresAt        time.Time
	IDToken          string
	AccessToken      string
	SubscriberID     string
	SubscriptionType string
}

// Expired reports whether the id token's expiry is known and has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Bookmark is a saved package or family shortcut.
type Bookmark struct {
	CreatedAt    time.Time
	FamilyCode   string
	FamilyName   string
	VariantName  string
	OptionName   string
	ID           int64
	Order        int
	IsEnterprise bool
}
