// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// APIConfig holds the settings for talking to the provider backend.
type APIConfig struct {
	BaseURL           string
	Key               string
	Timeout           time.Duration
	RequestsPerMinute int
}

// DefaultAPIConfig returns the defaults applied before configuration is read.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Timeout:           30 * time.Second,
		RequestsPerMinute: 30,
	}
}

// Validate checks that the configuration can be used to make requests.
func (c APIConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute URL", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Key == "" {
		return fmt.Errorf("%w: api.key", common.ErrMissingConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// LoadAPIConfig loads backend configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or KUOTA_ env vars)
// 2. Direct environment variables (BASE_API_URL, API_KEY)
// 3. Default values
func LoadAPIConfig() (*APIConfig, error) {
	config := DefaultAPIConfig()

	if v := viper.GetString("api.base_url"); v != "" {
		config.BaseURL = v
	}
	if v := viper.GetString("api.key"); v != "" {
		config.Key = v
	}
	if v := viper.GetDuration("api.timeout"); v > 0 {
		config.Timeout = v
	}
	if v := viper.GetInt("api.requests_per_minute"); v > 0 {
		config.RequestsPerMinute = v
	}

	if config.BaseURL == "" {
		config.BaseURL = os.Getenv("BASE_API_URL")
	}
	if config.Key == "" {
		config.Key = os.Getenv("API_KEY")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadSession reads the active subscriber session. Token management happens
// elsewhere; this only picks up what has been stored.
func LoadSession() (model.Session, error) {
	session := model.Session{
		IDToken:          viper.GetString("session.id_token"),
		AccessToken:      viper.GetString("session.access_token"),
		SubscriberID:     viper.GetString("session.subscriber_id"),
		SubscriptionType: viper.GetString("session.subscription_type"),
	}
	if session.IDToken == "" {
		return model.Session{}, common.NewUserError("No active session. Set session.id_token in your config", common.ErrUnauthorized)
	}
	if session.SubscriptionType == "" {
		session.SubscriptionType = "PREPAID"
	}

	session.ExpiresAt = tokenExpiry(session.IDToken)
	if session.Expired(time.Now()) {
		return model.Session{}, common.NewUserError(
			fmt.Sprintf("Session expired at %s. Refresh session.id_token", session.ExpiresAt.Local().Format(time.DateTime)),
			common.ErrUnauthorized)
	}
	return session, nil
}

// tokenExpiry reads the exp claim of a JWT id token. The backend verifies the
// signature; here it is only inspected. Opaque tokens have no known expiry.
func tokenExpiry(idToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// LoadDecoyChannels returns the configured channel → decoy option code table.
func LoadDecoyChannels() map[string]string {
	return viper.GetStringMapString("decoy.channels")
}
