// Package decoy resolves the decoy package configured for each payment channel.
package decoy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/kuota/internal/common"
)

// ConfigResolver looks decoys up in a static channel → option code table.
type ConfigResolver struct {
	channels map[string]string
}

// NewConfigResolver creates a resolver over channels. Channel names are
// matched case-insensitively.
func NewConfigResolver(channels map[string]string) *ConfigResolver {
	normalized := make(map[string]string, len(channels))
	for ch, code := range channels {
		normalized[strings.ToLower(strings.TrimSpace(ch))] = strings.TrimSpace(code)
	}
	return &ConfigResolver{channels: normalized}
}

// ResolveDecoy returns the option code mapped to channel.
func (r *ConfigResolver) ResolveDecoy(_ context.Context, channel string) (string, error) {
	code, ok := r.channels[strings.ToLower(channel)]
	if !ok || code == "" {
		return "", fmt.Errorf("%w: no decoy configured for channel %q (configured: %s)",
			common.ErrDecoyUnavailable, channel, r.configured())
	}
	return code, nil
}

// configured lists the channels that have a decoy, for error messages.
func (r *ConfigResolver) configured() string {
	names := make([]string, 0, len(r.channels))
	for ch, code := range r.channels {
		if code != "" {
			names = append(names, ch)
		}
	}
	if len(names) == 0 {
		return "none, set decoy.channels in the config file"
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
