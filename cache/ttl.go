package cache

import (
	"fmt"
	"strings"
	"time"
)

// ParseTTL reads a ttl as written on a command line or query string. Empty or
// "0" selects the engine default (zero), "none" or a negative duration
// selects NoExpiry, anything else is a time.ParseDuration string.
func ParseTTL(raw string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "default":
		return 0, nil
	case "none", "never":
		return NoExpiry, nil
	}

	ttl, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: %w", raw, err)
	}
	if ttl < 0 {
		return NoExpiry, nil
	}
	return ttl, nil
}
