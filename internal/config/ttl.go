package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultAccessTokenTTL applies when JWT_EXPIRATION_TIME is unset.
const DefaultAccessTokenTTL = 24 * time.Hour

var ttlPattern = regexp.MustCompile(`^(\d*\.?\d+)\s*([a-z]*)$`)

var ttlUnits = map[string]time.Duration{
	"ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
	"y": 8766 * time.Hour, "yr": 8766 * time.Hour, "yrs": 8766 * time.Hour,
	"year": 8766 * time.Hour, "years": 8766 * time.Hour,
}

// TTL is a token lifetime read from configuration.
type TTL time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TTL.
func (t *TTL) UnmarshalText(text []byte) error {
	d, err := ParseTTL(string(text))
	if err != nil {
		return err
	}
	*t = TTL(d)
	return nil
}

// Duration returns the TTL as a time.Duration.
func (t TTL) Duration() time.Duration {
	return time.Duration(t)
}

// ParseTTL parses lifetimes such as "1d", "2 days", "90m" or "3600".
// A bare number is a count of seconds; an empty string yields the default.
func ParseTTL(value string) (time.Duration, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return DefaultAccessTokenTTL, nil
	}

	match := ttlPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, fmt.Errorf("invalid ttl %q", value)
	}

	amount, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: %w", value, err)
	}

	unit := time.Second
	if match[2] != "" {
		u, ok := ttlUnits[match[2]]
		if !ok {
			return 0, fmt.Errorf("invalid ttl unit %q", match[2])
		}
		unit = u
	}

	d := time.Duration(amount * float64(unit))
	if d <= 0 {
		return 0, fmt.Errorf("ttl %q must be positive", value)
	}
	return d, nil
}
