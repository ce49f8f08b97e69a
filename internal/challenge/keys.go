package challenge

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is how often a new canonical challenge is minted.
type Granularity string

const (
	Daily  Granularity = "daily"
	Hourly Granularity = "hourly"
)

const (
	dailyLayout  = "2006-01-02"
	hourlyLayout = "2006-01-02-15"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "", Daily:
		return Daily, nil
	case Hourly:
		return Hourly, nil
	default:
		return "", fmt.Errorf("unknown challenge granularity %q", s)
	}
}

// Keyer derives the canonical challenge id for a point in time.
type Keyer struct {
	granularity Granularity
	loc         *time.Location
}

func NewKeyer(g Granularity, loc *time.Location) Keyer {
	if loc == nil {
		loc = time.UTC
	}
	if g == "" {
		g = Daily
	}
	return Keyer{granularity: g, loc: loc}
}

// Key formats now in the keyer's time zone.
func (k Keyer) Key(now time.Time) string {
	layout := dailyLayout
	if k.granularity == Hourly {
		layout = hourlyLayout
	}
	return now.In(k.loc).Format(layout)
}

// Resolve returns override when it is a well-formed day or hour key, and the
// key for now when override is empty.
func (k Keyer) Resolve(override string, now time.Time) (string, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return k.Key(now), nil
	}
	for _, layout := range []string{dailyLayout, hourlyLayout} {
		if _, err := time.ParseInLocation(layout, override, k.loc); err == nil {
			return override, nil
		}
	}
	return "", &InputError{Field: "date", Message: "expected YYYY-MM-DD"}
}
