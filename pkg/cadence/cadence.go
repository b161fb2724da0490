// Package cadence maps a device's update-interval tier to its expected reporting gap.
package cadence

import (
	"fmt"
	"strings"
	"time"

	"agrisense/entities"
)

var gaps = map[entities.UpdateInterval]time.Duration{
	entities.IntervalHigh:   1 * time.Minute,
	entities.IntervalNormal: 5 * time.Minute,
	entities.IntervalLow:    25 * time.Minute,
}

// Default is the tier assumed when a slave has none configured.
const Default = entities.IntervalNormal

// ExpectedGap returns the spacing between readings for tier. A nil tier means Default.
func ExpectedGap(tier *entities.UpdateInterval) time.Duration {
	if tier == nil {
		return gaps[Default]
	}
	if d, ok := gaps[*tier]; ok {
		return d
	}
	return gaps[Default]
}

// Parse accepts a tier name in any case.
func Parse(s string) (entities.UpdateInterval, error) {
	u := entities.UpdateInterval(strings.ToUpper(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("update_interval must be one of LOW, NORMAL, HIGH (got %q)", s)
	}
	return u, nil
}

// Silent reports whether a device last heard from at last has missed more
// than tolerance expected gaps at now. A device never heard from is silent.
func Silent(last *time.Time, tier *entities.UpdateInterval, now time.Time, tolerance float64) bool {
	if last == nil {
		return true
	}
	if tolerance <= 0 {
		tolerance = 1
	}
	allowed := time.Duration(float64(ExpectedGap(tier)) * tolerance)
	return now.Sub(*last) > allowed
}
