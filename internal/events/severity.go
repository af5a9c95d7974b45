package events

import (
	"errors"
	"fmt"
	"strings"
)

// Severity levels ordered from least to most severe.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// ErrInvalidSeverity is returned when a severity value is not one of the
// known levels.
var ErrInvalidSeverity = errors.New("invalid severity")

// severityRanks maps each severity to its position on the ordered scale.
var severityRanks = map[string]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// SeverityRank returns the numeric rank of a severity level. Higher rank
// means more severe. Unknown values return ErrInvalidSeverity.
func SeverityRank(severity string) (int, error) {
	rank, ok := severityRanks[severity]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeverity, severity)
	}
	return rank, nil
}

// MeetsThreshold reports whether an event severity is at or above a
// subscription's severity filter. Equal severity matches. An error means one
// of the values is not a known severity; callers treat that as a non-match,
// not as a processing failure.
func MeetsThreshold(eventSeverity, filterSeverity string) (bool, error) {
	eventRank, err := SeverityRank(eventSeverity)
	if err != nil {
		return false, fmt.Errorf("event severity: %w", err)
	}
	filterRank, err := SeverityRank(filterSeverity)
	if err != nil {
		return false, fmt.Errorf("severity filter: %w", err)
	}
	return eventRank >= filterRank, nil
}

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s string) bool {
	_, ok := severityRanks[s]
	return ok
}

// NormalizeSeverity trims and uppercases a severity value so "high" and
// "HIGH" are accepted interchangeably at ingestion.
func NormalizeSeverity(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Severities returns the known severity levels in rank order.
func Severities() []string {
	return []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}
