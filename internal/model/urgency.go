package model

import "strings"

// Urgency is the coarse priority classification assigned to a message
// by the analysis service.
type Urgency string

const (
	UrgencyLow     Urgency = "Low"
	UrgencyMedium  Urgency = "Medium"
	UrgencyHigh    Urgency = "High"
	UrgencyUnknown Urgency = "Unknown"
)

// Rank maps an urgency to its sort position: most urgent first,
// Unknown always last. Unrecognized values rank with Unknown so a
// misbehaving service response can never break batch ordering.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		return 4
	}
}

// ParseUrgency normalizes a free-form urgency string from the analysis
// service into one of the known levels. Matching is case-insensitive;
// anything unrecognized becomes Unknown.
func ParseUrgency(s string) Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return UrgencyLow
	case "medium":
		return UrgencyMedium
	case "high":
		return UrgencyHigh
	default:
		return UrgencyUnknown
	}
}
