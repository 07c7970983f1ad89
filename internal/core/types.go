package core

import "time"

// Availability represents the availability verdict for a domain check.
type Availability int

const (
	AvailabilityUnknown   Availability = 0
	AvailabilityAvailable Availability = 1
	AvailabilityTaken     Availability = 2
	AvailabilityCanceled  Availability = 3
)

// String returns a human-readable label for the verdict.
func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityTaken:
		return "taken"
	case AvailabilityCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Bool reports the verdict as a boolean when one was derived. ok is false
// for unknown and canceled outcomes.
func (a Availability) Bool() (value bool, ok bool) {
	switch a {
	case AvailabilityAvailable:
		return true, true
	case AvailabilityTaken:
		return false, true
	default:
		return false, false
	}
}

// Provenance captures metadata about how a check was resolved.
type Provenance struct {
	CheckID        string     `json:"check_id"`
	RequestedAt    time.Time  `json:"requested_at"`
	ResolvedAt     time.Time  `json:"resolved_at"`
	Server         string     `json:"server,omitempty"`
	FromCache      bool       `json:"from_cache"`
	CacheExpiresAt *time.Time `json:"cache_expires_at,omitempty"`
	ToolVersion    string     `json:"tool_version,omitempty"`
}

// CheckResult reports the availability verdict for one domain along with
// supporting context. StatusCode is zero when the request never completed.
// Raw holds the parsed response body when one was available.
type CheckResult struct {
	Domain     string         `json:"domain"`
	Available  Availability   `json:"available"`
	Status     string         `json:"status"`
	StatusCode int            `json:"http_status,omitempty"`
	Raw        map[string]any `json:"raw,omitempty"`
	Provenance Provenance     `json:"provenance"`
}
