package checker

import (
	"strings"

	"github.com/domainsweep/domainsweep/internal/core"
)

const (
	statusAvailable   = "AVAILABLE"
	statusUnavailable = "UNAVAILABLE"
	statusUnknown     = "unknown"
)

// classifyPayload derives an availability verdict from a parsed response
// body. Recognized shapes, in priority order:
//
//  1. {"DomainInfo": {"domainAvailability": "AVAILABLE"}}, also accepted
//     with a lowercase "domainInfo" key or an "availability" field. The
//     value is matched case-insensitively; UNAVAILABLE and TAKEN mean
//     taken, any other string containing AVAILABLE means available.
//  2. {"available": true}
//
// Anything else is reported as unknown. The raw payload is retained for
// diagnostics; the caller fills in the HTTP status code.
func classifyPayload(domain string, payload map[string]any) *core.CheckResult {
	result := &core.CheckResult{
		Domain:    domain,
		Available: core.AvailabilityUnknown,
		Status:    statusUnknown,
		Raw:       payload,
	}

	if info := domainInfoObject(payload); info != nil {
		if value, ok := availabilityString(info); ok {
			normalized := strings.ToUpper(value)
			switch {
			case strings.Contains(normalized, statusUnavailable), strings.Contains(normalized, "TAKEN"):
				result.Available = core.AvailabilityTaken
				result.Status = normalized
				return result
			case strings.Contains(normalized, statusAvailable):
				result.Available = core.AvailabilityAvailable
				result.Status = normalized
				return result
			}
		}
	}

	if value, ok := payload["available"].(bool); ok {
		if value {
			result.Available = core.AvailabilityAvailable
			result.Status = statusAvailable
		} else {
			result.Available = core.AvailabilityTaken
			result.Status = statusUnavailable
		}
		return result
	}

	return result
}

func domainInfoObject(payload map[string]any) map[string]any {
	for _, key := range []string{"DomainInfo", "domainInfo"} {
		if info, ok := payload[key].(map[string]any); ok {
			return info
		}
	}
	return nil
}

func availabilityString(info map[string]any) (string, bool) {
	for _, key := range []string{"domainAvailability", "availability"} {
		if value, ok := info[key].(string); ok && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}
