package llm

import "strings"

// Kind classifies upstream failures by what the caller should do about them.
type Kind int

const (
	KindUnknown Kind = iota
	KindRegionRestricted
	KindUnavailable
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindRegionRestricted:
		return "region_restricted"
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Guidance strings surfaced to clients on 503 responses. Operators behind
// regional blocks rely on this exact wording; do not rephrase.
const (
	RegionGuidance       = "Gemini API is not available in this region. Please use VPN or deploy to a supported region."
	ConnectivityGuidance = "Cannot connect to Gemini API. Please check your network connection, firewall settings, or use VPN if Google services are blocked in your region."
)

// Classify maps an upstream error to a Kind by substring match. The Gemini
// SDK does not expose stable error types for these conditions, so matching
// follows the messages observed in production.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "location is not supported"),
		strings.Contains(msg, "user location"),
		strings.Contains(msg, "failed_precondition"):
		return KindRegionRestricted
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "unavailable"):
		return KindUnavailable
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"):
		return KindRateLimited
	}
	return KindUnknown
}

// Guidance returns the client-facing message for a kind, or "" when the kind
// carries no fixed guidance.
func Guidance(kind Kind) string {
	switch kind {
	case KindRegionRestricted:
		return RegionGuidance
	case KindUnavailable:
		return ConnectivityGuidance
	default:
		return ""
	}
}
