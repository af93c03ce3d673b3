// CLAUDE:SUMMARY Maps HTTP statuses and transport errors to an Unavailable class.
package fetch

import "strings"

// Class categorizes why a source was unavailable.
type Class string

const (
	ClassTemporary Class = "temporary"  // 5xx, timeout, DNS, reset
	ClassNotFound  Class = "not_found"  // 404, 410
	ClassForbidden Class = "forbidden"  // 403
	ClassAuth      Class = "auth"       // 401
	ClassRateLimit Class = "rate_limit" // 429
	ClassBlocked   Class = "blocked"    // SSRF validator refused the URL
	ClassTooLarge  Class = "too_large"  // body over MaxBytes
	ClassUnknown   Class = "unknown"
)

func classifyStatus(code int) Class {
	switch {
	case code == 401:
		return ClassAuth
	case code == 403:
		return ClassForbidden
	case code == 404 || code == 410:
		return ClassNotFound
	case code == 429:
		return ClassRateLimit
	case code >= 500 && code < 600:
		return ClassTemporary
	}
	return ClassUnknown
}

func classifyError(err error) Class {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "eof") ||
		strings.Contains(msg, "tls handshake") {
		return ClassTemporary
	}
	return ClassUnknown
}
