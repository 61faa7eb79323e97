// Package normalize provides canonicalization helpers for device and software
// identifiers coming from external inventory sources.
//
// The directory service and the device-management service report the same
// physical machine under slightly different identifiers (truncated display
// names, mixed-case serials, version-suffixed software names). These helpers
// reduce raw identifiers to stable comparison keys so that records from both
// sources can be joined deterministically.
package normalize

import (
	"regexp"
	"strings"
)

var (
	versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)*`)
	archPattern    = regexp.MustCompile(`(?i)\(?\b(x64|x86|32-bit|64-bit|amd64|arm64)\b\)?`)
	alnumPattern   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Serial canonicalizes a raw serial number for cross-source comparison.
// The result is uppercased and trimmed, and the function is idempotent:
// Serial(Serial(s)) == Serial(s) for any input.
func Serial(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// SerialFromName extracts the serial number embedded in a directory device
// display name. Directory names follow a "<site-prefix>-<serial>" convention,
// e.g. "atl-HKXRGK2". The returned serial is canonicalized with Serial.
// Returns ("", false) when the name does not contain a hyphen.
func SerialFromName(displayName string) (string, bool) {
	idx := strings.Index(displayName, "-")
	if idx < 0 {
		return "", false
	}
	return Serial(displayName[idx+1:]), true
}

// SoftwareName reduces a software display name to a grouping key that is
// stable across version and edition differences. Version substrings
// (e.g. "24.01"), architecture and edition tokens (x64, x86, 32-bit, 64-bit,
// amd64, arm64, parenthesized or bare) and all separators are stripped, and
// the remainder is lowercased. Two names normalize equal exactly when they
// name the same software product.
func SoftwareName(raw string) string {
	s := versionPattern.ReplaceAllString(raw, " ")
	s = archPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	s = alnumPattern.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// NameKey reduces a device display name to a case- and punctuation-insensitive
// comparison key used for fuzzy name matching.
func NameKey(name string) string {
	return strings.ToLower(alnumPattern.ReplaceAllString(name, ""))
}

// NamesMatch reports whether two device display names should be considered
// the same device by name alone. Names match when their keys are equal or one
// contains the other, which tolerates truncated names from the
// device-management service. Empty names never match.
func NamesMatch(a, b string) bool {
	ka, kb := NameKey(a), NameKey(b)
	if ka == "" || kb == "" {
		return false
	}
	return ka == kb || strings.Contains(ka, kb) || strings.Contains(kb, ka)
}
