package sdmx

import "net/url"

// maxFilterLen bounds the dimension filter before it reaches the URL.
const maxFilterLen = 200

// SanitizeFilter validates a caller-supplied dimension filter and returns it
// percent-encoded for use as a URL path segment.
//
// The sanitized value is concatenated directly into the outbound request
// path, so this is the injection boundary: anything outside the SDMX key
// grammar (path separators, quotes, control characters, scheme prefixes) is
// rejected outright rather than escaped, since an escaped-but-hostile value
// would still produce an ambiguous URL.
func SanitizeFilter(raw string) (string, error) {
	if raw == "" {
		return "", &InputError{Field: "filter", Value: raw, Reason: "filter must not be empty"}
	}
	if len(raw) > maxFilterLen {
		return "", &InputError{Field: "filter", Value: raw, Reason: "filter exceeds 200 characters"}
	}
	for _, r := range raw {
		if !allowedFilterRune(r) {
			return "", &InputError{Field: "filter", Value: raw, Reason: "only letters, digits and . _ - : + * are allowed"}
		}
	}
	return url.PathEscape(raw), nil
}

func allowedFilterRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-', r == ':', r == '+', r == '*':
		return true
	}
	return false
}
