// internal/app/system/normalize/normalize.go

// Package normalize holds small canonicalization helpers applied to user
// input before it is stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address. Empty or whitespace-only
// input normalizes to "".
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailDomain returns the lowercased domain portion of an email address
// (the part after the last '@'), or "" when there is none. The domain gate
// in the verification workflow compares this against the chamber's
// registered website domain.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// Name trims and collapses inner whitespace runs to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
