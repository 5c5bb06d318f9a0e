// internal/app/policy/grouprules/email.go
package grouprules

import (
	"strings"

	"github.com/badoux/checkmail"
)

// FoldEmail is the comparison key for member emails.
func FoldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail checks the local@domain.tld shape. checkmail accepts
// single-label domains, so a dotted domain with a tld of two or more
// letters is required on top of it.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || checkmail.ValidateFormat(email) != nil {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 {
		return false
	}
	tld := domain[dot+1:]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
