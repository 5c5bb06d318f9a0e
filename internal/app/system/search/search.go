// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Sort fields used by student lookups.
const (
	SortByName  = "full_name_ci"
	SortByEmail = "email_ci"
)

// Needle folds a raw query the same way the *_ci fields are folded, so
// substring matching works against stored values.
func Needle(q string) string {
	return text.Fold(strings.TrimSpace(q))
}

// SortField reports which folded field should order results for q. An
// email-looking query pivots to email order; everything else sorts by name.
//
//	sort := search.SortField(q)
//	opts := options.Find().SetSort(bson.D{{Key: sort, Value: 1}})
func SortField(q string) string {
	if strings.Contains(q, "@") {
		return SortByEmail
	}
	return SortByName
}

// ContainsPattern returns an anchored-nowhere regex matching needle
// literally. Use it with folded fields only; it does no case folding.
func ContainsPattern(needle string) string {
	return regexp.QuoteMeta(needle)
}

// MatchAny reports whether needle occurs in any of the folded fields.
func MatchAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(f, needle) {
			return true
		}
	}
	return false
}
