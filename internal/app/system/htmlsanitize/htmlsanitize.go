// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize cleans user-written text (e.g., the note attached to
// a group invitation) before it is stored or put into an email.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MaxNoteLength caps the stored length of a note, in runes.
const MaxNoteLength = 500

var strict = bluemonday.StrictPolicy()

// StripTags removes all markup and returns plain text. Entities escaped by
// the policy are decoded again so the stored value reads naturally.
func StripTags(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// CleanNote strips markup and truncates to MaxNoteLength runes.
func CleanNote(s string) string {
	s = StripTags(s)
	r := []rune(s)
	if len(r) > MaxNoteLength {
		s = strings.TrimSpace(string(r[:MaxNoteLength]))
	}
	return s
}

// PlainTextToHTML escapes text and converts newlines to <br> for HTML bodies.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}
