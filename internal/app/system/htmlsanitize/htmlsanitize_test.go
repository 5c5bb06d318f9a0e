package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
)

func TestStripTags_Empty(t *testing.T) {
	if got := htmlsanitize.StripTags("   "); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStripTags_PlainText(t *testing.T) {
	if got := htmlsanitize.StripTags("Join us for the library project!"); got != "Join us for the library project!" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestStripTags_RemovesScript(t *testing.T) {
	got := htmlsanitize.StripTags("Hi<script>alert('xss')</script>")
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestStripTags_RemovesMarkupKeepsText(t *testing.T) {
	got := htmlsanitize.StripTags("<p><strong>Bold</strong> move</p>")
	if got != "Bold move" {
		t.Errorf("got %q, want %q", got, "Bold move")
	}
}

func TestStripTags_DecodesAmpersand(t *testing.T) {
	got := htmlsanitize.StripTags("Tom & Jerry")
	if got != "Tom & Jerry" {
		t.Errorf("got %q", got)
	}
}

func TestCleanNote_Truncates(t *testing.T) {
	got := htmlsanitize.CleanNote(strings.Repeat("a", htmlsanitize.MaxNoteLength+50))
	if n := len([]rune(got)); n != htmlsanitize.MaxNoteLength {
		t.Errorf("length: got %d, want %d", n, htmlsanitize.MaxNoteLength)
	}
}

func TestPlainTextToHTML_EscapesAndBreaks(t *testing.T) {
	got := string(htmlsanitize.PlainTextToHTML("<b>hi</b>\nthere"))
	if got != "&lt;b&gt;hi&lt;/b&gt;<br>there" {
		t.Errorf("got %q", got)
	}
}

func TestPlainTextToHTML_Empty(t *testing.T) {
	if got := htmlsanitize.PlainTextToHTML(""); got != "" {
		t.Errorf("got %q", got)
	}
}
