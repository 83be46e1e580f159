package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
	}{
		{"empty", "", 0},
		{"single word", "hello", 1},
		{"multiple words", "the quick brown fox", 4},
		{"extra whitespace", "  spaced \t out\nwords  ", 3},
		{"unicode words", "héllo wörld — ünïcode", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.content); got != tt.want {
				t.Errorf("WordCount(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestCharCountCodePoints(t *testing.T) {
	if got := CharCount("héllo"); got != 5 {
		t.Errorf("CharCount(héllo) = %d, want 5", got)
	}
	if got := CharCount("日本語"); got != 3 {
		t.Errorf("CharCount(日本語) = %d, want 3", got)
	}
}

func TestExcerptEmpty(t *testing.T) {
	if got := Excerpt(""); got != nil {
		t.Errorf("Excerpt(\"\") = %q, want nil", *got)
	}
}

func TestExcerptShortContent(t *testing.T) {
	got := Excerpt("short note")
	if got == nil || *got != "short note" {
		t.Errorf("Excerpt(short note) = %v, want full content", got)
	}
}

func TestExcerptTruncatesByCodePoint(t *testing.T) {
	// 500 multi-byte characters; a byte-offset slice would split one.
	content := strings.Repeat("é", 500)
	got := Excerpt(content)
	if got == nil {
		t.Fatal("Excerpt() = nil, want value")
	}
	if n := utf8.RuneCountInString(*got); n != ExcerptLength {
		t.Errorf("excerpt length = %d code points, want %d", n, ExcerptLength)
	}
	if !utf8.ValidString(*got) {
		t.Error("excerpt is not valid UTF-8")
	}
	if *got != strings.Repeat("é", ExcerptLength) {
		t.Error("excerpt does not match the leading code points")
	}
}

func TestNextDefaultTitle(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"no documents", nil, "Untitled"},
		{"bare form taken", []string{"Untitled"}, "Untitled_2"},
		{"bare and numbered taken", []string{"Untitled", "Untitled_2"}, "Untitled_3"},
		{"gap below max", []string{"Untitled", "Untitled_5"}, "Untitled_6"},
		{"numbered without bare", []string{"Untitled_3"}, "Untitled_4"},
		{"ignores non-default titles", []string{"Untitled Symphony", "Untitled_x", "Notes"}, "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDefaultTitle(tt.existing); got != tt.want {
				t.Errorf("NextDefaultTitle(%v) = %q, want %q", tt.existing, got, tt.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My First Document", "my-first-document"},
		{"Héllo Wörld", "hello-world"},
		{"!!!", "untitled"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentFilePath(t *testing.T) {
	folder := "journal"
	got := ContentFilePath(&folder, "morning-pages", "0192aabb-ccdd-7eef-8000-112233445566")
	if got != "journal/morning-pages-0192aabb.md" {
		t.Errorf("ContentFilePath() = %q", got)
	}

	got = ContentFilePath(nil, "loose-note", "0192aabb-ccdd-7eef-8000-112233445566")
	if got != "loose-note-0192aabb.md" {
		t.Errorf("ContentFilePath() root = %q", got)
	}
}
