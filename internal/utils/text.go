// Package utils holds small pure helpers shared by the service layer.
package utils

import (
	"strings"
	"unicode/utf8"
)

// ExcerptLength is the number of Unicode code points kept in a document
// excerpt.
const ExcerptLength = 200

// WordCount counts whitespace-separated tokens.
func WordCount(content string) int64 {
	return int64(len(strings.Fields(content)))
}

// CharCount counts Unicode code points, not bytes.
func CharCount(content string) int64 {
	return int64(utf8.RuneCountInString(content))
}

// Excerpt returns the first ExcerptLength code points of the content, or nil
// for empty content. Truncation is by code point so multi-byte characters
// are never split.
func Excerpt(content string) *string {
	if content == "" {
		return nil
	}
	runes := []rune(content)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	excerpt := string(runes)
	return &excerpt
}
