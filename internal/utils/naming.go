package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// DefaultTitlePrefix is the title given to documents created without one.
const DefaultTitlePrefix = "Untitled"

// NextDefaultTitle picks an unused default title given the default-prefixed
// titles already present in the target folder. The bare prefix comes first,
// then numbered forms one past the highest suffix in use ("Untitled",
// "Untitled_2", "Untitled_3", ...).
func NextDefaultTitle(existing []string) string {
	maxSuffix := 0
	for _, title := range existing {
		if title == DefaultTitlePrefix {
			if maxSuffix < 1 {
				maxSuffix = 1
			}
			continue
		}
		rest, ok := strings.CutPrefix(title, DefaultTitlePrefix+"_")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 2 {
			continue
		}
		if n > maxSuffix {
			maxSuffix = n
		}
	}
	if maxSuffix == 0 {
		return DefaultTitlePrefix
	}
	return fmt.Sprintf("%s_%d", DefaultTitlePrefix, maxSuffix+1)
}

// Slugify derives a URL-safe slug from a title or folder name.
func Slugify(text string) string {
	s := slug.Make(text)
	if s == "" {
		return "untitled"
	}
	return s
}

// ContentFilePath builds the relative storage path for a document. The
// document id's leading characters keep the path unique even when slugs
// collide, and a deleted document's path is never handed out again because
// ids are never reused.
func ContentFilePath(folderSlug *string, titleSlug, documentID string) string {
	short := documentID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("%s-%s.md", titleSlug, short)
	if folderSlug == nil || *folderSlug == "" {
		return name
	}
	return *folderSlug + "/" + name
}
