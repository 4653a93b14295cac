package knowledge

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContentScanner decides whether content mentions a knowledge item. The
// validator's decision logic does not depend on how matching is done.
type ContentScanner interface {
	ContainsItem(content, item string) bool
}

// SubstringScanner matches the item anywhere in the content, ignoring case.
type SubstringScanner struct{}

// ContainsItem implements ContentScanner.
func (SubstringScanner) ContainsItem(content, item string) bool {
	if item == "" {
		return false
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(item))
}

// WordScanner matches the item ignoring case, but only where the match is
// not glued to a surrounding letter or digit ("Oz" does not match "Ozone").
type WordScanner struct{}

// ContainsItem implements ContentScanner.
func (WordScanner) ContainsItem(content, item string) bool {
	if item == "" {
		return false
	}
	haystack := strings.ToLower(content)
	needle := strings.ToLower(item)

	for offset := 0; offset <= len(haystack)-len(needle); {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if !wordRuneBefore(haystack, start) && !wordRuneAfter(haystack, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[start:])
		offset = start + size
	}
	return false
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Scanner names accepted by ScannerByName.
const (
	ScannerSubstring = "substring"
	ScannerWord      = "word"
)

// ScannerByName returns the scanner registered under name. Empty selects
// the substring scanner.
func ScannerByName(name string) (ContentScanner, error) {
	switch name {
	case "", ScannerSubstring:
		return SubstringScanner{}, nil
	case ScannerWord:
		return WordScanner{}, nil
	default:
		return nil, fmt.Errorf("unknown content scanner %q: must be one of: substring, word", name)
	}
}
