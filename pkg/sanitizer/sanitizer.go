package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reTrailingLineSpace = regexp.MustCompile(`[ \t]+\n`)
	reBlankLines        = regexp.MustCompile(`\n{3,}`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// stripControl drops control characters other than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func collapseBlankLines(s string) string {
	s = reTrailingLineSpace.ReplaceAllString(s, "\n")
	return reBlankLines.ReplaceAllString(s, "\n\n")
}

// SanitizeNotes cleans free text. Line breaks survive; at most one blank line
// is kept between paragraphs.
func SanitizeNotes(input string) string {
	p := Pipeline{
		normalizeNewlines,
		stripControl,
		collapseBlankLines,
		trim,
	}
	return p.Apply(input)
}

// SanitizeOptionalNotes applies SanitizeNotes to a non-nil value.
func SanitizeOptionalNotes(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := SanitizeNotes(*input)
	return &cleaned
}
