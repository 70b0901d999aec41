package render

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// slugger produces GitHub-style heading anchors, numbering repeats the way
// GitHub does ("errors", "errors-1", ...).
type slugger struct {
	lower cases.Caser
	seen  map[string]int
}

func newSlugger(headings ...string) *slugger {
	s := &slugger{
		lower: cases.Lower(language.Und),
		seen:  make(map[string]int),
	}
	for _, h := range headings {
		s.slug(h)
	}
	return s
}

func (s *slugger) slug(heading string) string {
	base := anchor(s.lower.String(heading))
	n := s.seen[base]
	s.seen[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

func anchor(heading string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(heading) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}
