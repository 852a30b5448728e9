package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// Span is an interval of text to highlight. Offsets are byte positions into
// the original string unless converted with RuneSpans.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Spans finds every occurrence of the query's words (two or more characters)
// in text, case-insensitively, and returns merged byte spans. Matching is a
// multi-pattern scan, so a query full of words costs one pass over the text.
func Spans(text, query string) []Span {
	words := highlightWords(query)
	if len(words) == 0 || text == "" {
		return nil
	}

	ac, err := ahocorasick.NewBuilder().
		AddStrings(words).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil
	}

	folded, toOrig := foldWithOffsets(text)
	matches := ac.FindAllOverlapping([]byte(folded))
	if len(matches) == 0 {
		return nil
	}

	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		start, end := toOrig[m.Start], toOrig[m.End]
		if start >= end {
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return mergeSpans(spans)
}

// RuneSpans is Spans with offsets converted to rune positions, for callers on
// the far side of a string boundary that counts characters, not bytes.
func RuneSpans(text, query string) []Span {
	spans := Spans(text, query)
	for i, sp := range spans {
		spans[i].Start = utf8.RuneCountInString(text[:sp.Start])
		spans[i].End = utf8.RuneCountInString(text[:sp.End])
	}
	return spans
}

// Mark wraps every highlight span of text in <mark> tags and returns the
// resulting HTML fragment. Query words that happen to contain regexp or HTML
// metacharacters are matched literally.
func Mark(text, query string) string {
	spans := Spans(text, query)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*len("<mark></mark>"))
	prev := 0
	for _, sp := range spans {
		b.WriteString(text[prev:sp.Start])
		b.WriteString("<mark>")
		b.WriteString(text[sp.Start:sp.End])
		b.WriteString("</mark>")
		prev = sp.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

// highlightWords splits the query into lowercased words worth highlighting.
// Single characters are skipped; they mark too much to be useful.
func highlightWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	words := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// foldWithOffsets lowercases text and returns, for every byte position of the
// folded string (plus one past the end), the corresponding byte position in
// the original. Lowercasing can change a rune's encoded length, so matches
// found in the folded text cannot be sliced out of the original directly.
func foldWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)

	for i, r := range text {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(text))
	return b.String(), offsets
}

// mergeSpans sorts spans and coalesces any that touch or overlap, so nested
// <mark> tags never appear when query words overlap in the text.
func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.Start <= last.End {
			if sp.End > last.End {
				last.End = sp.End
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}
