package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpansCaseInsensitive(t *testing.T) {
	spans := Spans("Review the REVIEW checklist", "review")
	assert.Equal(t, []Span{{Start: 0, End: 6}, {Start: 11, End: 17}}, spans)
}

func TestSpansSkipsShortWords(t *testing.T) {
	assert.Nil(t, Spans("a quick test", "a"))
	assert.Nil(t, Spans("anything", ""))
}

func TestSpansMergesOverlaps(t *testing.T) {
	// "testing" and "sting" overlap inside the text; one span comes out.
	spans := Spans("unit testing matters", "testing sting")
	assert.Equal(t, []Span{{Start: 5, End: 12}}, spans)
}

func TestSpansLiteralMetacharacters(t *testing.T) {
	// Words are matched literally; "a.b" must not behave like a pattern.
	assert.Nil(t, Spans("aXb and ayb", "a.b"))
	spans := Spans("the a.b operator", "a.b")
	assert.Equal(t, []Span{{Start: 4, End: 7}}, spans)
}

func TestMark(t *testing.T) {
	got := Mark("Write a professional email", "email write")
	assert.Equal(t, "<mark>Write</mark> a professional <mark>email</mark>", got)
}

func TestMarkNoMatchesReturnsInput(t *testing.T) {
	assert.Equal(t, "plain text", Mark("plain text", "zzz"))
}

func TestRuneSpans(t *testing.T) {
	// Multi-byte runes before the match shift byte offsets but not rune ones.
	text := "héllo wörld prompt"
	spans := RuneSpans(text, "prompt")
	assert.Equal(t, []Span{{Start: 12, End: 18}}, spans)
}
