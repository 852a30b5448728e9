package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shawon39/promptnest/internal/store"
)

const testNow = int64(1_700_000_000_000)

func prompt(title, content string) store.Prompt {
	return store.Prompt{ID: title, Title: title, Content: content}
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	prompts := []store.Prompt{
		prompt("first", "alpha"),
		prompt("second", "beta"),
	}

	results := searchAt(prompts, "   ", testNow)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.Score != 0 {
			t.Errorf("result %d score = %d, want 0", i, r.Score)
		}
		if r.Prompt.ID != prompts[i].ID {
			t.Errorf("result %d = %s, want stored order", i, r.Prompt.ID)
		}
	}
}

func TestSearchScoring(t *testing.T) {
	prompts := []store.Prompt{
		prompt("code review", "Review this code for bugs"),
		prompt("review helper", "Help me review a document"),
		prompt("unrelated", "Nothing matches here"),
	}

	results := searchAt(prompts, "code review", testNow)

	// Exact title match dominates, the non-matching prompt is dropped.
	assert.Len(t, results, 2)
	assert.Equal(t, "code review", results[0].Prompt.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchExactTitleScore(t *testing.T) {
	p := prompt("Email Draft", "Write an email about scheduling")

	results := searchAt([]store.Prompt{p}, "email draft", testNow)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	// exact title 100 + content word "email" 10 + title words 20+10 prefix +20
	assert.Equal(t, 160, results[0].Score)
}

func TestSearchUsageBoostsScore(t *testing.T) {
	recent := testNow - 1000
	stale := testNow - 30*24*60*60*1000

	hot := prompt("greeting", "say hello")
	hot.UseCount = 5
	hot.LastUsed = &recent

	cold := prompt("greetings", "say hello")
	cold.LastUsed = &stale

	results := searchAt([]store.Prompt{cold, hot}, "hello", testNow)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Prompt.ID != "greeting" {
		t.Errorf("best = %s, want the used prompt first", results[0].Prompt.ID)
	}
	// content 30 + word 10 + 5 uses * 2 + recent 5, versus 30 + 10 for cold
	assert.Equal(t, 55, results[0].Score)
	assert.Equal(t, 40, results[1].Score)
}

func TestSearchShortWordsIgnored(t *testing.T) {
	p := prompt("x marks the spot", "a b c")

	results := searchAt([]store.Prompt{p}, "x spot", testNow)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	// Only "spot" counts as a word; "x" is too short. No whole-query hit.
	assert.Equal(t, 20, results[0].Score)
}

func TestSearchStableForEqualScores(t *testing.T) {
	prompts := []store.Prompt{
		prompt("alpha note", "same text"),
		prompt("beta note", "same text"),
	}

	results := searchAt(prompts, "same text", testNow)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Prompt.ID != "alpha note" {
		t.Errorf("equal scores reordered: %s first", results[0].Prompt.ID)
	}
}
