// Package search ranks prompts against free-text queries with a weighted
// heuristic: whole-query matches on the title dominate, word hits add up, and
// usage signals break ties between textual equals.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/shawon39/promptnest/internal/store"
)

// Scoring weights. Tuned so an exact title hit always outranks any
// combination of partial word hits on a rarely used prompt.
const (
	scoreTitleExact    = 100
	scoreTitleContains = 50
	scoreContent       = 30
	scoreTitleWord     = 20
	scoreTitlePrefix   = 10
	scoreContentWord   = 10
	scorePerUse        = 2
	scoreRecentUse     = 5

	recencyWindow = 7 * 24 * time.Hour
)

// Result pairs a prompt with its relevance score.
type Result struct {
	Prompt store.Prompt `json:"prompt"`
	Score  int          `json:"score"`
}

// Search ranks prompts against query, best first. A blank query returns every
// prompt in stored order with a zero score; otherwise only prompts that score
// above zero are returned.
func Search(prompts []store.Prompt, query string) []Result {
	return searchAt(prompts, query, time.Now().UnixMilli())
}

func searchAt(prompts []store.Prompt, query string, now int64) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Result, len(prompts))
		for i, p := range prompts {
			out[i] = Result{Prompt: p}
		}
		return out
	}

	lower := strings.ToLower(query)
	words := strings.Fields(lower)

	out := make([]Result, 0, len(prompts))
	for _, p := range prompts {
		if s := score(p, lower, words, now); s > 0 {
			out = append(out, Result{Prompt: p, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func score(p store.Prompt, query string, words []string, now int64) int {
	title := strings.ToLower(p.Title)
	content := strings.ToLower(p.Content)

	total := 0

	if title == query {
		total += scoreTitleExact
	} else if strings.Contains(title, query) {
		total += scoreTitleContains
	}
	if strings.Contains(content, query) {
		total += scoreContent
	}

	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if strings.Contains(title, word) {
			total += scoreTitleWord
			if strings.HasPrefix(title, word) {
				total += scoreTitlePrefix
			}
		}
		if strings.Contains(content, word) {
			total += scoreContentWord
		}
	}

	total += p.UseCount * scorePerUse
	if p.LastUsed != nil && *p.LastUsed > now-recencyWindow.Milliseconds() {
		total += scoreRecentUse
	}

	return total
}
