// Package capture turns text selected on a page into a stored prompt, with a
// derived title and a record of where it came from.
package capture

import (
	"strings"
	"time"
	"unicode"

	"github.com/orsinium-labs/stopwords"

	"github.com/shawon39/promptnest/internal/store"
)

var english = stopwords.MustGet("en")

// FallbackCategory receives captures when no default category is configured.
const FallbackCategory = "general"

// titleWords is how many significant words of the selection go into a
// derived title.
const titleWords = 6

// PageInfo identifies the page a selection came from.
type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Title derives a prompt title from the selected text: its first significant
// words, with stopwords filtered out so the title keys on content rather than
// glue. When the selection has no significant words the page title is used
// instead, and "webpage" stands in for an untitled page.
func Title(selection string, page PageInfo) string {
	words := significantWords(selection, titleWords)
	if len(words) > 0 {
		return strings.Join(words, " ")
	}

	pageTitle := strings.TrimSpace(page.Title)
	if pageTitle == "" {
		pageTitle = "webpage"
	}
	return "Prompt from " + pageTitle
}

func significantWords(text string, limit int) []string {
	var words []string
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" || english.Contains(strings.ToLower(word)) {
			continue
		}
		words = append(words, word)
		if len(words) == limit {
			break
		}
	}
	return words
}

// Save stores a selection as a prompt. The target category is the configured
// default, or the general category when none is set. Saving the same
// selection twice returns the prompt stored the first time.
func Save(st *store.Store, selection string, page PageInfo) (store.Prompt, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return store.Prompt{}, store.ErrEmptyField
	}

	settings, err := st.Settings()
	if err != nil {
		return store.Prompt{}, err
	}
	category := settings.DefaultCategory
	if category == "" {
		category = FallbackCategory
	}

	src := &store.Source{
		URL:     page.URL,
		Title:   page.Title,
		SavedAt: time.Now().UnixMilli(),
	}
	return st.AddPromptWithSource(Title(selection, page), selection, category, src)
}
