package capture

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shawon39/promptnest/internal/storage"
	"github.com/shawon39/promptnest/internal/store"
)

func TestTitleFromSignificantWords(t *testing.T) {
	got := Title("Explain the concept of recursion to a beginner", PageInfo{Title: "Docs"})
	assert.Equal(t, "Explain concept recursion beginner", got)
}

func TestTitleCapsWordCount(t *testing.T) {
	got := Title("alpha bravo charlie delta echo foxtrot golf hotel", PageInfo{})
	assert.Equal(t, "alpha bravo charlie delta echo foxtrot", got)
}

func TestTitleFallsBackToPageTitle(t *testing.T) {
	assert.Equal(t, "Prompt from The Example Site", Title("of the and", PageInfo{Title: "The Example Site"}))
	assert.Equal(t, "Prompt from webpage", Title("", PageInfo{}))
}

func TestTitleStripsPunctuation(t *testing.T) {
	got := Title(`"Summarize: recursion, architecture."`, PageInfo{})
	assert.Equal(t, "Summarize recursion architecture", got)
}

func TestSave(t *testing.T) {
	st := store.New(storage.NewMemory(), zerolog.Nop())

	p, err := Save(st, "  Summarize this architecture document  ", PageInfo{
		URL:   "https://example.com/doc",
		Title: "Architecture",
	})
	require.NoError(t, err)

	assert.Equal(t, "Summarize architecture document", p.Title)
	assert.Equal(t, "Summarize this architecture document", p.Content)
	assert.Equal(t, FallbackCategory, p.CategoryID)
	require.NotNil(t, p.Source)
	assert.Equal(t, "https://example.com/doc", p.Source.URL)
	assert.NotZero(t, p.Source.SavedAt)
}

func TestSaveUsesConfiguredDefaultCategory(t *testing.T) {
	st := store.New(storage.NewMemory(), zerolog.Nop())
	def := "work"
	_, err := st.UpdateSettings(store.SettingsPatch{DefaultCategory: &def})
	require.NoError(t, err)

	p, err := Save(st, "Draft a status update", PageInfo{})
	require.NoError(t, err)
	assert.Equal(t, "work", p.CategoryID)
}

func TestSaveDedupes(t *testing.T) {
	st := store.New(storage.NewMemory(), zerolog.Nop())

	first, err := Save(st, "Summarize this document", PageInfo{URL: "https://a.test"})
	require.NoError(t, err)
	second, err := Save(st, "Summarize this document", PageInfo{URL: "https://b.test"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	prompts, _ := st.Prompts()
	assert.Len(t, prompts, 1)
}

func TestSaveRejectsEmptySelection(t *testing.T) {
	st := store.New(storage.NewMemory(), zerolog.Nop())
	_, err := Save(st, "   ", PageInfo{})
	assert.True(t, errors.Is(err, store.ErrEmptyField))
}
