package backup

import (
	"errors"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shawon39/promptnest/internal/storage"
	"github.com/shawon39/promptnest/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st := store.New(storage.NewMemory(), zerolog.Nop())
	e := NewEngine(st, zerolog.Nop())
	e.now = func() time.Time { return time.UnixMilli(1_700_000_000_000).UTC() }
	return e, st
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":         `{broken`,
		"not an object":    `[1,2,3]`,
		"missing version":  `{"data":{}}`,
		"missing data":     `{"version":"1.0.0"}`,
		"categories shape": `{"version":"1.0.0","data":{"categories":{"id":"x"}}}`,
		"prompts shape":    `{"version":"1.0.0","data":{"prompts":"nope"}}`,
		"category fields":  `{"version":"1.0.0","data":{"categories":[{"id":"c1","name":"X"}]}}`,
		"prompt fields":    `{"version":"1.0.0","data":{"prompts":[{"id":"p1","title":"T","created":1}]}}`,
		"settings shape":   `{"version":"1.0.0","data":{"settings":[1]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("err = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestParseAcceptsMinimalDocument(t *testing.T) {
	doc, err := Parse([]byte(`{"version":"1.0.0","data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Version)
	assert.Empty(t, doc.Data.Categories)
}

func TestExportFull(t *testing.T) {
	e, st := newTestEngine(t)
	cat, _ := st.AddCategory("Writing")
	p, _ := st.AddPrompt("Draft", "Write a draft about:", cat.ID)
	st.IncrementUsage(p.ID)
	st.IncrementUsage(p.ID)

	doc, err := e.Export()
	require.NoError(t, err)

	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, TypeFull, doc.ExportType)
	assert.Equal(t, 1, doc.Metadata.TotalCategories)
	assert.Equal(t, 1, doc.Metadata.TotalPrompts)
	assert.Equal(t, 2, doc.Metadata.TotalUses)
	assert.NotEmpty(t, doc.Data.Settings)

	// The document survives its own serialization and validation.
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	reparsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.Data.Prompts, reparsed.Data.Prompts)
}

func TestExportPromptsOmitsSettings(t *testing.T) {
	e, st := newTestEngine(t)
	st.AddPrompt("One", "content", "")

	doc, err := e.ExportPrompts()
	require.NoError(t, err)
	assert.Equal(t, TypePrompts, doc.ExportType)
	assert.Empty(t, doc.Data.Settings)
	assert.Zero(t, doc.Metadata.TotalUses)
}

func TestImportMergeSkipsDuplicatesAndStamps(t *testing.T) {
	e, st := newTestEngine(t)
	st.AddCategory("Writing")
	st.AddPrompt("Draft", "Write a draft about:", "")

	doc := &Document{
		Version: Version,
		Data: Data{
			Categories: []store.Category{
				{ID: "in-c1", Name: "WRITING", Created: 1}, // dup, case-insensitive
				{ID: "in-c2", Name: "Coding", Created: 1},
			},
			Prompts: []store.Prompt{
				{ID: "in-p1", Title: "Draft", Content: "Write a draft about:", Created: 1}, // dup
				{ID: "in-p2", Title: "Review", Content: "Review this:", Created: 1},
			},
		},
	}

	sum, err := e.Import(doc, Options{Mode: ModeMerge, Items: AllItems()})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CategoriesAdded)
	assert.Equal(t, 1, sum.PromptsAdded)
	assert.False(t, sum.SettingsApplied)

	cats, _ := st.Categories()
	require.Len(t, cats, 2)
	added := cats[1]
	assert.Equal(t, "Coding", added.Name)
	assert.NotEqual(t, "in-c2", added.ID, "merged records must get fresh ids")
	assert.True(t, added.Imported)
	assert.NotZero(t, added.ImportDate)

	prompts, _ := st.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, "Review", prompts[1].Title)
	assert.NotEqual(t, "in-p2", prompts[1].ID)
}

func TestImportMergeIsIdempotent(t *testing.T) {
	e, st := newTestEngine(t)
	st.AddCategory("Writing")
	st.AddPrompt("Draft", "Write a draft about:", "")

	doc, err := e.Export()
	require.NoError(t, err)

	sum, err := e.Import(doc, Options{Mode: ModeMerge, Items: AllItems()})
	require.NoError(t, err)
	assert.Zero(t, sum.CategoriesAdded)
	assert.Zero(t, sum.PromptsAdded)

	cats, _ := st.Categories()
	prompts, _ := st.Prompts()
	assert.Len(t, cats, 1)
	assert.Len(t, prompts, 1)
}

func TestImportReplaceIsVerbatim(t *testing.T) {
	e, st := newTestEngine(t)
	st.AddCategory("Old")
	st.AddPrompt("Old", "old content", "")

	doc := &Document{
		Version: Version,
		Data: Data{
			Categories: []store.Category{{ID: "c1", Name: "New", Created: 1}},
			Prompts:    []store.Prompt{{ID: "p1", Title: "New", Content: "new content", Created: 1}},
		},
	}

	_, err := e.Import(doc, Options{Mode: ModeReplace, Items: AllItems()})
	require.NoError(t, err)

	cats, _ := st.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "c1", cats[0].ID, "replace keeps incoming ids")
	assert.False(t, cats[0].Imported)

	prompts, _ := st.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, "p1", prompts[0].ID)
}

func TestImportSettingsMergeIsPartial(t *testing.T) {
	e, st := newTestEngine(t)
	off := false
	st.UpdateSettings(store.SettingsPatch{AutoBackup: &off})

	doc := &Document{
		Version: Version,
		Data:    Data{Settings: json.RawMessage(`{"theme":"dark"}`)},
	}
	_, err := e.Import(doc, Options{Mode: ModeMerge, Items: Items{Settings: true}})
	require.NoError(t, err)

	settings, _ := st.Settings()
	assert.Equal(t, store.ThemeDark, settings.Theme)
	assert.False(t, settings.AutoBackup, "absent keys must not reset merged settings")
}

func TestImportItemsFilter(t *testing.T) {
	e, st := newTestEngine(t)

	doc := &Document{
		Version: Version,
		Data: Data{
			Categories: []store.Category{{ID: "c1", Name: "New", Created: 1}},
			Prompts:    []store.Prompt{{ID: "p1", Title: "New", Content: "x", Created: 1}},
		},
	}
	sum, err := e.Import(doc, Options{Mode: ModeMerge, Items: Items{Prompts: true}})
	require.NoError(t, err)
	assert.Zero(t, sum.CategoriesAdded)
	assert.Equal(t, 1, sum.PromptsAdded)

	cats, _ := st.Categories()
	assert.Empty(t, cats)
}

func TestRenderText(t *testing.T) {
	e, st := newTestEngine(t)
	cat, _ := st.AddCategory("Writing")
	st.AddPrompt("Draft", "Write a draft about:", cat.ID)
	st.AddPrompt("Loose", "No category here", "")

	text, err := e.RenderText()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "PromptNest Export\n=================\n\n"))
	assert.Contains(t, text, "Total Prompts: 2\n")
	assert.Contains(t, text, "## Writing\n\n### Draft\nWrite a draft about:\n")
	assert.Contains(t, text, "## Uncategorized\n\n### Loose\n")

	// Category sections come in category order, uncategorized last.
	assert.Less(t, strings.Index(text, "## Writing"), strings.Index(text, "## Uncategorized"))
}
