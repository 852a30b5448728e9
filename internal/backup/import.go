package backup

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/shawon39/promptnest/internal/store"
)

// Mode selects how an import treats existing data.
type Mode string

const (
	// ModeMerge keeps existing records and adds only incoming records that do
	// not collide with them.
	ModeMerge Mode = "merge"

	// ModeReplace overwrites the selected collections wholesale.
	ModeReplace Mode = "replace"
)

// Items selects which collections an import touches.
type Items struct {
	Categories bool `json:"categories"`
	Prompts    bool `json:"prompts"`
	Settings   bool `json:"settings"`
}

// AllItems selects everything.
func AllItems() Items {
	return Items{Categories: true, Prompts: true, Settings: true}
}

// Options configures an import.
type Options struct {
	Mode  Mode  `json:"mode"`
	Items Items `json:"items"`
}

// Summary reports what an import changed.
type Summary struct {
	CategoriesAdded int  `json:"categoriesAdded"`
	PromptsAdded    int  `json:"promptsAdded"`
	SettingsApplied bool `json:"settingsApplied"`
}

// Import applies a validated document to the store. Merge identifies
// duplicate categories by case-insensitive name and duplicate prompts by
// trimmed title plus content; survivors get fresh ids and an import stamp so
// they can never collide with existing records and remain traceable.
func (e *Engine) Import(doc *Document, opts Options) (Summary, error) {
	var sum Summary
	now := e.now().UnixMilli()

	if opts.Items.Categories && doc.Data.Categories != nil {
		n, err := e.importCategories(doc.Data.Categories, opts.Mode, now)
		if err != nil {
			return sum, err
		}
		sum.CategoriesAdded = n
	}

	if opts.Items.Prompts && doc.Data.Prompts != nil {
		n, err := e.importPrompts(doc.Data.Prompts, opts.Mode, now)
		if err != nil {
			return sum, err
		}
		sum.PromptsAdded = n
	}

	if opts.Items.Settings && len(doc.Data.Settings) > 0 {
		if err := e.importSettings(doc.Data.Settings, opts.Mode); err != nil {
			return sum, err
		}
		sum.SettingsApplied = true
	}

	e.log.Info().
		Str("mode", string(opts.Mode)).
		Int("categories", sum.CategoriesAdded).
		Int("prompts", sum.PromptsAdded).
		Bool("settings", sum.SettingsApplied).
		Msg("import applied")
	return sum, nil
}

func categoryKey(c store.Category) string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

func promptKey(p store.Prompt) string {
	return strings.TrimSpace(p.Title) + "\x00" + strings.TrimSpace(p.Content)
}

func (e *Engine) importCategories(incoming []store.Category, mode Mode, now int64) (int, error) {
	if mode == ModeReplace {
		return len(incoming), e.st.SetCategories(incoming)
	}

	existing, err := e.st.Categories()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[categoryKey(c)] = true
	}

	added := 0
	merged := existing
	for _, c := range incoming {
		if seen[categoryKey(c)] {
			continue
		}
		seen[categoryKey(c)] = true
		c.ID = store.NewID()
		c.Imported = true
		c.ImportDate = now
		merged = append(merged, c)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, e.st.SetCategories(merged)
}

func (e *Engine) importPrompts(incoming []store.Prompt, mode Mode, now int64) (int, error) {
	if mode == ModeReplace {
		return len(incoming), e.st.SetPrompts(incoming)
	}

	existing, err := e.st.Prompts()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[promptKey(p)] = true
	}

	added := 0
	merged := existing
	for _, p := range incoming {
		if seen[promptKey(p)] {
			continue
		}
		seen[promptKey(p)] = true
		p.ID = store.NewID()
		p.Imported = true
		p.ImportDate = now
		merged = append(merged, p)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, e.st.SetPrompts(merged)
}

func (e *Engine) importSettings(raw json.RawMessage, mode Mode) error {
	if mode == ModeMerge {
		// Only the keys present in the document override current settings.
		var patch store.SettingsPatch
		if err := json.Unmarshal(raw, &patch); err != nil {
			return err
		}
		_, err := e.st.UpdateSettings(patch)
		return err
	}

	settings := store.DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return err
	}
	return e.st.ReplaceSettings(settings)
}
