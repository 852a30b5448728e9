package backup

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/shawon39/promptnest/internal/store"
)

// Engine reads and writes the library through its store.
type Engine struct {
	st  *store.Store
	log zerolog.Logger

	now func() time.Time
}

// NewEngine wires a backup engine to the store.
func NewEngine(st *store.Store, log zerolog.Logger) *Engine {
	return &Engine{
		st:  st,
		log: log.With().Str("component", "backup").Logger(),
		now: time.Now,
	}
}

// Export produces a full backup document: categories, prompts, and settings.
func (e *Engine) Export() (*Document, error) {
	cats, prompts, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	settings, err := e.st.Settings()
	if err != nil {
		return nil, err
	}
	rawSettings, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	totalUses := 0
	for _, p := range prompts {
		totalUses += p.UseCount
	}

	return &Document{
		Version:    Version,
		ExportDate: e.now().UTC().Format(time.RFC3339),
		ExportType: TypeFull,
		Metadata: Metadata{
			TotalCategories: len(cats),
			TotalPrompts:    len(prompts),
			TotalUses:       totalUses,
		},
		Data: Data{
			Categories: cats,
			Prompts:    prompts,
			Settings:   rawSettings,
		},
	}, nil
}

// ExportPrompts produces a backup without settings, for sharing a library
// between people rather than moving a whole install.
func (e *Engine) ExportPrompts() (*Document, error) {
	cats, prompts, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return &Document{
		Version:    Version,
		ExportDate: e.now().UTC().Format(time.RFC3339),
		ExportType: TypePrompts,
		Metadata: Metadata{
			TotalCategories: len(cats),
			TotalPrompts:    len(prompts),
		},
		Data: Data{
			Categories: cats,
			Prompts:    prompts,
		},
	}, nil
}

func (e *Engine) snapshot() ([]store.Category, []store.Prompt, error) {
	cats, err := e.st.Categories()
	if err != nil {
		return nil, nil, err
	}
	prompts, err := e.st.Prompts()
	if err != nil {
		return nil, nil, err
	}
	return cats, prompts, nil
}

// RenderText renders the library as a readable text outline, grouped by
// category with uncategorized prompts at the end.
func (e *Engine) RenderText() (string, error) {
	cats, prompts, err := e.snapshot()
	if err != nil {
		return "", err
	}

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	// Group in category order, then anything left over.
	grouped := make(map[string][]store.Prompt)
	for _, p := range prompts {
		name, ok := names[p.CategoryID]
		if !ok {
			name = "Uncategorized"
		}
		grouped[name] = append(grouped[name], p)
	}

	var b strings.Builder
	b.WriteString("PromptNest Export\n")
	b.WriteString("=================\n\n")
	fmt.Fprintf(&b, "Export Date: %s\n", e.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Prompts: %d\n\n", len(prompts))

	writeGroup := func(name string) {
		ps, ok := grouped[name]
		if !ok {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", name)
		for _, p := range ps {
			fmt.Fprintf(&b, "### %s\n%s\n\n", p.Title, p.Content)
		}
		delete(grouped, name)
	}

	for _, c := range cats {
		writeGroup(c.Name)
	}
	writeGroup("Uncategorized")

	return b.String(), nil
}
