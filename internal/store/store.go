package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/shawon39/promptnest/internal/storage"
)

var (
	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = errors.New("store: not found")

	// ErrEmptyField is returned when a required field is blank after trimming.
	ErrEmptyField = errors.New("store: empty field")

	// ErrDuplicateName is returned when a category name collides
	// case-insensitively with an existing one.
	ErrDuplicateName = errors.New("store: duplicate category name")
)

const (
	maxSearchHistory = 10
	minSearchQuery   = 2

	recentWindow = 7 * 24 * time.Hour
)

// Store is the single gateway to the persisted collections. All reads and
// writes go through it; mutations take the write lock so each read-modify-write
// against the backend is atomic within this context.
type Store struct {
	mu      sync.RWMutex
	backend storage.Backend
	log     zerolog.Logger

	now func() int64 // millisecond clock, swappable in tests
}

// New wires a Store to its backend.
func New(backend storage.Backend, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log.With().Str("component", "store").Logger(),
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// readList decodes the JSON array stored under key into out. A missing key
// leaves out untouched, and so does an unavailable backend: reads fail closed
// to an empty collection while the matching write still reports the failure.
// A present-but-corrupt value is an error: callers must not treat a failed
// decode as an empty library, or the next write would wipe it.
func (s *Store) readList(key string, out any) error {
	raw, ok, err := s.backend.Get(key)
	if errors.Is(err, storage.ErrUnavailable) {
		s.log.Warn().Str("key", key).Msg("storage unavailable, reading empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) writeList(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Categories returns all categories in stored order.
func (s *Store) Categories() ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoriesLocked()
}

func (s *Store) categoriesLocked() ([]Category, error) {
	cats := []Category{}
	if err := s.readList(storage.KeyCategories, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Prompts returns all prompts in stored order.
func (s *Store) Prompts() ([]Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promptsLocked()
}

func (s *Store) promptsLocked() ([]Prompt, error) {
	prompts := []Prompt{}
	if err := s.readList(storage.KeyPrompts, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// SetCategories replaces the whole category collection. Used by replace-mode
// import; normal mutation goes through the Add/Update/Delete operations.
func (s *Store) SetCategories(cats []Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeList(storage.KeyCategories, cats)
}

// SetPrompts replaces the whole prompt collection.
func (s *Store) SetPrompts(prompts []Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeList(storage.KeyPrompts, prompts)
}

// AddCategory creates a category with the given name. The name is trimmed;
// blank names and case-insensitive duplicates are rejected.
func (s *Store) AddCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.categoriesLocked()
	if err != nil {
		return Category{}, err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return Category{}, ErrDuplicateName
		}
	}

	cat := Category{
		ID:      NewID(),
		Name:    name,
		Created: s.now(),
	}
	cats = append(cats, cat)
	if err := s.writeList(storage.KeyCategories, cats); err != nil {
		return Category{}, err
	}
	s.log.Debug().Str("id", cat.ID).Str("name", cat.Name).Msg("category added")
	return cat, nil
}

// UpdateCategory applies a patch to the category with the given id.
func (s *Store) UpdateCategory(id string, patch CategoryPatch) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.categoriesLocked()
	if err != nil {
		return Category{}, err
	}

	idx := -1
	for i, c := range cats {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Category{}, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Category{}, ErrEmptyField
		}
		for i, c := range cats {
			if i != idx && strings.EqualFold(c.Name, name) {
				return Category{}, ErrDuplicateName
			}
		}
		cats[idx].Name = name
	}
	cats[idx].Modified = s.now()

	if err := s.writeList(storage.KeyCategories, cats); err != nil {
		return Category{}, err
	}
	return cats[idx], nil
}

// DeleteCategory removes a category and every prompt assigned to it. If the
// category was the settings default, the default is cleared as well.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.categoriesLocked()
	if err != nil {
		return err
	}

	kept := cats[:0]
	found := false
	for _, c := range cats {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err := s.writeList(storage.KeyCategories, kept); err != nil {
		return err
	}

	prompts, err := s.promptsLocked()
	if err != nil {
		return err
	}
	remaining := prompts[:0]
	removed := 0
	for _, p := range prompts {
		if p.CategoryID == id {
			removed++
			continue
		}
		remaining = append(remaining, p)
	}
	if removed > 0 {
		if err := s.writeList(storage.KeyPrompts, remaining); err != nil {
			return err
		}
	}

	settings, err := s.settingsLocked()
	if err != nil {
		return err
	}
	if settings.DefaultCategory == id {
		settings.DefaultCategory = ""
		if err := s.writeList(storage.KeySettings, settings); err != nil {
			return err
		}
	}

	s.log.Debug().Str("id", id).Int("cascaded", removed).Msg("category deleted")
	return nil
}

// AddPrompt creates a prompt, or returns the existing one when a prompt with
// the same trimmed title and content is already stored. Saving the same
// selection twice must not produce twins.
func (s *Store) AddPrompt(title, content, categoryID string) (Prompt, error) {
	return s.AddPromptWithSource(title, content, categoryID, nil)
}

// AddPromptWithSource is AddPrompt carrying page provenance.
func (s *Store) AddPromptWithSource(title, content, categoryID string, src *Source) (Prompt, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return Prompt{}, ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.promptsLocked()
	if err != nil {
		return Prompt{}, err
	}
	for _, p := range prompts {
		if strings.TrimSpace(p.Title) == title && strings.TrimSpace(p.Content) == content {
			return p, nil
		}
	}

	now := s.now()
	p := Prompt{
		ID:         NewID(),
		Title:      title,
		Content:    content,
		CategoryID: categoryID,
		Created:    now,
		Modified:   now,
		Source:     src,
	}
	prompts = append(prompts, p)
	if err := s.writeList(storage.KeyPrompts, prompts); err != nil {
		return Prompt{}, err
	}
	s.log.Debug().Str("id", p.ID).Str("title", p.Title).Msg("prompt added")
	return p, nil
}

// UpdatePrompt applies a patch to the prompt with the given id and bumps its
// modified timestamp.
func (s *Store) UpdatePrompt(id string, patch PromptPatch) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.promptsLocked()
	if err != nil {
		return Prompt{}, err
	}

	idx := -1
	for i, p := range prompts {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Prompt{}, ErrEmptyField
		}
		prompts[idx].Title = title
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return Prompt{}, ErrEmptyField
		}
		prompts[idx].Content = content
	}
	if patch.CategoryID != nil {
		prompts[idx].CategoryID = *patch.CategoryID
	}
	prompts[idx].Modified = s.now()

	if err := s.writeList(storage.KeyPrompts, prompts); err != nil {
		return Prompt{}, err
	}
	return prompts[idx], nil
}

// DeletePrompt removes the prompt with the given id.
func (s *Store) DeletePrompt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.promptsLocked()
	if err != nil {
		return err
	}
	kept := prompts[:0]
	found := false
	for _, p := range prompts {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}
	return s.writeList(storage.KeyPrompts, kept)
}

// ClonePrompt duplicates a prompt under a fresh id with " (Copy)" appended to
// the title. Usage counters start from zero; the source reference is kept.
func (s *Store) ClonePrompt(id string) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.promptsLocked()
	if err != nil {
		return Prompt{}, err
	}

	var orig *Prompt
	for i := range prompts {
		if prompts[i].ID == id {
			orig = &prompts[i]
			break
		}
	}
	if orig == nil {
		return Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}

	now := s.now()
	clone := *orig
	clone.ID = NewID()
	clone.Title = orig.Title + " (Copy)"
	clone.Created = now
	clone.Modified = now
	clone.UseCount = 0
	clone.LastUsed = nil
	clone.Imported = false
	clone.ImportDate = 0

	prompts = append(prompts, clone)
	if err := s.writeList(storage.KeyPrompts, prompts); err != nil {
		return Prompt{}, err
	}
	return clone, nil
}

// IncrementUsage bumps a prompt's use counter and stamps its last-used time.
func (s *Store) IncrementUsage(id string) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.promptsLocked()
	if err != nil {
		return Prompt{}, err
	}
	for i := range prompts {
		if prompts[i].ID != id {
			continue
		}
		now := s.now()
		prompts[i].UseCount++
		prompts[i].LastUsed = &now
		if err := s.writeList(storage.KeyPrompts, prompts); err != nil {
			return Prompt{}, err
		}
		return prompts[i], nil
	}
	return Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
}

// PromptsByCategory returns the prompts assigned to categoryID. The sentinel
// "all" (or empty string) returns everything.
func (s *Store) PromptsByCategory(categoryID string) ([]Prompt, error) {
	prompts, err := s.Prompts()
	if err != nil {
		return nil, err
	}
	if categoryID == "" || categoryID == "all" {
		return prompts, nil
	}
	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecentPrompts returns up to limit prompts ordered by last use, newest first.
// Never-used prompts are excluded.
func (s *Store) RecentPrompts(limit int) ([]Prompt, error) {
	prompts, err := s.Prompts()
	if err != nil {
		return nil, err
	}
	used := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.LastUsed != nil {
			used = append(used, p)
		}
	}
	sort.SliceStable(used, func(i, j int) bool {
		return *used[i].LastUsed > *used[j].LastUsed
	})
	if limit > 0 && len(used) > limit {
		used = used[:limit]
	}
	return used, nil
}

// PopularPrompts returns up to limit prompts ordered by use count, highest
// first. Unused prompts are excluded.
func (s *Store) PopularPrompts(limit int) ([]Prompt, error) {
	prompts, err := s.Prompts()
	if err != nil {
		return nil, err
	}
	used := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.UseCount > 0 {
			used = append(used, p)
		}
	}
	sort.SliceStable(used, func(i, j int) bool {
		return used[i].UseCount > used[j].UseCount
	})
	if limit > 0 && len(used) > limit {
		used = used[:limit]
	}
	return used, nil
}

// Settings returns the stored preferences, falling back to defaults for a
// fresh install.
func (s *Store) Settings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingsLocked()
}

func (s *Store) settingsLocked() (Settings, error) {
	raw, ok, err := s.backend.Get(storage.KeySettings)
	if errors.Is(err, storage.ErrUnavailable) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read %s: %w", storage.KeySettings, err)
	}
	if !ok {
		return DefaultSettings(), nil
	}
	settings := DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", storage.KeySettings, err)
	}
	return settings, nil
}

// UpdateSettings merges a patch into the stored preferences and returns the
// result. Absent patch fields keep their stored values.
func (s *Store) UpdateSettings(patch SettingsPatch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settingsLocked()
	if err != nil {
		return Settings{}, err
	}
	if patch.Theme != nil {
		settings.Theme = *patch.Theme
	}
	if patch.AutoBackup != nil {
		settings.AutoBackup = *patch.AutoBackup
	}
	if patch.ShowUsageStats != nil {
		settings.ShowUsageStats = *patch.ShowUsageStats
	}
	if patch.DefaultCategory != nil {
		settings.DefaultCategory = *patch.DefaultCategory
	}
	if err := s.writeList(storage.KeySettings, settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// ReplaceSettings overwrites the stored preferences wholesale.
func (s *Store) ReplaceSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeList(storage.KeySettings, settings)
}

// SearchHistory returns recent queries, most recent first.
func (s *Store) SearchHistory() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hist := []string{}
	if err := s.readList(storage.KeySearchHistory, &hist); err != nil {
		return nil, err
	}
	return hist, nil
}

// AddSearchHistory records a query at the front of the history. Queries
// shorter than two characters are ignored, repeats move to the front, and the
// list is capped at ten entries.
func (s *Store) AddSearchHistory(query string) error {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQuery {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var hist []string
	if err := s.readList(storage.KeySearchHistory, &hist); err != nil {
		return err
	}

	next := make([]string, 0, len(hist)+1)
	next = append(next, query)
	for _, q := range hist {
		if q == query {
			continue
		}
		next = append(next, q)
	}
	if len(next) > maxSearchHistory {
		next = next[:maxSearchHistory]
	}
	return s.writeList(storage.KeySearchHistory, next)
}

// Statistics computes an aggregate snapshot of the library.
func (s *Store) Statistics() (Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cats, err := s.categoriesLocked()
	if err != nil {
		return Statistics{}, err
	}
	prompts, err := s.promptsLocked()
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalCategories: len(cats),
		TotalPrompts:    len(prompts),
	}

	cutoff := s.now() - recentWindow.Milliseconds()
	var top *Prompt
	for i := range prompts {
		p := &prompts[i]
		stats.TotalUses += p.UseCount
		if p.LastUsed != nil && *p.LastUsed >= cutoff {
			stats.RecentActivity++
		}
		if p.UseCount > 0 && (top == nil || p.UseCount > top.UseCount) {
			top = p
		}
	}
	if len(prompts) > 0 {
		stats.AverageUses = float64(stats.TotalUses) / float64(len(prompts))
	}
	if top != nil {
		cp := *top
		stats.MostUsedPrompt = &cp
	}
	return stats, nil
}
