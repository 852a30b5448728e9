// Package store provides durable CRUD over the PromptNest collections:
// categories, prompts, settings, and search history. Collections are stored
// as whole JSON blobs under well-known keys of a storage.Backend; every
// mutation is a read-modify-write serialized behind the store mutex.
package store

// Category is a named grouping of prompts.
// Deleting a category cascades to the prompts referencing it.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Created  int64  `json:"created"`
	Modified int64  `json:"modified,omitempty"`

	// Merge-import bookkeeping
	Imported   bool  `json:"imported,omitempty"`
	ImportDate int64 `json:"importDate,omitempty"`
}

// Source records where a prompt captured from page text came from.
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	SavedAt int64  `json:"savedAt"`
}

// Prompt is a titled block of reusable text.
type Prompt struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	CategoryID string  `json:"categoryId,omitempty"` // empty = uncategorized
	Created    int64   `json:"created"`
	Modified   int64   `json:"modified"`
	UseCount   int     `json:"useCount"`
	LastUsed   *int64  `json:"lastUsed"`
	Source     *Source `json:"source,omitempty"`

	// Merge-import bookkeeping
	Imported   bool  `json:"imported,omitempty"`
	ImportDate int64 `json:"importDate,omitempty"`
}

// Theme values for Settings.Theme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings is the singleton preferences record.
type Settings struct {
	Theme           string `json:"theme"`
	AutoBackup      bool   `json:"autoBackup"`
	ShowUsageStats  bool   `json:"showUsageStats"`
	DefaultCategory string `json:"defaultCategory,omitempty"`
}

// DefaultSettings returns the first-run preferences.
func DefaultSettings() Settings {
	return Settings{
		Theme:          ThemeAuto,
		AutoBackup:     true,
		ShowUsageStats: true,
	}
}

// SettingsPatch is a partial Settings update; nil fields are left unchanged.
type SettingsPatch struct {
	Theme           *string `json:"theme,omitempty"`
	AutoBackup      *bool   `json:"autoBackup,omitempty"`
	ShowUsageStats  *bool   `json:"showUsageStats,omitempty"`
	DefaultCategory *string `json:"defaultCategory,omitempty"`
}

// CategoryPatch is a partial Category update.
type CategoryPatch struct {
	Name *string `json:"name,omitempty"`
}

// PromptPatch is a partial Prompt update.
type PromptPatch struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// Statistics is an aggregate snapshot over the whole library.
type Statistics struct {
	TotalCategories int     `json:"totalCategories"`
	TotalPrompts    int     `json:"totalPrompts"`
	TotalUses       int     `json:"totalUses"`
	AverageUses     float64 `json:"averageUsesPerPrompt"`
	MostUsedPrompt  *Prompt `json:"mostUsedPrompt,omitempty"`
	RecentActivity  int     `json:"recentActivity"` // prompts used in the last 7 days
}
