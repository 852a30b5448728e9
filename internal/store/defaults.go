package store

import "github.com/shawon39/promptnest/internal/storage"

// Seed data for a fresh install. Ids are fixed so the popup can link a sample
// prompt to its category before the user has touched anything.
var (
	defaultCategories = []Category{
		{ID: "general", Name: "General"},
		{ID: "work", Name: "Work"},
		{ID: "creative", Name: "Creative"},
	}

	samplePrompts = []struct {
		title, content, category string
	}{
		{
			title:    "Explain Like I'm Five",
			content:  "Explain the following concept in simple terms that a 5-year-old could understand:",
			category: "general",
		},
		{
			title:    "Professional Email",
			content:  "Write a professional email regarding:",
			category: "work",
		},
		{
			title:    "Creative Story Starter",
			content:  "Write a creative short story that begins with:",
			category: "creative",
		},
	}
)

// EnsureDefaults seeds the starter categories and sample prompts on first run.
// It is a no-op whenever any category already exists, so reinstalling over an
// existing library never duplicates the samples.
func (s *Store) EnsureDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.categoriesLocked()
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		return nil
	}

	now := s.now()
	cats = make([]Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		c.Created = now
		cats = append(cats, c)
	}
	if err := s.writeList(storage.KeyCategories, cats); err != nil {
		return err
	}

	prompts := make([]Prompt, 0, len(samplePrompts))
	for _, sp := range samplePrompts {
		prompts = append(prompts, Prompt{
			ID:         NewID(),
			Title:      sp.title,
			Content:    sp.content,
			CategoryID: sp.category,
			Created:    now,
			Modified:   now,
		})
	}
	if err := s.writeList(storage.KeyPrompts, prompts); err != nil {
		return err
	}

	s.log.Info().Int("categories", len(cats)).Int("prompts", len(prompts)).Msg("seeded defaults")
	return nil
}
