package syncer

import (
	"context"

	"github.com/flemzord/modesync/internal/discovery"
	"github.com/flemzord/modesync/internal/mode"
)

// CategoryStatus is a category with its display metadata and mode count.
type CategoryStatus struct {
	Name        mode.Category `json:"name"`
	DisplayName string        `json:"display_name"`
	Icon        string        `json:"icon"`
	Count       int           `json:"count"`
}

// ModeStatus is a discovered mode and whether it would be written.
type ModeStatus struct {
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Category mode.Category `json:"category"`
	Valid    bool          `json:"valid"`
	Error    string        `json:"error,omitempty"`
}

// Status summarizes the modes directory.
type Status struct {
	ModesDir   string              `json:"modes_dir"`
	ModeCount  int                 `json:"mode_count"`
	Categories []CategoryStatus    `json:"categories"`
	Modes      []ModeStatus        `json:"modes"`
	Skipped    []discovery.Skipped `json:"skipped,omitempty"`
}

// Status discovers the modes directory and checks every discovered mode.
func (s *Syncer) Status(ctx context.Context) (*Status, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		ModesDir:  s.modesDir,
		ModeCount: cat.Count(),
		Skipped:   cat.Skipped,
		Modes:     make([]ModeStatus, 0, cat.Count()),
	}

	byCategory := cat.ByCategory()
	for _, c := range mode.AllCategories() {
		info := c.Info()
		st.Categories = append(st.Categories, CategoryStatus{
			Name:        c,
			DisplayName: info.Name,
			Icon:        info.Icon,
			Count:       len(byCategory[c]),
		})
	}

	for _, m := range cat.Modes() {
		ms := ModeStatus{Slug: m.Slug, Name: m.Name, Category: m.Category, Valid: true}
		entry, _ := cat.Entry(m.Slug)
		if _, err := load(entry); err != nil {
			ms.Valid = false
			ms.Error = err.Error()
		}
		st.Modes = append(st.Modes, ms)
	}
	return st, nil
}
