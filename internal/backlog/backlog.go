// Package backlog reads backlog items out of Markdown tables.
//
// A backlog is any GFM table whose header has an ID column. Points and score
// come from their own columns, and scores may also be supplied through HTML
// comment annotations:
//
//	| ID   | Title        | Points |
//	|------|--------------|--------|
//	| W-12 | Export CSV   | 3      | <!-- score: 3.4 -->
//
//	<!-- score W-12: 3.4 -->
package backlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getlawrence/prdgate/internal/domain"
)

var (
	// ErrNoBacklogTable is returned when the text has no table with an ID column
	ErrNoBacklogTable = errors.New("no backlog table found")
	// ErrItemNotFound is returned when a requested item is not in the backlog
	ErrItemNotFound = errors.New("backlog item not found")
)

// Backlog is the parsed content of one Markdown document
type Backlog struct {
	Items    []domain.Item `json:"items" yaml:"items"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	index map[string]int
}

func newBacklog() *Backlog {
	return &Backlog{index: make(map[string]int)}
}

// add appends the item unless its ID is already present
func (b *Backlog) add(item domain.Item) bool {
	key := normalizeID(item.ID)
	if _, exists := b.index[key]; exists {
		return false
	}
	b.index[key] = len(b.Items)
	b.Items = append(b.Items, item)
	return true
}

func (b *Backlog) warnf(format string, args ...interface{}) {
	b.Warnings = append(b.Warnings, fmt.Sprintf(format, args...))
}

// Find returns the item with the given ID. IDs match case-insensitively.
func (b *Backlog) Find(id string) (domain.Item, error) {
	if i, ok := b.index[normalizeID(id)]; ok {
		return b.Items[i], nil
	}
	return domain.Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, strings.TrimSpace(id))
}

// Select returns the items with the given IDs in the order requested. An empty
// ids slice returns every item.
func (b *Backlog) Select(ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return b.Items, nil
	}
	items := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := b.Find(id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
