package client

import (
	"context"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/view"
)

// Lister loads the full note list.
type Lister interface {
	List(ctx context.Context) ([]api.Note, error)
}

// NoteListCache holds the client's copy of the note list. It is only ever
// replaced wholesale by Refresh; renders are O(n) in the cached notes.
type NoteListCache struct {
	source Lister
	clock  func() time.Time

	mu       sync.RWMutex
	notes    []api.Note
	loadedAt time.Time
}

func NewNoteListCache(source Lister) *NoteListCache {
	return &NoteListCache{source: source, clock: time.Now}
}

// Refresh reloads every note from the server. On failure the previous
// contents are kept.
func (c *NoteListCache) Refresh(ctx context.Context) error {
	notes, err := c.source.List(ctx)
	if err != nil {
		return err
	}
	if notes == nil {
		notes = []api.Note{}
	}
	c.mu.Lock()
	c.notes = notes
	c.loadedAt = c.clock()
	c.mu.Unlock()
	return nil
}

// All returns a copy of the cached notes in server order.
func (c *NoteListCache) All() []api.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	notes := make([]api.Note, len(c.notes))
	copy(notes, c.notes)
	return notes
}

// Filter matches the cached notes against query without contacting the server.
func (c *NoteListCache) Filter(query string) []api.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return view.Filter(c.notes, query)
}

// Find returns the cached note with the given id.
func (c *NoteListCache) Find(id int64) (api.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, note := range c.notes {
		if note.ID == id {
			return note, true
		}
	}
	return api.Note{}, false
}

// LoadedAt reports when the cache was last refreshed; zero before the first load.
func (c *NoteListCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
