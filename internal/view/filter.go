package view

import (
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
)

// Filter returns the notes whose name or code contains query, ignoring case.
// An empty query matches everything. The input slice is not modified.
func Filter(notes []api.Note, query string) []api.Note {
	needle := strings.ToLower(query)
	filtered := make([]api.Note, 0, len(notes))
	for _, note := range notes {
		if needle == "" ||
			strings.Contains(strings.ToLower(note.Name), needle) ||
			strings.Contains(strings.ToLower(note.Code), needle) {
			filtered = append(filtered, note)
		}
	}
	return filtered
}
