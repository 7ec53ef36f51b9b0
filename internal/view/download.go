package view

import (
	"regexp"
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
)

const (
	fallbackDownloadName = "download"
	fallbackExtension    = "png"
)

var unsafeNameCharacters = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DownloadName picks the filename offered when saving a note's attachment:
// the recorded filename, else the note name made filesystem-safe with an
// extension taken from the MIME subtype.
func DownloadName(note api.Note) string {
	attachment := note.Attachment()
	if name := attachment.FileName(); name != "" {
		return name
	}
	if note.Name == "" {
		return fallbackDownloadName
	}
	safeName := strings.ToLower(unsafeNameCharacters.ReplaceAllString(note.Name, "_"))
	extension := fallbackExtension
	if mimeType := attachment.MIMEType(); mimeType != "" {
		if _, subtype, ok := strings.Cut(mimeType, "/"); ok && subtype != "" {
			extension = subtype
		}
	}
	return safeName + "." + extension
}
