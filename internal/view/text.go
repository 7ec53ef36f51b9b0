package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	nameColumnWidth = 32
	textTimeLayout  = "2006-01-02 15:04"
	noDataMarker    = "// NO_DATA_FOUND"
)

// TextOptions tune terminal rendering.
type TextOptions struct {
	ShowCode bool
	Location *time.Location
}

// RenderText writes a terminal listing of the notes.
func RenderText(w io.Writer, notes []api.Note, options TextOptions) error {
	location := options.Location
	if location == nil {
		location = time.Local
	}
	if _, err := fmt.Fprintf(w, "[%02d]\n", len(notes)); err != nil {
		return err
	}
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, noDataMarker)
		return err
	}
	for _, note := range notes {
		name := runewidth.FillRight(runewidth.Truncate(note.Name, nameColumnWidth, "…"), nameColumnWidth)
		line := fmt.Sprintf("%6d  %s  %s  %s",
			note.ID,
			note.CreatedAt.In(location).Format(textTimeLayout),
			name,
			attachmentLabel(note),
		)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		if options.ShowCode {
			if _, err := fmt.Fprintln(w, indent(note.Code, "        ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func attachmentLabel(note api.Note) string {
	attachment := note.Attachment()
	switch {
	case !attachment.Present():
		return ""
	case attachment.IsImage():
		return "[image]"
	case attachment.FileName() != "":
		return "[file: " + attachment.FileName() + "]"
	default:
		return "[file]"
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for index, line := range lines {
		lines[index] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// RenderDetail writes one note in full: header, attachment, then the code
// exactly as stored.
func RenderDetail(w io.Writer, note api.Note, location *time.Location) error {
	if location == nil {
		location = time.Local
	}
	if _, err := fmt.Fprintf(w, "#%d %s\ncreated: %s\n", note.ID, note.Name, note.CreatedAt.In(location).Format(textTimeLayout)); err != nil {
		return err
	}
	if attachment := note.Attachment(); attachment.Present() {
		typeLabel := attachment.MIMEType()
		if typeLabel == "" {
			typeLabel = defaultTypeLabel
		}
		if _, err := fmt.Fprintf(w, "attachment: %s (%s, %s)\n", DownloadName(note), typeLabel, humanize.IBytes(uint64(len(attachment.DataURI())))); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "---"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(note.Code, "\n"))
	return err
}
