package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
)

const (
	createdLayout     = "Jan 2, 2006 15:04:05"
	defaultFileLabel  = "Attached File"
	defaultTypeLabel  = "Unknown"
	dataURIPrefix     = "data:"
	imageDataURIStart = "data:image/"
)

//go:embed templates/*.html.tmpl
var templateFiles embed.FS

var templates = template.Must(template.New("").ParseFS(templateFiles, "templates/*.html.tmpl"))

// Page is the data behind a full list page.
type Page struct {
	Title string
	Query string
	Cards []Card
}

// Card is one rendered note. Attachment values are resolved once here so
// templates never inspect raw columns.
type Card struct {
	ID           int64
	Name         string
	Code         string
	Created      string
	HasFile      bool
	IsImage      bool
	ImageSource  template.URL
	DownloadHref template.URL
	DownloadName string
	DownloadKind string
	FileLabel    string
	TypeLabel    string
}

// Count renders the two-digit count badge.
func (p Page) Count() string {
	return fmt.Sprintf("%02d", len(p.Cards))
}

// NewCards builds cards for the provided notes, preserving order.
func NewCards(notes []api.Note, location *time.Location) []Card {
	if location == nil {
		location = time.Local
	}
	cards := make([]Card, 0, len(notes))
	for _, note := range notes {
		cards = append(cards, newCard(note, location))
	}
	return cards
}

func newCard(note api.Note, location *time.Location) Card {
	card := Card{
		ID:      note.ID,
		Name:    note.Name,
		Code:    note.Code,
		Created: note.CreatedAt.In(location).Format(createdLayout),
	}
	attachment := note.Attachment()
	if !attachment.Present() {
		return card
	}

	dataURI := attachment.DataURI()
	card.HasFile = true
	card.DownloadName = DownloadName(note)
	card.DownloadKind = "File"
	if strings.HasPrefix(dataURI, dataURIPrefix) {
		card.DownloadHref = template.URL(dataURI) //nolint:gosec
	}
	if attachment.IsImage() && strings.HasPrefix(dataURI, imageDataURIStart) {
		card.IsImage = true
		card.DownloadKind = "Image"
		card.ImageSource = template.URL(dataURI) //nolint:gosec
		return card
	}

	card.FileLabel = attachment.FileName()
	if card.FileLabel == "" {
		card.FileLabel = defaultFileLabel
	}
	card.TypeLabel = attachment.MIMEType()
	if card.TypeLabel == "" {
		card.TypeLabel = defaultTypeLabel
	}
	return card
}

// RenderList writes the note list fragment. Rendering the same notes twice
// produces identical output.
func RenderList(w io.Writer, cards []Card) error {
	return templates.ExecuteTemplate(w, "list", Page{Cards: cards})
}

// RenderPage writes a complete HTML document.
func RenderPage(w io.Writer, page Page) error {
	return templates.ExecuteTemplate(w, "page", page)
}
