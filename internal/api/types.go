// Package api defines the JSON documents exchanged between the notes
// service and its clients.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
)

// Route paths relative to the deployment base path.
const (
	PathSave       = "/save"
	PathNotes      = "/notes"
	PathNote       = "/note"
	PathUpdate     = "/update"
	PathDelete     = "/delete"
	PathNoteStream = "/notes/stream"
)

// EventNoteChanged names the change-stream event emitted after a mutation.
const EventNoteChanged = "note-change"

// Note is the wire form of a persisted note. Nullable columns are encoded as
// null rather than omitted.
type Note struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ImageData *string   `json:"image_data"`
	FileType  *string   `json:"file_type"`
	FileName  *string   `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote converts a store record into its wire form.
func NewNote(record notes.Record) Note {
	imageData, fileType, fileName := record.Attachment.Columns()
	return Note{
		ID:        record.ID.Int64(),
		Name:      record.Name,
		Code:      record.Code,
		ImageData: imageData,
		FileType:  fileType,
		FileName:  fileName,
		CreatedAt: record.CreatedAt,
	}
}

// Attachment decodes the nullable attachment fields.
func (n Note) Attachment() notes.Attachment {
	return notes.NewAttachment(n.ImageData, n.FileType, n.FileName)
}

// NoteID accepts either a JSON number or a numeric string. A null or empty
// value leaves it unset.
type NoteID struct {
	value int64
	set   bool
}

// NewNoteID wraps a known identifier.
func NewNoteID(value int64) NoteID {
	return NoteID{value: value, set: true}
}

// Value returns the identifier and whether a usable one was supplied.
func (id NoteID) Value() (int64, bool) {
	if !id.set || id.value <= 0 {
		return 0, false
	}
	return id.value, true
}

// MarshalJSON encodes the identifier as a number, or null when unset.
func (id NoteID) MarshalJSON() ([]byte, error) {
	if !id.set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.value, 10)), nil
}

// UnmarshalJSON decodes a number or a numeric string.
func (id *NoteID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = NoteID{}
		return nil
	}
	raw := string(trimmed)
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			*id = NoteID{}
			return nil
		}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("api: note id %q is not an integer", raw)
	}
	*id = NoteID{value: value, set: true}
	return nil
}

// SaveRequest is the body of a create call.
type SaveRequest struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Image    *string `json:"image"`
	FileType *string `json:"fileType"`
	FileName *string `json:"fileName"`
}

// Draft converts the request into a store draft.
func (r SaveRequest) Draft() notes.Draft {
	return notes.Draft{
		Name:       r.Name,
		Code:       r.Code,
		Attachment: notes.NewAttachment(r.Image, r.FileType, r.FileName),
	}
}

// UpdateRequest is the body of a full-replacement update call.
type UpdateRequest struct {
	ID NoteID `json:"id"`
	SaveRequest
}

// DeleteRequest is the body of a delete call.
type DeleteRequest struct {
	ID NoteID `json:"id"`
}

// SaveResponse acknowledges a create.
type SaveResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// MessageResponse acknowledges an update or a delete.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a human-readable failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChangeEvent is the payload of a note-change stream event.
type ChangeEvent struct {
	NoteIDs   []int64 `json:"noteIds"`
	Operation string  `json:"operation"`
}
