package notes

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrValidation indicates that a required note field is missing.
	ErrValidation = errors.New("notes: validation failed")
	// ErrNotFound indicates that no note exists for the requested identifier.
	ErrNotFound = errors.New("notes: note not found")
	// ErrInvalidNoteID indicates that a note identifier is not a positive integer.
	ErrInvalidNoteID = errors.New("notes: invalid note id")
)

// NoteID represents a validated server-assigned note identifier.
type NoteID int64

// NewNoteID validates a raw identifier and returns a NoteID.
func NewNoteID(value int64) (NoteID, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNoteID, value)
	}
	return NoteID(value), nil
}

// Int64 exposes the raw identifier value.
func (id NoteID) Int64() int64 {
	return int64(id)
}

// Note models the persisted row. Attachment columns are nullable so rows
// written before file_type and file_name existed still load.
type Note struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:text"`
	Code      string    `gorm:"column:code;type:text"`
	ImageData *string   `gorm:"column:image_data;type:text"`
	FileType  *string   `gorm:"column:file_type;type:text"`
	FileName  *string   `gorm:"column:file_name;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}

// Record is the decoded view of a Note handed to callers of the store.
type Record struct {
	ID         NoteID
	Name       string
	Code       string
	Attachment Attachment
	CreatedAt  time.Time
}

func newRecord(note Note) Record {
	return Record{
		ID:         NoteID(note.ID),
		Name:       note.Name,
		Code:       note.Code,
		Attachment: decodeAttachment(note.ImageData, note.FileType, note.FileName),
		CreatedAt:  note.CreatedAt,
	}
}

// Draft carries the user-supplied fields of a create or a full update.
type Draft struct {
	Name       string
	Code       string
	Attachment Attachment
}

// Validate reports ErrValidation when the name or the code is blank.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.Code) == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
