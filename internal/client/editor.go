package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
)

// NotesAPI is the subset of the service the editor drives.
type NotesAPI interface {
	Lister
	Create(ctx context.Context, request api.SaveRequest) (int64, error)
	Get(ctx context.Context, id int64) (api.Note, error)
	Update(ctx context.Context, request api.UpdateRequest) error
	Delete(ctx context.Context, id int64) error
}

// FormState is the editor's identity state.
type FormState int

const (
	// FormEmpty is the initial state and the state after Clear.
	FormEmpty FormState = iota
	// FormCreating holds user input that has no note id yet.
	FormCreating
	// FormEditing holds a note loaded from the server.
	FormEditing
)

func (s FormState) String() string {
	switch s {
	case FormCreating:
		return "creating"
	case FormEditing:
		return "editing"
	default:
		return "empty"
	}
}

// AttachmentState tracks the attachment independently of the form identity.
type AttachmentState int

const (
	AttachmentNone AttachmentState = iota
	// AttachmentPending is a selected file that has not been saved yet.
	AttachmentPending
	// AttachmentAttached is a file already stored with the loaded note.
	AttachmentAttached
)

type intentKind int

const (
	intentCreate intentKind = iota
	intentEdit
)

// Intent says what Submit will do.
type Intent struct {
	kind   intentKind
	noteID int64
}

// CreateIntent submits a new note.
func CreateIntent() Intent {
	return Intent{kind: intentCreate}
}

// EditIntent replaces the note with the given id.
func EditIntent(noteID int64) Intent {
	return Intent{kind: intentEdit, noteID: noteID}
}

// NoteID returns the target id of an edit intent.
func (i Intent) NoteID() (int64, bool) {
	return i.noteID, i.kind == intentEdit
}

// SubmitResult describes a successful submission.
type SubmitResult struct {
	Intent  Intent
	NoteID  int64
	Message string
}

// Editor is the single create-or-edit form.
type Editor struct {
	service NotesAPI
	cache   *NoteListCache

	state           FormState
	intent          Intent
	name            string
	code            string
	attachment      notes.Attachment
	attachmentState AttachmentState
}

func NewEditor(service NotesAPI, cache *NoteListCache) *Editor {
	return &Editor{service: service, cache: cache}
}

func (e *Editor) State() FormState {
	return e.state
}

func (e *Editor) Intent() Intent {
	return e.intent
}

func (e *Editor) Name() string {
	return e.name
}

func (e *Editor) Code() string {
	return e.code
}

func (e *Editor) Attachment() notes.Attachment {
	return e.attachment
}

func (e *Editor) AttachmentState() AttachmentState {
	return e.attachmentState
}

// Load fetches a note and enters the editing state. On failure the form is
// left unchanged.
func (e *Editor) Load(ctx context.Context, id int64) error {
	note, err := e.service.Get(ctx, id)
	if err != nil {
		return err
	}
	e.state = FormEditing
	e.intent = EditIntent(note.ID)
	e.name = note.Name
	e.code = note.Code
	e.attachment = note.Attachment()
	e.attachmentState = AttachmentNone
	if e.attachment.Present() {
		e.attachmentState = AttachmentAttached
	}
	return nil
}

func (e *Editor) SetName(name string) {
	e.name = name
	e.touch()
}

func (e *Editor) SetCode(code string) {
	e.code = code
	e.touch()
}

// AttachFile loads a local file as the pending attachment. A rejected file
// leaves the current attachment untouched.
func (e *Editor) AttachFile(path string) error {
	attachment, err := LoadAttachment(path)
	if err != nil {
		return err
	}
	e.Attach(attachment)
	return nil
}

// Attach sets an already-encoded pending attachment.
func (e *Editor) Attach(attachment notes.Attachment) {
	if !attachment.Present() {
		e.Detach()
		return
	}
	e.attachment = attachment
	e.attachmentState = AttachmentPending
	e.touch()
}

// Detach removes the attachment; the next submit clears it on the server.
func (e *Editor) Detach() {
	e.attachment = notes.NoAttachment()
	e.attachmentState = AttachmentNone
}

// Clear resets the form to its empty state.
func (e *Editor) Clear() {
	*e = Editor{service: e.service, cache: e.cache}
}

// Submit creates or updates the note according to the current intent. On
// success the form is cleared and the cache is reloaded; a failed reload is
// reported as ErrRefreshFailed alongside the successful result.
func (e *Editor) Submit(ctx context.Context) (SubmitResult, error) {
	if strings.TrimSpace(e.name) == "" || strings.TrimSpace(e.code) == "" {
		return SubmitResult{}, ErrIncompleteForm
	}

	imageData, fileType, fileName := e.attachment.Columns()
	request := api.SaveRequest{
		Name:     e.name,
		Code:     e.code,
		Image:    imageData,
		FileType: fileType,
		FileName: fileName,
	}

	intent := e.intent
	result := SubmitResult{Intent: intent}
	if noteID, editing := intent.NoteID(); editing {
		if err := e.service.Update(ctx, api.UpdateRequest{ID: api.NewNoteID(noteID), SaveRequest: request}); err != nil {
			return SubmitResult{}, err
		}
		result.NoteID = noteID
		result.Message = "Note updated successfully!"
	} else {
		noteID, err := e.service.Create(ctx, request)
		if err != nil {
			return SubmitResult{}, err
		}
		result.NoteID = noteID
		result.Message = "Note saved successfully!"
	}

	e.Clear()
	if e.cache != nil {
		if err := e.cache.Refresh(ctx); err != nil {
			return result, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
	}
	return result, nil
}

// DeleteNote removes a note and reloads the cache.
func DeleteNote(ctx context.Context, service NotesAPI, cache *NoteListCache, id int64) error {
	if err := service.Delete(ctx, id); err != nil {
		return err
	}
	if cache == nil {
		return nil
	}
	if err := cache.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return nil
}

func (e *Editor) touch() {
	if e.state == FormEmpty {
		e.state = FormCreating
		e.intent = CreateIntent()
	}
}
