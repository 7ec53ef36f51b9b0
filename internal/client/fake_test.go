package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
)

// fakeNotesAPI is an in-memory NotesAPI that records calls.
type fakeNotesAPI struct {
	mu        sync.Mutex
	notes     map[int64]api.Note
	nextID    int64
	clock     time.Time
	listCalls int
	listErr   error
	writeErr  error
	creates   []api.SaveRequest
	updates   []api.UpdateRequest
}

func newFakeNotesAPI() *fakeNotesAPI {
	return &fakeNotesAPI{
		notes: make(map[int64]api.Note),
		clock: time.Unix(1700000000, 0).UTC(),
	}
}

func (f *fakeNotesAPI) List(_ context.Context) ([]api.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]api.Note, 0, len(f.notes))
	for _, note := range f.notes {
		result = append(result, note)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeNotesAPI) Create(_ context.Context, request api.SaveRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.creates = append(f.creates, request)
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	f.notes[f.nextID] = api.Note{
		ID:        f.nextID,
		Name:      request.Name,
		Code:      request.Code,
		ImageData: request.Image,
		FileType:  request.FileType,
		FileName:  request.FileName,
		CreatedAt: f.clock,
	}
	return f.nextID, nil
}

func (f *fakeNotesAPI) Get(_ context.Context, id int64) (api.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.notes[id]
	if !ok {
		return api.Note{}, &APIError{Status: 404, Message: "Note not found"}
	}
	return note, nil
}

func (f *fakeNotesAPI) Update(_ context.Context, request api.UpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates = append(f.updates, request)
	id, _ := request.ID.Value()
	note, ok := f.notes[id]
	if !ok {
		return &APIError{Status: 404, Message: "Note not found"}
	}
	note.Name = request.Name
	note.Code = request.Code
	note.ImageData = request.Image
	note.FileType = request.FileType
	note.FileName = request.FileName
	f.notes[id] = note
	return nil
}

func (f *fakeNotesAPI) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.notes, id)
	return nil
}
