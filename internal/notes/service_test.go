package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestServiceCreateThenGetWithoutAttachment(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	id, err := service.Create(ctx, Draft{Name: "n", Code: "c"})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}

	record, err := service.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if record.Name != "n" || record.Code != "c" {
		t.Fatalf("unexpected record: %#v", record)
	}
	if record.Attachment.Present() {
		t.Fatalf("expected no attachment, got %#v", record.Attachment)
	}
	if record.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be assigned")
	}

	var stored Note
	if err := db.Where("id = ?", id.Int64()).Take(&stored).Error; err != nil {
		t.Fatalf("failed to load stored row: %v", err)
	}
	if stored.ImageData != nil || stored.FileType != nil || stored.FileName != nil {
		t.Fatalf("expected null attachment columns, got %#v", stored)
	}
}

func TestServiceCreatePreservesAttachmentVerbatim(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	id, err := service.Create(ctx, Draft{
		Name:       "shot",
		Code:       "body",
		Attachment: FileAttachment(pngDataURI, "image/png", ""),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}

	record, err := service.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if record.Attachment.DataURI() != pngDataURI {
		t.Fatalf("expected data uri to round-trip, got %q", record.Attachment.DataURI())
	}
	if record.Attachment.MIMEType() != "image/png" {
		t.Fatalf("expected file type to round-trip, got %q", record.Attachment.MIMEType())
	}
	if record.Attachment.FileName() != "" {
		t.Fatalf("expected empty file name, got %q", record.Attachment.FileName())
	}
}

func TestServiceCreateRejectsMissingFields(t *testing.T) {
	service, db := newTestService(t)

	testCases := []struct {
		name  string
		draft Draft
	}{
		{name: "missing-code", draft: Draft{Name: "n"}},
		{name: "missing-name", draft: Draft{Code: "c"}},
		{name: "blank-name", draft: Draft{Name: "   ", Code: "c"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), testCase.draft)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	var count int64
	if err := db.Model(&Note{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows to be created, got %d", count)
	}
}

func TestServiceListOrdersNewestFirst(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	var created []NoteID
	for _, name := range []string{"first", "second", "third"} {
		id, err := service.Create(ctx, Draft{Name: name, Code: "code"})
		if err != nil {
			t.Fatalf("unexpected create error: %v", err)
		}
		created = append(created, id)
	}

	records, err := service.List(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	got := make([]string, 0, len(records))
	for _, record := range records {
		got = append(got, record.Name)
	}
	if diff := cmp.Diff([]string{"third", "second", "first"}, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if records[0].ID != created[2] {
		t.Fatalf("expected newest id %d first, got %d", created[2], records[0].ID)
	}
}

func TestServiceGetMissingReturnsNotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Get(context.Background(), mustNoteID(t, 404))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceUpdateClearsOmittedAttachment(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	id, err := service.Create(ctx, Draft{
		Name:       "with-file",
		Code:       "body",
		Attachment: FileAttachment("data:application/pdf;base64,JVBE", "application/pdf", "doc.pdf"),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	before, err := service.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}

	if err := service.Update(ctx, id, Draft{Name: "renamed", Code: "new body"}); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}

	after, err := service.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if after.Name != "renamed" || after.Code != "new body" {
		t.Fatalf("expected fields to be replaced, got %#v", after)
	}
	if after.Attachment.Present() {
		t.Fatalf("expected attachment to be cleared, got %#v", after.Attachment)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("expected created_at to remain %v, got %v", before.CreatedAt, after.CreatedAt)
	}
}

func TestServiceUpdateMissingReturnsNotFound(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Update(context.Background(), mustNoteID(t, 99), Draft{Name: "n", Code: "c"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceDeleteRemovesNoteAndToleratesMissing(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	id, err := service.Create(ctx, Draft{Name: "gone", Code: "soon"})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if err := service.Delete(ctx, id); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, err := service.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted note to be missing, got %v", err)
	}
	if err := service.Delete(ctx, id); err != nil {
		t.Fatalf("expected repeated delete to succeed, got %v", err)
	}

	records, err := service.List(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty list, got %d records", len(records))
	}
}

func TestServiceWithoutDatabaseReportsCode(t *testing.T) {
	service := &Service{}

	_, err := service.List(context.Background())
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if serviceErr.Code() != "notes.list.missing_database" {
		t.Fatalf("unexpected code %s", serviceErr.Code())
	}
}

func TestNewNoteIDRejectsNonPositive(t *testing.T) {
	for _, value := range []int64{0, -1} {
		if _, err := NewNoteID(value); !errors.Is(err, ErrInvalidNoteID) {
			t.Fatalf("expected invalid note id for %d, got %v", value, err)
		}
	}
}
