package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "notes.service.new"
	opCreate     = "notes.create"
	opList       = "notes.list"
	opGet        = "notes.get"
	opUpdate     = "notes.update"
	opDelete     = "notes.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service persists notes. Each operation is a single statement and relies on
// the database for atomicity.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// Create inserts a new note and returns its generated identifier.
func (s *Service) Create(ctx context.Context, draft Draft) (NoteID, error) {
	if s.db == nil {
		s.logError(opCreate, "missing_database", errMissingDatabase)
		return 0, newServiceError(opCreate, "missing_database", errMissingDatabase)
	}
	if err := draft.Validate(); err != nil {
		return 0, err
	}

	imageData, fileType, fileName := draft.Attachment.Columns()
	note := Note{
		Name:      draft.Name,
		Code:      draft.Code,
		ImageData: imageData,
		FileType:  fileType,
		FileName:  fileName,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		s.logError(opCreate, "query_failed", err)
		return 0, newServiceError(opCreate, "query_failed", err)
	}

	return NoteID(note.ID), nil
}

// List returns every note, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	if s.db == nil {
		s.logError(opList, "missing_database", errMissingDatabase)
		return nil, newServiceError(opList, "missing_database", errMissingDatabase)
	}

	var rows []Note
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		s.logError(opList, "query_failed", err)
		return nil, newServiceError(opList, "query_failed", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, newRecord(row))
	}
	return records, nil
}

// Get loads a single note. It returns ErrNotFound when the row is absent.
func (s *Service) Get(ctx context.Context, id NoteID) (Record, error) {
	if s.db == nil {
		s.logError(opGet, "missing_database", errMissingDatabase)
		return Record{}, newServiceError(opGet, "missing_database", errMissingDatabase)
	}

	var row Note
	err := s.db.WithContext(ctx).Where("id = ?", id.Int64()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, fmt.Errorf("%w: %d", ErrNotFound, id.Int64())
	}
	if err != nil {
		s.logError(opGet, "query_failed", err, zap.Int64("note_id", id.Int64()))
		return Record{}, newServiceError(opGet, "query_failed", err)
	}
	return newRecord(row), nil
}

// Update overwrites every mutable column of the note, including the
// attachment: a draft without an attachment clears it. It returns
// ErrNotFound when no row matched.
func (s *Service) Update(ctx context.Context, id NoteID, draft Draft) error {
	if s.db == nil {
		s.logError(opUpdate, "missing_database", errMissingDatabase)
		return newServiceError(opUpdate, "missing_database", errMissingDatabase)
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	imageData, fileType, fileName := draft.Attachment.Columns()
	result := s.db.WithContext(ctx).
		Model(&Note{}).
		Where("id = ?", id.Int64()).
		Updates(map[string]any{
			"name":       draft.Name,
			"code":       draft.Code,
			"image_data": imageData,
			"file_type":  fileType,
			"file_name":  fileName,
		})
	if result.Error != nil {
		s.logError(opUpdate, "query_failed", result.Error, zap.Int64("note_id", id.Int64()))
		return newServiceError(opUpdate, "query_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id.Int64())
	}
	return nil
}

// Delete removes the note. Deleting an absent note is not an error.
func (s *Service) Delete(ctx context.Context, id NoteID) error {
	if s.db == nil {
		s.logError(opDelete, "missing_database", errMissingDatabase)
		return newServiceError(opDelete, "missing_database", errMissingDatabase)
	}

	result := s.db.WithContext(ctx).Where("id = ?", id.Int64()).Delete(&Note{})
	if result.Error != nil {
		s.logError(opDelete, "query_failed", result.Error, zap.Int64("note_id", id.Int64()))
		return newServiceError(opDelete, "query_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		s.loggerOrDefault().Debug("delete matched no rows", zap.Int64("note_id", id.Int64()))
	}
	return nil
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("notes service error", attrs...)
}
