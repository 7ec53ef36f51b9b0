package database

import (
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const notesTable = "notes"

// migrationDefinition is one ensure step. Additive steps may fail without
// blocking startup.
type migrationDefinition struct {
	name     string
	additive bool
	apply    func(*gorm.DB) error
}

// migrations run in order on every startup. Each step checks the current
// shape first, so a database already at the latest shape is left untouched.
var migrations = []migrationDefinition{
	{name: "ensure_table_notes", apply: ensureNotesTable},
	{name: "ensure_column_image_data", additive: true, apply: ensureColumn("ImageData")},
	{name: "ensure_column_file_type", additive: true, apply: ensureColumn("FileType")},
	{name: "ensure_column_file_name", additive: true, apply: ensureColumn("FileName")},
}

// Migrate brings the notes table to its latest shape.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, migration := range migrations {
		err := migration.apply(db)
		if err == nil {
			logger.Debug("database migration step ensured", zap.String("migration", migration.name))
			continue
		}
		if migration.additive {
			logger.Warn("database migration step failed", zap.String("migration", migration.name), zap.Error(err))
			continue
		}
		return fmt.Errorf("database: migration %s: %w", migration.name, err)
	}
	logger.Info("table is ready with all columns", zap.String("table", notesTable))
	return nil
}

// baseNote is the minimal table shape; attachment columns are added by the
// following steps so that older tables converge on the same layout.
type baseNote struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:text"`
	Code      string    `gorm:"column:code;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (baseNote) TableName() string {
	return notesTable
}

func ensureNotesTable(db *gorm.DB) error {
	migrator := db.Migrator()
	if migrator.HasTable(notesTable) {
		return nil
	}
	return migrator.CreateTable(&baseNote{})
}

func ensureColumn(field string) func(*gorm.DB) error {
	return func(db *gorm.DB) error {
		migrator := db.Migrator()
		if migrator.HasColumn(&notes.Note{}, field) {
			return nil
		}
		return migrator.AddColumn(&notes.Note{}, field)
	}
}
