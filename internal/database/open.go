package database

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	sqlite "github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrMissingURL indicates that no connection string was configured.
var ErrMissingURL = errors.New("database: connection url is required")

const sqliteScheme = "sqlite://"

// Options control how a connection is established.
type Options struct {
	URL string
	// InsecureTLS encrypts PostgreSQL connections without validating the
	// server certificate chain, for managed providers with private CAs.
	InsecureTLS bool
}

// Open connects to the configured store and applies the startup migrations.
func Open(options Options, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	url := strings.TrimSpace(options.URL)
	if url == "" {
		return nil, ErrMissingURL
	}

	dialector, driverName, err := newDialector(url, options.InsecureTLS)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", driverName, err)
	}

	if driverName == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db, logger); err != nil {
		return nil, err
	}

	logger.Info("database initialized", zap.String("driver", driverName))
	return db, nil
}

func newDialector(url string, insecureTLS bool) (gorm.Dialector, string, error) {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		connConfig, err := postgresConnConfig(url, insecureTLS)
		if err != nil {
			return nil, "", err
		}
		return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connConfig)}), "postgres", nil
	case strings.HasPrefix(lower, sqliteScheme):
		return sqlite.Open(url[len(sqliteScheme):]), "sqlite", nil
	default:
		return sqlite.Open(url), "sqlite", nil
	}
}

// postgresConnConfig parses url with pgx. With insecureTLS, a connection whose
// sslmode asks for TLS stays encrypted but skips certificate-chain checks and
// never falls back to plaintext; sslmode=disable is left alone.
func postgresConnConfig(url string, insecureTLS bool) (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("database: parse postgres url: %w", err)
	}
	if insecureTLS && connConfig.TLSConfig != nil {
		connConfig.TLSConfig = &tls.Config{ //nolint:gosec
			InsecureSkipVerify: true,
			ServerName:         connConfig.TLSConfig.ServerName,
		}
		connConfig.Fallbacks = nil
	}
	return connConfig, nil
}
