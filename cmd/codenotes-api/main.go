package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/config"
	"github.com/MarcoPoloResearchLab/codenotes/internal/database"
	"github.com/MarcoPoloResearchLab/codenotes/internal/logging"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/MarcoPoloResearchLab/codenotes/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	cfgFile string
	envFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "codenotes-api",
		Short: "Code notes HTTP service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default .env)")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("base-path", defaults.GetString("http.base_path"), "Path prefix for every route")
	cmd.PersistentFlags().Int64("max-body-bytes", defaults.GetInt64("http.max_body_bytes"), "Maximum request body size in bytes")
	cmd.PersistentFlags().String("cors-origins", defaults.GetString("http.cors_origins"), "Comma-separated allowed CORS origins")
	cmd.PersistentFlags().String("database-url", defaults.GetString("database.url"), "Database connection string (postgres:// or a SQLite path)")
	cmd.PersistentFlags().Bool("database-insecure-tls", defaults.GetBool("database.insecure_tls"), "Skip TLS certificate verification for Postgres")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "http.base_path", "base-path")
	bindFlag(cmd, "http.max_body_bytes", "max-body-bytes")
	bindFlag(cmd, "http.cors_origins", "cors-origins")
	bindFlag(cmd, "database.url", "database-url")
	bindFlag(cmd, "database.insecure_tls", "database-insecure-tls")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(database.Options{
		URL:         appConfig.DatabaseURL,
		InsecureTLS: appConfig.DatabaseInsecureTLS,
	}, logger)
	if err != nil {
		logger.Error("database initialization failed", zap.Error(err))
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	notesService, err := notes.NewService(notes.ServiceConfig{
		Database: db,
		Clock:    time.Now,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		NotesService: notesService,
		Realtime:     server.NewRealtimeDispatcher(),
		Logger:       logger,
		Options: server.Options{
			BasePath:     appConfig.BasePath,
			MaxBodyBytes: appConfig.MaxBodyBytes,
			CORSOrigins:  appConfig.CORSOrigins,
		},
	})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Request contexts derive from signalCtx so open change streams end on shutdown.
	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return signalCtx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("base_path", appConfig.BasePath),
		)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
