package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/client"
	"github.com/MarcoPoloResearchLab/codenotes/internal/config"
	"github.com/MarcoPoloResearchLab/codenotes/internal/logging"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	envPrefix       = "CODENOTES"
	defaultServer   = "http://localhost:3000"
	defaultTimeout  = 30 * time.Second
	defaultLogLevel = "warn"
)

// Streams are the standard streams a command reads from and writes to.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

type app struct {
	streams  Streams
	viper    *viper.Viper
	logger   *zap.Logger
	client   *client.Client
	cache    *client.NoteListCache
	location *time.Location
}

// NewRootCommand builds the codenotes command tree.
func NewRootCommand(streams Streams) *cobra.Command {
	application := &app{
		streams:  streams,
		viper:    newViper(),
		logger:   zap.NewNop(),
		location: time.Local,
	}

	rootCmd := &cobra.Command{
		Use:           "codenotes",
		Short:         "Manage code snippets and file notes",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return application.connect()
		},
	}
	rootCmd.SetIn(streams.In)
	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.ErrOut)

	flags := rootCmd.PersistentFlags()
	flags.String("server", defaultServer, "Notes service base URL")
	flags.Duration("timeout", defaultTimeout, "Request timeout")
	flags.String("log-level", defaultLogLevel, "Diagnostic log level (debug, info, warn, error)")
	application.bindFlag(rootCmd, "server", "server")
	application.bindFlag(rootCmd, "timeout", "timeout")
	application.bindFlag(rootCmd, "log.level", "log-level")

	rootCmd.AddCommand(
		application.newListCommand(),
		application.newSearchCommand(),
		application.newShowCommand(),
		application.newCodeCommand(),
		application.newSaveCommand(),
		application.newEditCommand(),
		application.newDeleteCommand(),
		application.newDownloadCommand(),
		application.newRenderCommand(),
		application.newWatchCommand(),
	)
	return rootCmd
}

// Execute runs the command tree and returns the process exit code. Failures
// are reported as a single "Error: ..." line.
func Execute(ctx context.Context, args []string, streams Streams) int {
	rootCmd := NewRootCommand(streams)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(streams.ErrOut, "Error: %s\n", alertMessage(err))
		return 1
	}
	return 0
}

func newViper() *viper.Viper {
	clientViper := viper.New()
	clientViper.SetEnvPrefix(envPrefix)
	clientViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	clientViper.AutomaticEnv()
	clientViper.SetDefault("server", defaultServer)
	clientViper.SetDefault("timeout", defaultTimeout)
	clientViper.SetDefault("log.level", defaultLogLevel)
	return clientViper
}

func (a *app) bindFlag(cmd *cobra.Command, key, flag string) {
	if err := a.viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func (a *app) connect() error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}

	logger, err := logging.NewConsoleLogger(a.viper.GetString("log.level"))
	if err != nil {
		return err
	}
	a.logger = logger

	notesClient, err := client.NewClient(client.Config{
		BaseURL: a.viper.GetString("server"),
		Timeout: a.viper.GetDuration("timeout"),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	a.client = notesClient
	a.cache = client.NewNoteListCache(notesClient)
	logger.Debug("client configured", zap.String("server", a.viper.GetString("server")))
	return nil
}

func parseNoteID(raw string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", notes.ErrInvalidNoteID, raw)
	}
	id, err := notes.NewNoteID(value)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

// alertMessage turns an error into the line shown to the user.
func alertMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, client.ErrIncompleteForm):
		return "Please enter both name and code."
	case errors.Is(err, client.ErrFileTooLarge):
		return "File size exceeds 10MB limit."
	case errors.Is(err, notes.ErrInvalidNoteID):
		return "Note id must be a positive integer."
	default:
		return err.Error()
	}
}
