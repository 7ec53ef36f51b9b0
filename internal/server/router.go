package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/logging"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultMaxBodyBytes = 16 << 20
	defaultPageTitle    = "Code Notes"
)

var errMissingNotesService = errors.New("notes service dependency required")

type Dependencies struct {
	NotesService *notes.Service
	Realtime     *RealtimeDispatcher
	Logger       *zap.Logger
	Options      Options
}

// Options tune the HTTP surface.
type Options struct {
	BasePath          string
	MaxBodyBytes      int64
	CORSOrigins       []string
	PageTitle         string
	HeartbeatInterval time.Duration
	Clock             func() time.Time
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.NotesService == nil {
		return nil, errMissingNotesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}
	options := deps.Options.withDefaults()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger(logger))
	router.Use(corsMiddleware(options.CORSOrigins))

	handler := &httpHandler{
		notesService: deps.NotesService,
		realtime:     realtime,
		logger:       logger,
		options:      options,
	}

	group := router.Group(options.BasePath)
	group.GET("/", handler.handleListPage)
	group.GET("/healthz", handler.handleHealth)
	group.GET(api.PathNotes, handler.handleListNotes)
	group.GET(api.PathNote+"/:id", handler.handleGetNote)
	group.GET(api.PathNoteStream, handler.handleNoteStream)

	mutations := group.Group("")
	mutations.Use(limitBody(options.MaxBodyBytes))
	mutations.POST(api.PathSave, handler.handleCreateNote)
	mutations.PUT(api.PathUpdate, handler.handleUpdateNote)
	mutations.DELETE(api.PathDelete, handler.handleDeleteNote)

	return router, nil
}

func (o Options) withDefaults() Options {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	if o.PageTitle == "" {
		o.PageTitle = defaultPageTitle
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = defaultHeartbeatInterval
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", logging.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

type httpHandler struct {
	notesService *notes.Service
	realtime     *RealtimeDispatcher
	logger       *zap.Logger
	options      Options
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
