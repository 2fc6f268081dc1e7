// Package ui serves the display screen and the graph screen over HTTP.
package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/ericogr/accel-logger/pkg/broker"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/ericogr/accel-logger/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	chartWidth  = 800
	chartHeight = 240
)

type Store interface {
	AllData(ctx context.Context) ([]store.AccelerometerData, error)
	Latest(ctx context.Context) (store.AccelerometerData, bool, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

type Exporter interface {
	Start(ctx context.Context) <-chan struct{}
}

type LiveState interface {
	Latest() (sensor.Sample, bool)
	Recent() []sensor.Sample
	Notices() []broker.Notice
}

type Logger interface {
	Printf(format string, v ...any)
}

type Server struct {
	ctx      context.Context
	engine   *gin.Engine
	live     LiveState
	store    Store
	exporter Exporter
	broker   *broker.Broker
	logger   Logger
}

// New builds the HTTP server. ctx bounds background work started by requests,
// such as exports, which outlive the request itself. br may be nil, which
// disables /ws.
func New(ctx context.Context, live LiveState, st Store, exp Exporter, br *broker.Broker, logger Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(tmpl)

	s := &Server{
		ctx:      ctx,
		engine:   engine,
		live:     live,
		store:    st,
		exporter: exp,
		broker:   br,
		logger:   logger,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	r := s.engine

	r.GET("/", s.displayScreen)
	r.GET("/graph", s.graphScreen)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	api := r.Group("/api")
	api.GET("/current", s.current)
	api.GET("/recent", s.recent)
	api.GET("/graph", s.graphData)
	api.GET("/notices", s.notices)
	api.POST("/export", s.export)
	api.DELETE("/data", s.clearAll)

	if s.broker != nil {
		r.GET("/ws", s.websocket)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{Addr: address, Handler: s.engine}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("http server listening on %s", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "run")
	}
	return nil
}
