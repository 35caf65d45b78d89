package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/hoststat"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
)

const (
	shutdownTimeout = 5 * time.Second
	pingInterval    = 30 * time.Second
	writeTimeout    = 10 * time.Second
)

// StateSource provides the last published pipeline state. It must be safe
// for concurrent use.
type StateSource interface {
	State() *pipeline.State
}

// HostSource provides the latest host usage sample.
type HostSource interface {
	Last() (hoststat.Snapshot, bool)
}

// Options configures the mirror.
type Options struct {
	ListenAddr       string
	SubscriberBuffer int
	MaxConnections   int        // 0 means unlimited
	Host             HostSource // optional
	Logger           *logging.ColoredLogger
}

// Server is the read-only HTTP and websocket mirror of the viewer.
type Server struct {
	source   StateSource
	host     HostSource
	hub      *Hub
	logger   *logging.ColoredLogger
	router   chi.Router
	addr     string
	maxConns int
	upgrader websocket.Upgrader
}

// New creates a mirror over source. Register Server.Publish with the
// consumer so stream clients receive new rows.
func New(source StateSource, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		source:   source,
		host:     opts.Host,
		hub:      NewHub(opts.SubscriberBuffer, logger),
		logger:   logger,
		router:   chi.NewRouter(),
		addr:     opts.ListenAddr,
		maxConns: opts.MaxConnections,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local read-only mirror; browsers on any origin may watch it.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if st := source.State(); st != nil {
		s.hub.Prime(st.View.LastSeq())
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logging.NewStandardLogger(logger, logging.ComponentAPI),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the stream hub.
func (s *Server) Hub() *Hub { return s.hub }

// Publish forwards a published state to stream subscribers.
func (s *Server) Publish(st *pipeline.State) {
	s.hub.Publish(st)
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// Connections beyond MaxConnections wait in the accept queue.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.ComponentInfo(logging.ComponentAPI, "mirror listening",
		zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	// Closing the hub ends stream handlers, which Shutdown does not wait on.
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.ComponentWarn(logging.ComponentAPI, "shutdown incomplete", zap.Error(err))
		return errors.Wrap(err, "shutdown")
	}
	s.logger.ComponentInfo(logging.ComponentAPI, "mirror stopped")
	return nil
}
