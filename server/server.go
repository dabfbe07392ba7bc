package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/nalm/vm"
)

// Server hosts the session service. Every session owns an Executor driven
// by its own Worker.
type Server struct {
	sessions *SessionStore
	mux      *http.ServeMux
	log      commonlog.Logger

	stopSweeper func()
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	compile       vm.CompileFunc
	execOpts      []vm.Option
	timeout       time.Duration
	sessionTTL    time.Duration
	sweepInterval time.Duration
}

// WithCompiler sets the backend used by the Compile procedure and by
// COMPILE instructions. Without it both report vm.ErrNoCompiler.
func WithCompiler(fn vm.CompileFunc) ServerOption {
	return func(c *serverConfig) { c.compile = fn }
}

// WithExecutorOptions adds options applied to every session's executor.
func WithExecutorOptions(opts ...vm.Option) ServerOption {
	return func(c *serverConfig) { c.execOpts = append(c.execOpts, opts...) }
}

// WithTimeout bounds each Execute call. Zero disables the bound.
func WithTimeout(d time.Duration) ServerOption {
	return func(c *serverConfig) { c.timeout = d }
}

// WithSessionTTL destroys sessions idle for longer than ttl. Zero keeps
// sessions until they are destroyed explicitly.
func WithSessionTTL(ttl time.Duration) ServerOption {
	return func(c *serverConfig) { c.sessionTTL = ttl }
}

// New creates a Server.
func New(opts ...ServerOption) *Server {
	cfg := &serverConfig{
		timeout:       10 * time.Second,
		sessionTTL:    30 * time.Minute,
		sweepInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	newExec := func() *vm.Executor {
		execOpts := append([]vm.Option{
			vm.WithOutput(io.Discard),
			vm.WithInput(strings.NewReader("")),
			vm.WithCompiler(cfg.compile),
		}, cfg.execOpts...)
		return vm.NewExecutor(execOpts...)
	}

	s := &Server{
		sessions: NewSessionStore(newExec),
		mux:      http.NewServeMux(),
		log:      commonlog.GetLogger("nalm.server"),
	}

	path, handler := NewSessionServiceHandler(NewSessionService(s.sessions, cfg.timeout))
	s.mux.Handle(path, handler)

	if cfg.sessionTTL > 0 {
		interval := cfg.sweepInterval
		if cfg.sessionTTL < interval {
			interval = cfg.sessionTTL
		}
		s.stopSweeper = s.sessions.StartSweeper(interval, cfg.sessionTTL)
	}

	return s
}

// Handler returns the HTTP handler serving all procedures.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *Server) ListenAndServe(addr string) error {
	s.log.Noticef("session service listening on %s", addr)
	s.log.Noticef("  Connect (HTTP/JSON): http://%s%s", addr, CreateProcedure)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop destroys all sessions and stops the idle sweeper.
func (s *Server) Stop() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	s.sessions.CloseAll()
}
