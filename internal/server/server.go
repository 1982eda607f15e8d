package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-http-component/internal/app"
	"github.com/sirosfoundation/go-http-component/internal/filter"
	"github.com/sirosfoundation/go-http-component/pkg/config"
	"github.com/sirosfoundation/go-http-component/pkg/logging"
	"github.com/sirosfoundation/go-http-component/pkg/middleware"
)

var (
	// ErrNotStopped is returned by Start when the server is not stopped
	ErrNotStopped = errors.New("http server is not stopped")
	// ErrNotRunning is returned by Stop when the server is not running
	ErrNotRunning = errors.New("http server is not running")
)

// Options configures a Server. It is fixed once the Server is created.
type Options struct {
	Host      string
	Port      string // plain port, or "<digits>++" with IsCluster
	IsCluster bool

	UseSSL   bool
	KeyFile  string
	CertFile string

	TrustedProxies []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Logger defaults to logging.Default() when nil
	Logger *zap.Logger
}

// OptionsFromConfig builds Options from the server section of the config
func OptionsFromConfig(cfg config.ServerConfig, logger *zap.Logger) Options {
	return Options{
		Host:           cfg.Host,
		Port:           cfg.Port,
		IsCluster:      cfg.IsCluster,
		UseSSL:         cfg.UseSSL,
		KeyFile:        cfg.KeyFile,
		CertFile:       cfg.CertFile,
		TrustedProxies: cfg.TrustedProxies,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		Logger:         logger,
	}
}

// Server is the HTTP component of an application process
type Server struct {
	app     app.Application
	opts    Options
	logger  *zap.Logger
	filters *filter.Registry
	routes  *RouteTable

	port      int
	tlsConfig *tls.Config

	mu         sync.Mutex
	state      State
	httpServer *http.Server
	listener   net.Listener
	serveDone  chan struct{}

	// written only while Starting
	routesLoaded bool
	mounted      []mountedRouter
	afterFilters []gin.HandlerFunc
}

// New creates a Server. The listen port is resolved and TLS material is read
// here, so misconfiguration fails before Start is ever called.
func New(application app.Application, opts Options, filters *filter.Registry, routes *RouteTable) (*Server, error) {
	if opts.Host == "" {
		opts.Host = config.DefaultHost
	}
	if opts.Port == "" {
		opts.Port = config.DefaultPort
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if filters == nil {
		filters = filter.NewRegistry()
	}
	if routes == nil {
		routes = NewRouteTable()
	}

	port, err := ResolvePort(opts.Port, opts.IsCluster, application.ServerID())
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:     application,
		opts:    opts,
		logger:  opts.Logger.Named("http"),
		filters: filters,
		routes:  routes,
		port:    port,
		state:   StateStopped,
	}

	if opts.UseSSL {
		creds, err := LoadCredentials(application.Base(), opts.KeyFile, opts.CertFile)
		if err != nil {
			return nil, err
		}
		s.tlsConfig, err = creds.TLSConfig()
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start composes the pipeline and binds the listener. The steps run strictly
// in order: before-filters, routes, after-filters, bind. onReady, if not nil,
// is called on a new goroutine once the listener accepts connections.
func (s *Server) Start(onReady func()) error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotStopped, s.state)
	}
	s.state = StateStarting
	s.mu.Unlock()

	if err := s.start(); err != nil {
		s.setState(StateStopped)
		return err
	}

	s.logger.Info("Http start",
		zap.String("server_id", s.app.ServerID()),
		zap.String("url", s.URL()),
		zap.Stringer("address", s.Addr()))
	s.logger.Info("Http start success")

	if onReady != nil {
		go onReady()
	}
	return nil
}

func (s *Server) start() error {
	engine, err := s.buildPipeline()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      middleware.MethodOverride(engine),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
		TLSConfig:    s.tlsConfig,
		ErrorLog:     zap.NewStdLog(s.logger),
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.httpServer = srv
	s.listener = ln
	s.serveDone = done
	s.state = StateRunning
	s.mu.Unlock()

	go func() {
		defer close(done)
		var err error
		if s.tlsConfig != nil {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Http server error", zap.Error(err))
		}
	}()

	return nil
}

// buildPipeline applies the before-filters, mounts the routes and then takes
// the after-filters, in that order.
func (s *Server) buildPipeline() (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if len(s.opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid trusted proxies: %w", err)
		}
	}

	for _, f := range s.filters.BeforeFilters() {
		engine.Use(f)
	}

	root := engine.Group("/", s.runAfterFilters)
	if err := s.loadRoutes(engine, root); err != nil {
		return nil, err
	}

	s.afterFilters = s.filters.AfterFilters()
	engine.NoRoute(s.runAfterFilters)

	return engine, nil
}

// runAfterFilters dispatches to the route and then runs the after-filters in
// registration order. A filter that aborts the context stops the rest.
func (s *Server) runAfterFilters(c *gin.Context) {
	c.Next()
	for _, f := range s.afterFilters {
		if c.IsAborted() {
			return
		}
		f(c)
	}
}

// AfterStart is a hook point run after Start; it only schedules onDone on a
// new goroutine.
func (s *Server) AfterStart(onDone func()) {
	if onDone != nil {
		go onDone()
	}
}

// Stop closes the listener and calls onStopped, on a new goroutine, once the
// server has shut down. force is accepted for callers but graceful and forced
// stops behave the same here; draining is left to net/http. Stop on a server
// that is not running returns ErrNotRunning.
func (s *Server) Stop(force bool, onStopped func()) error {
	s.mu.Lock()
	if s.state != StateRunning {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotRunning, state)
	}
	s.state = StateStopping
	srv, done := s.httpServer, s.serveDone
	s.mu.Unlock()

	s.logger.Debug("Http stop", zap.Bool("force", force))

	go func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Error("Http shutdown error", zap.Error(err))
		}
		<-done

		s.mu.Lock()
		s.state = StateStopped
		s.httpServer = nil
		s.listener = nil
		s.mu.Unlock()

		if onStopped != nil {
			onStopped()
		}
	}()
	return nil
}

func (s *Server) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State returns the current lifecycle state
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound listener address, or nil when not running
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the effective listen port
func (s *Server) Port() int { return s.port }

// Host returns the bind host
func (s *Server) Host() string { return s.opts.Host }

// UseSSL reports whether the listener serves TLS
func (s *Server) UseSSL() bool { return s.tlsConfig != nil }

// IsCluster reports whether the port was derived from the worker index
func (s *Server) IsCluster() bool { return s.opts.IsCluster }

// URL returns the listener URL using the configured host and effective port
func (s *Server) URL() string {
	scheme := "http"
	if s.UseSSL() {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(s.opts.Host, strconv.Itoa(s.port))
}

// App returns the owning application
func (s *Server) App() app.Application { return s.app }

// Options returns the options the server was created with, defaults applied
func (s *Server) Options() Options { return s.opts }

// Filters returns the filter registry applied at Start
func (s *Server) Filters() *filter.Registry { return s.filters }

// Handler returns the request handler of the running pipeline, or nil when
// the server is not running.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler
}

// Logger returns the server's logger
func (s *Server) Logger() *zap.Logger { return s.logger }
