package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-http-component/internal/app"
)

// HealthResponse is the body of the default root route
const HealthResponse = "http server ok!"

var (
	// ErrRouteDirMissing is returned when the route directory of the server
	// type does not exist
	ErrRouteDirMissing = errors.New("cannot find route path")
	// ErrUnknownRouteModule is returned when a route descriptor names a
	// factory that is not registered
	ErrUnknownRouteModule = errors.New("unknown route module")
)

// Router contributes routes to the pipeline
type Router interface {
	RegisterRoutes(r gin.IRouter)
}

// RouterFunc adapts a function to Router
type RouterFunc func(r gin.IRouter)

// RegisterRoutes calls f(r)
func (f RouterFunc) RegisterRoutes(r gin.IRouter) { f(r) }

// RouteFactory builds a route module. It receives the owning application,
// the gin engine and the server itself. A nil Router means the module only
// had side effects, such as registering filters.
//
// A factory runs once per Server, during the first successful Start. engine
// is the pipeline of that Start only; a restart builds a fresh engine and
// re-mounts the returned Router. Anything meant to outlive a restart must be
// registered through the Router or srv.Filters(), not on engine directly.
type RouteFactory func(application app.Application, engine *gin.Engine, srv *Server) Router

// RouteTable maps route module names to their factories
type RouteTable struct {
	factories map[string]RouteFactory
}

// NewRouteTable creates an empty RouteTable
func NewRouteTable() *RouteTable {
	return &RouteTable{factories: make(map[string]RouteFactory)}
}

// Register adds a factory under name, replacing any previous one
func (t *RouteTable) Register(name string, factory RouteFactory) {
	t.factories[name] = factory
}

// Lookup returns the factory registered under name
func (t *RouteTable) Lookup(name string) (RouteFactory, bool) {
	f, ok := t.factories[name]
	return f, ok
}

// Names returns the registered module names in sorted order
func (t *RouteTable) Names() []string {
	names := make([]string, 0, len(t.factories))
	for name := range t.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// routeDescriptor is the content of a route file. An empty file is valid.
type routeDescriptor struct {
	Factory string `yaml:"factory"`
}

// IsRouteFile reports whether name has a route descriptor extension
func IsRouteFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

// RouteDir returns the route directory for the application's server type
func RouteDir(application app.Application) string {
	return filepath.Join(application.Base(), "app", "servers", application.ServerType(), "routers")
}

// loadRoutes mounts the default health route followed by every route module
// named in the route directory. Factories are invoked once per Server; later
// starts re-mount the routers produced the first time. If the first load
// fails, filters registered by the factories that did run are dropped so a
// later Start begins from the same registry.
func (s *Server) loadRoutes(engine *gin.Engine, root gin.IRouter) error {
	root.GET("/", func(c *gin.Context) {
		c.String(200, HealthResponse)
	})

	if s.routesLoaded {
		return mountAll(root, s.mounted)
	}

	mark := s.filters.Mark()
	routers, err := s.discoverRoutes(engine)
	if err == nil {
		err = mountAll(root, routers)
	}
	if err != nil {
		s.filters.Reset(mark)
		return err
	}

	s.mounted = routers
	s.routesLoaded = true
	return nil
}

func mountAll(root gin.IRouter, routers []mountedRouter) error {
	for _, m := range routers {
		if err := mountRouter(root, m); err != nil {
			return err
		}
	}
	return nil
}

type mountedRouter struct {
	name   string
	router Router
}

func (s *Server) discoverRoutes(engine *gin.Engine) ([]mountedRouter, error) {
	dir := RouteDir(s.app)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRouteDirMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read route path %s: %w", dir, err)
	}

	routers := make([]mountedRouter, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsRouteFile(entry.Name()) {
			continue
		}

		name, err := readDescriptor(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		factory, ok := s.routes.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w %q in %s", ErrUnknownRouteModule, name, entry.Name())
		}

		s.logger.Info("load router file", zap.String("file", entry.Name()), zap.String("module", name))

		router, err := invokeFactory(name, factory, s.app, engine, s)
		if err != nil {
			return nil, err
		}
		if router == nil {
			s.logger.Debug("route module mounted nothing", zap.String("module", name))
			continue
		}
		routers = append(routers, mountedRouter{name: name, router: router})
	}
	return routers, nil
}

func readDescriptor(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read route file: %w", err)
	}

	var desc routeDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return "", fmt.Errorf("failed to parse route file %s: %w", filepath.Base(path), err)
	}
	if desc.Factory != "" {
		return desc.Factory, nil
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
}

// invokeFactory runs a route factory, turning a panic into an error
func invokeFactory(name string, factory RouteFactory, application app.Application, engine *gin.Engine, srv *Server) (router Router, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("route module %q panicked: %v", name, r)
		}
	}()
	return factory(application, engine, srv), nil
}

// mountRouter registers a router at the root path. gin panics on conflicting
// routes; that is reported as an error naming the module.
func mountRouter(root gin.IRouter, m mountedRouter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to mount route module %q: %v", m.name, r)
		}
	}()
	m.router.RegisterRoutes(root)
	return nil
}
