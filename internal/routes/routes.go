// Package routes contains the compiled-in route modules of the HTTP
// component. Which of them are mounted is decided by the descriptor files in
// the route directory of the server type.
package routes

import (
	"github.com/sirosfoundation/go-http-component/internal/server"
	"github.com/sirosfoundation/go-http-component/pkg/middleware"
)

// Module names as used in route descriptors
const (
	StatusModule    = "status"
	MetricsModule   = "metrics"
	AccessLogModule = "access-log"
)

// Register adds the built-in route modules to t. m may be nil when metrics
// are disabled, in which case the metrics module mounts nothing.
func Register(t *server.RouteTable, m *middleware.Metrics, metricsPath string) {
	t.Register(StatusModule, Status)
	t.Register(MetricsModule, Metrics(m, metricsPath))
	t.Register(AccessLogModule, AccessLog)
}
