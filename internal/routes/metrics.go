package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sirosfoundation/go-http-component/internal/app"
	"github.com/sirosfoundation/go-http-component/internal/server"
	"github.com/sirosfoundation/go-http-component/pkg/middleware"
)

// Metrics returns a factory mounting the Prometheus exposition handler at
// path. With a nil m the module mounts nothing.
func Metrics(m *middleware.Metrics, path string) server.RouteFactory {
	return func(_ app.Application, _ *gin.Engine, srv *server.Server) server.Router {
		if m == nil {
			srv.Logger().Debug("metrics disabled, metrics route not mounted")
			return nil
		}
		handler := gin.WrapH(m.Handler())
		return server.RouterFunc(func(r gin.IRouter) {
			r.GET(path, handler)
		})
	}
}
