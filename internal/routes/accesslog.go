package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-http-component/internal/app"
	"github.com/sirosfoundation/go-http-component/internal/server"
	"github.com/sirosfoundation/go-http-component/pkg/middleware"
)

// AccessLog registers an after-filter logging every completed request with
// the server id. It mounts no routes.
func AccessLog(application app.Application, _ *gin.Engine, srv *server.Server) server.Router {
	logger := srv.Logger().Named("access")
	serverID := application.ServerID()

	srv.Filters().After(func(c *gin.Context) {
		logger.Info("access",
			zap.String("server_id", serverID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		)
	})
	return nil
}
