package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sirosfoundation/go-http-component/internal/app"
	"github.com/sirosfoundation/go-http-component/internal/server"
)

// StatusResponse is the response from the /status endpoint
type StatusResponse struct {
	Status     string `json:"status"`
	ServerID   string `json:"server_id"`
	ServerType string `json:"server_type"`
	State      string `json:"state"`
	URL        string `json:"url"`
	Port       int    `json:"port"`
	TLS        bool   `json:"tls"`
	Cluster    bool   `json:"cluster"`
}

// Status mounts GET /status describing the running server
func Status(application app.Application, _ *gin.Engine, srv *server.Server) server.Router {
	return server.RouterFunc(func(r gin.IRouter) {
		r.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, StatusResponse{
				Status:     "ok",
				ServerID:   application.ServerID(),
				ServerType: application.ServerType(),
				State:      srv.State().String(),
				URL:        srv.URL(),
				Port:       srv.Port(),
				TLS:        srv.UseSSL(),
				Cluster:    srv.IsCluster(),
			})
		})
	})
}
