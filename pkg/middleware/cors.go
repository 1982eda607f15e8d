package middleware

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sirosfoundation/go-http-component/pkg/config"
)

// CORS builds a gin-contrib/cors filter from cfg. Settings the cors package
// would reject, such as an empty origin list, are returned as an error.
func CORS(cfg config.CORSConfig) (gin.HandlerFunc, error) {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}

	// cors rejects a "*" origin together with an explicit list
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors configuration: %w", err)
	}
	return cors.New(corsCfg), nil
}
