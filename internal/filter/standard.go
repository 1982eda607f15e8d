package filter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-http-component/pkg/config"
	"github.com/sirosfoundation/go-http-component/pkg/middleware"
)

// Standard returns a Registry holding the configured built-in before-filters:
// request id, metrics (when m is not nil), request logging, then CORS, rate
// limiting and bearer auth as enabled in cfg.
func Standard(cfg *config.Config, logger *zap.Logger, m *middleware.Metrics) (*Registry, error) {
	r := NewRegistry()

	r.Before(middleware.RequestID())
	if m != nil {
		r.Before(m.Middleware())
	}
	r.Before(middleware.Logger(logger))

	if cfg.CORS.Enabled {
		corsFilter, err := middleware.CORS(cfg.CORS)
		if err != nil {
			return nil, fmt.Errorf("cors filter: %w", err)
		}
		r.Before(corsFilter)
	}
	if cfg.RateLimit.Enabled {
		r.Before(middleware.RateLimit(middleware.NewClientRateLimiter(cfg.RateLimit, logger)))
	}
	if cfg.Auth.Enabled {
		skip := append([]string(nil), cfg.Auth.SkipPaths...)
		if cfg.Metrics.Enabled {
			skip = append(skip, cfg.Metrics.Path)
		}
		authCfg := cfg.Auth
		authCfg.SkipPaths = skip
		r.Before(middleware.BearerAuth(authCfg, logger))
	}

	return r, nil
}
