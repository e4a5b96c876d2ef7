package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine: front-door middleware, health, metrics,
// the quote routes and the JSON 404.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	cfg.setDefaults()
	errs := errorResponder{log: cfg.Logger, production: cfg.Env == "production"}

	r := gin.New()
	// unknown paths, including a trailing slash, get the JSON 404 rather than a redirect
	r.RedirectTrailingSlash = false
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Logger.Error().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		RequestID(),
		RequestLogger(cfg.Logger),
		cfg.Metrics.Middleware(),
		Recovery(errs),
		SecurityHeaders(),
		CORS(DefaultCORSOptions(cfg.ClientURL)),
		RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	RegisterQuoteRoutes(r, cfg)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})
	return r
}
