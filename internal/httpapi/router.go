// Package httpapi exposes the calculator and cocktail catalog as a small
// read-only JSON API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/ottobrew/internal/config"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// NewRouter wires up the handlers on a gin engine.
func NewRouter(handler *Handler, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(log),
		errorHandlingMiddleware(log),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api")
	{
		api.GET("/presets", handler.Presets)
		api.GET("/brew", handler.Brew)
		api.GET("/brew/compare", handler.Compare)
		api.GET("/cocktails", handler.Cocktails)
		api.GET("/cocktails/:id", handler.Cocktail)
		api.GET("/theme/next", handler.NextTheme)
	}
	return router
}

// NewServer returns an http.Server for the router.
func NewServer(cfg config.HTTPConfig, handler *Handler, log *logger.Logger) *http.Server {
	return &http.Server{
		Addr:           cfg.Address,
		Handler:        NewRouter(handler, log),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

func errorHandlingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		if httpErr.Status >= http.StatusInternalServerError {
			log.Error("%s %s: %s: %v", c.Request.Method, c.Request.URL.Path, httpErr.Code, httpErr.Err)
		} else {
			log.Warn("%s %s: %s: %v", c.Request.Method, c.Request.URL.Path, httpErr.Code, httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": httpErr.Message,
			},
		})
	}
}
