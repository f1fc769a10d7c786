package ui

import (
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())

	staticFS, err := fs.Sub(s.embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	log.Printf("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
}

// requestLogger logs one line per request through the leveled logger
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
	}
}
