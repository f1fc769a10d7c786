package ui

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"bookingsdash/app"
	"bookingsdash/internal"

	"github.com/gin-gonic/gin"
)

// Server represents the dashboard web server
type Server struct {
	router        *gin.Engine
	templates     *template.Template
	embeddedFiles fs.FS
	loader        *app.SnapshotLoader
	logger        *internal.Logger
}

// NewServer creates a dashboard server. files must contain templates and
// static, as Assets does.
func NewServer(files fs.FS, loader *app.SnapshotLoader, logger *internal.Logger) (*Server, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:        gin.New(),
		embeddedFiles: files,
		loader:        loader,
		logger:        logger.With("Dashboard"),
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	templatesFS, err := fs.Sub(s.embeddedFiles, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found under templates")
	}

	s.templates = template.New("").Funcs(templateFuncs())
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	log.Printf("[TemplateInit] Parsed %d templates: %v", len(files), files)
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleDashboard)
	s.router.GET("/api/brands", s.handleBrands)
	s.router.GET("/healthz", s.handleHealth)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting bookings dashboard on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) presenterFor(ctx context.Context) (*app.PresenterService, error) {
	return s.loader.Presenter(ctx)
}

// Reload drops the cached snapshot so the next request reads the store again
func (s *Server) Reload() {
	s.loader.Reload()
}
