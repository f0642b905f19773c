// Package preview serves the latest generated document and a Redoc page for it.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gin-gonic/gin"

	"github.com/barisgit/fluxdoc/internal/logging"
	"github.com/barisgit/fluxdoc/openapi"
)

const redocPage = `<!DOCTYPE html>
<html>
<head>
  <title>%s</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
  <redoc spec-url="/openapi.json"></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>
`

// Server holds the rendered forms of the last published document.
type Server struct {
	mu    sync.RWMutex
	title string
	json  []byte
	yaml  []byte

	log    *logging.Logger
	router *gin.Engine
}

// New creates a server without a document. Until Publish is called the document
// routes answer 503.
func New(log *logging.Logger) *Server {
	s := &Server{title: "API Reference", log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.page)
	r.GET("/openapi.json", s.document(func() []byte { return s.json }, "application/json"))
	r.GET("/openapi.yaml", s.document(func() []byte { return s.yaml }, "application/yaml"))
	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Publish replaces the served document.
func (s *Server) Publish(doc *huma.OpenAPI) error {
	j, err := openapi.GenerateSpec(doc)
	if err != nil {
		return err
	}
	y, err := openapi.GenerateSpecYAML(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.json, s.yaml = j, y
	if doc.Info != nil && doc.Info.Title != "" {
		s.title = doc.Info.Title
	}
	return nil
}

func (s *Server) page(c *gin.Context) {
	s.mu.RLock()
	title := s.title
	s.mu.RUnlock()
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(redocPage, title)))
}

func (s *Server) document(body func() []byte, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.RLock()
		data := body()
		s.mu.RUnlock()

		if data == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "document not generated yet"})
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, contentType, data)
	}
}

// ListenAndServe serves on port until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Info("🌐 Preview available at http://localhost:%d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("preview server failed: %w", err)
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
