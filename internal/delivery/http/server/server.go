package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server wraps the front-end's http.Server.
type Server struct {
	httpServer *http.Server
}

func New(port string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%s", port),
			Handler:     handler,
			ReadTimeout: 10 * time.Second,
			// A track flow waits on the backend's scrape.
			WriteTimeout: 90 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
