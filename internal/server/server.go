package server

import (
	"context"
	"net/http"
	"time"
)

// Server encapsulates the HTTP server of the application, providing
// controlled startup and shutdown.
type Server struct {
	server *http.Server
}

// ListenAndServe starts the HTTP server and blocks until it is stopped.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting active connections complete
// within the deadline of ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// NewServer creates and configures a new server instance.
//
// Parameters:
//   - address: address and port to listen on (e.g., ":8080").
//   - static: path to directory with static files to be served.
//   - calculator: evaluates calculation requests.
//   - reports: repository of stored calculation reports.
//   - templates: repository of preset rule sets.
//
// Sets timeouts for reading and writing and limits header size.
func NewServer(
	address string,
	static string,
	calculator Calculator,
	reports ReportsRepository,
	templates TemplatesRepository,
) *Server {
	router := NewApiV1Router(static, calculator, reports, templates)
	s := Server{&http.Server{
		Addr:           address,
		Handler:        router.Mux(),
		ReadTimeout:    time.Second * 5,
		WriteTimeout:   time.Second * 5,
		MaxHeaderBytes: 1024 * 10,
	}}

	return &s
}
