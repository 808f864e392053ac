// Package httpapi exposes the JSON HTTP surface of the service.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vitabu/textbook-store/internal/auth"
	"github.com/vitabu/textbook-store/internal/service"
)

type Server struct {
	logger   *slog.Logger
	tokens   *auth.TokenIssuer
	catalog  *service.Catalog
	search   *service.Search
	invoices *service.Invoices
	users    *service.Users
}

func NewServer(logger *slog.Logger, tokens *auth.TokenIssuer, catalog *service.Catalog, search *service.Search, invoices *service.Invoices, users *service.Users) *Server {
	return &Server{
		logger:   logger,
		tokens:   tokens,
		catalog:  catalog,
		search:   search,
		invoices: invoices,
		users:    users,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(withLogging(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public catalog reads and account endpoints.
	r.Get("/filter", s.handleFilterBooks)
	r.Get("/books/{id}", s.handleGetBook)
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	// Everything below requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(s.tokens))

		r.Post("/books", s.handleCreateBook)
		r.Put("/books/{id}", s.handleUpdateBook)
		r.Delete("/books/{id}", s.handleDeleteBook)
		r.Get("/books/{id}/audits", s.handleBookAudits)

		r.Post("/invoices", s.handleCreateInvoice)
		r.Get("/invoices", s.handleListInvoices)
		r.Get("/invoices/{id}", s.handleGetInvoice)

		r.Put("/users/{id}/role", s.handleChangeRole)
	})

	return r
}
