package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vitabu/textbook-store/internal/service"
)

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeStrict rejects unknown JSON keys so partial updates can never smuggle
// in fields outside the allow-listed set.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleFilterBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := s.search.FilterBooks(r.Context(), service.SearchCriteria{
		Publisher:     q.Get("publisher"),
		Level:         q.Get("level"),
		TitleContains: q.Get("subject"),
		SortBy:        q.Get("sort"),
		Direction:     q.Get("direction"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := s.search.GetBook(r.Context(), id)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var input service.BookInput
	if err := decodeStrict(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := s.catalog.CreateBook(r.Context(), principal(r), input)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, book)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var patch service.BookPatch
	if err := decodeStrict(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := s.catalog.UpdateBook(r.Context(), principal(r), id, patch)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	if err := s.catalog.DeleteBook(r.Context(), principal(r), id); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Book %d deleted", id)})
}

func (s *Server) handleBookAudits(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	audits, err := s.catalog.BookAudits(r.Context(), principal(r), id)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, audits)
}
