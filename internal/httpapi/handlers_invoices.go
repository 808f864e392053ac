package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitabu/textbook-store/internal/models"
)

type invoiceItemResponse struct {
	BookID    int64           `json:"book_id"`
	Title     string          `json:"title,omitempty"`
	BookPrice decimal.Decimal `json:"book_price"`
	Quantity  int             `json:"quantity"`
}

type invoiceResponse struct {
	ID         int64                 `json:"id"`
	UserName   string                `json:"user_name,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	TotalPrice decimal.Decimal       `json:"total_price"`
	Items      []invoiceItemResponse `json:"items"`
}

type invoiceSummaryResponse struct {
	ID         int64           `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func invoiceItems(items []models.InvoiceItem) []invoiceItemResponse {
	out := make([]invoiceItemResponse, len(items))
	for i, item := range items {
		out[i] = invoiceItemResponse{
			BookID:    item.BookID,
			Title:     item.Title,
			BookPrice: item.BookPrice,
			Quantity:  item.Quantity,
		}
	}
	return out
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookIDs    []int64 `json:"book_ids"`
		Quantities []int   `json:"quantities"`
	}
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := principal(r)
	invoice, err := s.invoices.Create(r.Context(), actor, req.BookIDs, req.Quantities)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, invoiceResponse{
		ID:         invoice.ID,
		UserName:   actor.Username,
		CreatedAt:  invoice.CreatedAt,
		TotalPrice: invoice.TotalPrice,
		Items:      invoiceItems(invoice.Items),
	})
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.invoices.List(r.Context(), principal(r))
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	out := make([]invoiceSummaryResponse, len(invoices))
	for i, invoice := range invoices {
		out[i] = invoiceSummaryResponse{
			ID:         invoice.ID,
			CreatedAt:  invoice.CreatedAt,
			TotalPrice: invoice.TotalPrice,
		}
	}

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := s.invoices.Get(r.Context(), principal(r), id)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, invoiceResponse{
		ID:         invoice.ID,
		CreatedAt:  invoice.CreatedAt,
		TotalPrice: invoice.TotalPrice,
		Items:      invoiceItems(invoice.Items),
	})
}
