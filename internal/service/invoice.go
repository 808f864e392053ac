package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vitabu/textbook-store/internal/auth"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
	"github.com/vitabu/textbook-store/internal/store"
)

// Invoices assembles purchases into invoices with line items. It reads the
// catalog but never writes it.
type Invoices struct {
	db *sql.DB
}

func NewInvoices(db *sql.DB) *Invoices {
	return &Invoices{db: db}
}

type invoiceLine struct {
	BookID   int64
	Quantity int
}

// normalizeLines pairs the parallel book_ids/quantities arrays. Omitted
// quantities default every line to 1; a length mismatch is a hard error,
// never padded.
func normalizeLines(bookIDs []int64, quantities []int) ([]invoiceLine, error) {
	if len(bookIDs) == 0 {
		return nil, validationError("book_ids", "missing 'book_ids' array")
	}
	if quantities == nil {
		quantities = make([]int, len(bookIDs))
		for i := range quantities {
			quantities[i] = 1
		}
	}
	if len(bookIDs) != len(quantities) {
		return nil, validationError("quantities", "book_ids and quantities lengths do not match")
	}

	lines := make([]invoiceLine, len(bookIDs))
	for i, id := range bookIDs {
		if quantities[i] < 1 {
			return nil, validationError("quantities", "quantity must be a positive integer")
		}
		lines[i] = invoiceLine{BookID: id, Quantity: quantities[i]}
	}
	return lines, nil
}

// Create resolves current prices, computes the total, and persists the
// invoice header plus every line item as one atomic unit. Any unknown book
// id fails the whole operation before anything is written.
func (s *Invoices) Create(ctx context.Context, actor auth.Principal, bookIDs []int64, quantities []int) (*models.Invoice, error) {
	lines, err := normalizeLines(bookIDs, quantities)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.BookID
	}

	books, err := store.GetBooksByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, line := range lines {
		if _, ok := books[line.BookID]; !ok {
			missing = append(missing, fmt.Sprintf("%d", line.BookID))
		}
	}
	if len(missing) > 0 {
		return nil, validationError("book_ids", "book ids not found: "+strings.Join(missing, ", "))
	}

	total := decimal.Zero
	items := make([]models.InvoiceItem, len(lines))
	for i, line := range lines {
		book := books[line.BookID]
		price := book.PriceOrZero()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items[i] = models.InvoiceItem{
			BookID:    line.BookID,
			Title:     book.Title,
			BookPrice: price,
			Quantity:  line.Quantity,
		}
	}

	var created *models.Invoice
	err = database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var err error
		created, err = store.InsertInvoice(ctx, tx, &models.Invoice{
			UserID:     actor.ID,
			TotalPrice: total,
		})
		if err != nil {
			return err
		}

		for i := range items {
			items[i].InvoiceID = created.ID
			inserted, err := store.InsertInvoiceItem(ctx, tx, &items[i])
			if err != nil {
				return err
			}
			items[i].ID = inserted.ID
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	created.Items = items
	return created, nil
}

// List returns the caller's invoices, newest first.
func (s *Invoices) List(ctx context.Context, actor auth.Principal) ([]models.Invoice, error) {
	return store.ListInvoicesByUser(ctx, s.db, actor.ID)
}

// Get returns one of the caller's invoices with its items. Invoices owned by
// other users are reported as not found, not as forbidden.
func (s *Invoices) Get(ctx context.Context, actor auth.Principal, id int64) (*models.Invoice, error) {
	return store.GetInvoiceForUser(ctx, s.db, actor.ID, id)
}
