package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
)

func InsertInvoice(ctx context.Context, tx *sql.Tx, invoice *models.Invoice) (*models.Invoice, error) {
	created := &models.Invoice{UserID: invoice.UserID}

	query := `
		INSERT INTO invoices (user_id, total_price, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, total_price, created_at`

	err := tx.QueryRowContext(ctx, query, invoice.UserID, invoice.TotalPrice).Scan(
		&created.ID,
		&created.TotalPrice,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	return created, nil
}

func InsertInvoiceItem(ctx context.Context, tx *sql.Tx, item *models.InvoiceItem) (*models.InvoiceItem, error) {
	created := &models.InvoiceItem{
		InvoiceID: item.InvoiceID,
		BookID:    item.BookID,
		BookPrice: item.BookPrice,
		Quantity:  item.Quantity,
	}

	query := `
		INSERT INTO invoice_items (invoice_id, book_id, book_price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := tx.QueryRowContext(ctx, query, item.InvoiceID, item.BookID, item.BookPrice, item.Quantity).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert invoice item: %w", err)
	}

	return created, nil
}

// GetInvoiceForUser loads an invoice with its items, scoped to the owner.
// A missing invoice and someone else's invoice are indistinguishable here,
// both come back as ErrInvoiceNotFound.
func GetInvoiceForUser(ctx context.Context, db *sql.DB, userID, id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}

	query := `
		SELECT id, user_id, total_price, created_at
		FROM invoices
		WHERE id = $1 AND user_id = $2`

	err := db.QueryRowContext(ctx, query, id, userID).Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.TotalPrice,
		&invoice.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	itemsQuery := `
		SELECT id, invoice_id, book_id, book_price, quantity
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id`

	rows, err := db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.BookID,
			&item.BookPrice,
			&item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	invoice.Items = items

	return invoice, nil
}

func ListInvoicesByUser(ctx context.Context, db *sql.DB, userID int64) ([]models.Invoice, error) {
	query := `
		SELECT id, user_id, total_price, created_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		var invoice models.Invoice
		err := rows.Scan(
			&invoice.ID,
			&invoice.UserID,
			&invoice.TotalPrice,
			&invoice.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return invoices, nil
}

func CountInvoices(ctx context.Context, db *sql.DB) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}
