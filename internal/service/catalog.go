package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vitabu/textbook-store/internal/auth"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
	"github.com/vitabu/textbook-store/internal/store"
)

// Catalog owns every book mutation. Each create/update/delete runs in one
// transaction together with its audit row: a mutation that cannot be
// audited does not happen.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// BookInput is the create payload.
type BookInput struct {
	Publisher string           `json:"publisher"`
	Level     string           `json:"level"`
	ISBN      string           `json:"isbn"`
	Title     string           `json:"title"`
	Price     *decimal.Decimal `json:"price"`
	Status    string           `json:"status"`
}

// BookPatch is the partial update payload. Only non-nil fields are applied;
// the HTTP layer rejects unknown keys before this struct is ever populated.
type BookPatch struct {
	Publisher *string          `json:"publisher"`
	Level     *string          `json:"level"`
	ISBN      *string          `json:"isbn"`
	Title     *string          `json:"title"`
	Price     *decimal.Decimal `json:"price"`
	Status    *string          `json:"status"`
}

func validateBook(book *models.Book) error {
	fields := map[string]string{}
	if strings.TrimSpace(book.Title) == "" {
		fields["title"] = "title is required"
	}
	if book.Price.Valid && book.Price.Decimal.IsNegative() {
		fields["price"] = "price must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func snapshot(book *models.Book) (*string, error) {
	data, err := json.Marshal(book)
	if err != nil {
		return nil, fmt.Errorf("serialize book snapshot: %w", err)
	}
	s := string(data)
	return &s, nil
}

func (c *Catalog) CreateBook(ctx context.Context, actor auth.Principal, input BookInput) (*models.Book, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, ErrForbidden
	}

	book := &models.Book{
		Publisher: input.Publisher,
		Level:     input.Level,
		ISBN:      input.ISBN,
		Title:     input.Title,
		Status:    input.Status,
	}
	if input.Price != nil {
		book.Price = decimal.NullDecimal{Decimal: *input.Price, Valid: true}
	}
	if err := validateBook(book); err != nil {
		return nil, err
	}

	var created *models.Book
	err := database.WithTransaction(ctx, c.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var err error
		created, err = store.InsertBook(ctx, tx, book)
		if err != nil {
			return err
		}

		newData, err := snapshot(created)
		if err != nil {
			return err
		}

		return store.AppendAudit(ctx, tx, &models.BookAudit{
			UserID:  actor.ID,
			BookID:  &created.ID,
			Action:  models.AuditActionCreate,
			NewData: newData,
		})
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func applyPatch(book *models.Book, patch BookPatch) {
	if patch.Publisher != nil {
		book.Publisher = *patch.Publisher
	}
	if patch.Level != nil {
		book.Level = *patch.Level
	}
	if patch.ISBN != nil {
		book.ISBN = *patch.ISBN
	}
	if patch.Title != nil {
		book.Title = *patch.Title
	}
	if patch.Price != nil {
		book.Price = decimal.NullDecimal{Decimal: *patch.Price, Valid: true}
	}
	if patch.Status != nil {
		book.Status = *patch.Status
	}
}

func (c *Catalog) UpdateBook(ctx context.Context, actor auth.Principal, id int64, patch BookPatch) (*models.Book, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, ErrForbidden
	}

	var updated *models.Book
	err := database.WithTransaction(ctx, c.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		book, err := store.GetBookForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		oldData, err := snapshot(book)
		if err != nil {
			return err
		}

		applyPatch(book, patch)
		if err := validateBook(book); err != nil {
			return err
		}

		updated, err = store.UpdateBook(ctx, tx, book)
		if err != nil {
			return err
		}

		newData, err := snapshot(updated)
		if err != nil {
			return err
		}

		return store.AppendAudit(ctx, tx, &models.BookAudit{
			UserID:  actor.ID,
			BookID:  &updated.ID,
			Action:  models.AuditActionUpdate,
			OldData: oldData,
			NewData: newData,
		})
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (c *Catalog) DeleteBook(ctx context.Context, actor auth.Principal, id int64) error {
	if !actor.Role.CanManageCatalog() {
		return ErrForbidden
	}

	return database.WithTransaction(ctx, c.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		book, err := store.GetBookForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		oldData, err := snapshot(book)
		if err != nil {
			return err
		}

		if err := store.DeleteBook(ctx, tx, id); err != nil {
			return err
		}

		// book_id survives the delete; the reference is informational only.
		return store.AppendAudit(ctx, tx, &models.BookAudit{
			UserID:  actor.ID,
			BookID:  &id,
			Action:  models.AuditActionDelete,
			OldData: oldData,
		})
	})
}

// BookAudits returns the change history for one book, newest first.
func (c *Catalog) BookAudits(ctx context.Context, actor auth.Principal, bookID int64) ([]models.BookAudit, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, ErrForbidden
	}
	return store.ListAuditsForBook(ctx, c.db, bookID)
}
