package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
)

const bookColumns = "id, publisher, level, isbn, title, price, status, created_at, updated_at"

func scanBook(row interface{ Scan(...interface{}) error }) (*models.Book, error) {
	book := &models.Book{}
	var publisher, level, isbn, status sql.NullString
	err := row.Scan(
		&book.ID,
		&publisher,
		&level,
		&isbn,
		&book.Title,
		&book.Price,
		&status,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.Publisher = publisher.String
	book.Level = level.String
	book.ISBN = isbn.String
	book.Status = status.String
	return book, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func GetBook(ctx context.Context, db *sql.DB, id int64) (*models.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1`

	book, err := scanBook(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	return book, nil
}

// GetBookForUpdate locks the row for the remainder of the transaction so a
// mutation and its audit snapshot always describe the same committed state.
func GetBookForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1
		FOR UPDATE`

	book, err := scanBook(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrBookNotFound
		}
		return nil, fmt.Errorf("lock book: %w", err)
	}

	return book, nil
}

// GetBooksByIDs fetches all referenced books in one round trip. Callers
// compare len(result) against the id set to detect unknown ids.
func GetBooksByIDs(ctx context.Context, db *sql.DB, ids []int64) (map[int64]models.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = ANY($1)`

	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get books by ids: %w", err)
	}
	defer rows.Close()

	books := make(map[int64]models.Book, len(ids))
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books[book.ID] = *book
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return books, nil
}

func InsertBook(ctx context.Context, tx *sql.Tx, book *models.Book) (*models.Book, error) {
	query := `
		INSERT INTO books (publisher, level, isbn, title, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + bookColumns

	created, err := scanBook(tx.QueryRowContext(ctx, query,
		nullString(book.Publisher),
		nullString(book.Level),
		nullString(book.ISBN),
		book.Title,
		book.Price,
		nullString(book.Status),
	))
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	return created, nil
}

func UpdateBook(ctx context.Context, tx *sql.Tx, book *models.Book) (*models.Book, error) {
	query := `
		UPDATE books
		SET publisher = $1, level = $2, isbn = $3, title = $4, price = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + bookColumns

	updated, err := scanBook(tx.QueryRowContext(ctx, query,
		nullString(book.Publisher),
		nullString(book.Level),
		nullString(book.ISBN),
		book.Title,
		book.Price,
		nullString(book.Status),
		book.ID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrBookNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	return updated, nil
}

func DeleteBook(ctx context.Context, tx *sql.Tx, id int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrBookNotFound
	}

	return nil
}

// BookFilter narrows, orders, and paginates the catalog. Zero-value criteria
// match everything; SortBy and Direction must already be validated against
// the closed column set by the caller.
type BookFilter struct {
	Publisher     string
	Level         string
	TitleContains string
	SortBy        string
	Direction     string
	Page          int
	Limit         int
}

var bookSortColumns = map[string]string{
	"title": "title",
	"price": "price",
}

// FilterBooks builds one WHERE clause from the supplied criteria, counts the
// filtered set, then applies ORDER BY / LIMIT / OFFSET. A trailing id sort
// keeps the ordering total so pages never shuffle rows with equal keys.
func FilterBooks(ctx context.Context, db *sql.DB, filter BookFilter) (*OffsetPage, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(column, value string) {
		args = append(args, "%"+value+"%")
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}

	if filter.Publisher != "" {
		addCondition("publisher", filter.Publisher)
	}
	if filter.Level != "" {
		addCondition("level", filter.Level)
	}
	if filter.TitleContains != "" {
		addCondition("title", filter.TitleContains)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	sortColumn, ok := bookSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "title"
	}
	direction := "ASC"
	if filter.Direction == "desc" {
		direction = "DESC"
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT `+bookColumns+`
		FROM books%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d`,
		where, sortColumn, direction, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &OffsetPage{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalCount: total,
		TotalPages: totalPages(total, filter.Limit),
		Data:       books,
	}, nil
}
