package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vitabu/textbook-store/internal/models"
)

// AppendAudit inserts one audit row. It only ever runs inside the same
// transaction as the catalog mutation it describes; there is no update or
// delete path for audit rows anywhere in this package.
func AppendAudit(ctx context.Context, tx *sql.Tx, audit *models.BookAudit) error {
	query := `
		INSERT INTO book_audits (user_id, book_id, action, old_data, new_data, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := tx.ExecContext(ctx, query,
		audit.UserID,
		audit.BookID,
		audit.Action,
		audit.OldData,
		audit.NewData,
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}

	return nil
}

func ListAuditsForBook(ctx context.Context, db *sql.DB, bookID int64) ([]models.BookAudit, error) {
	query := `
		SELECT id, user_id, book_id, action, old_data, new_data, created_at
		FROM book_audits
		WHERE book_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	var audits []models.BookAudit
	for rows.Next() {
		var audit models.BookAudit
		err := rows.Scan(
			&audit.ID,
			&audit.UserID,
			&audit.BookID,
			&audit.Action,
			&audit.OldData,
			&audit.NewData,
			&audit.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, audit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return audits, nil
}

// CountAuditsForBook supports verification of the one-audit-per-mutation
// contract in tests and admin tooling.
func CountAuditsForBook(ctx context.Context, db *sql.DB, bookID int64, action string) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM book_audits WHERE book_id = $1 AND action = $2`,
		bookID, action).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audits: %w", err)
	}
	return count, nil
}
