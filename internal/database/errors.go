package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassConflict
	ErrorClassSerialization
)

// ClassifyError maps postgres error codes onto the handful of classes the
// services care about. Unique violations surface as conflicts (duplicate
// username); serialization failures are reported as-is and never retried.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrorClassConflict
		case "40001", "40P01":
			return ErrorClassSerialization
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsUniqueViolation(err error) bool {
	return ClassifyError(err) == ErrorClassConflict
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrUsernameTaken   = errors.New("username already taken")
)
