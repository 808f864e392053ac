package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prices go over the wire as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Role is the closed set of user roles. Authorization goes through the
// capability predicates, never through raw string comparison.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// CanManageCatalog reports whether the role may mutate books and user roles.
func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Book struct {
	ID        int64               `json:"id"`
	Publisher string              `json:"publisher,omitempty"`
	Level     string              `json:"level,omitempty"`
	ISBN      string              `json:"isbn,omitempty"`
	Title     string              `json:"title"`
	Price     decimal.NullDecimal `json:"price"`
	Status    string              `json:"status,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// PriceOrZero is the price used for invoicing: books without a price cost nothing.
func (b Book) PriceOrZero() decimal.Decimal {
	if b.Price.Valid {
		return b.Price.Decimal
	}
	return decimal.Zero
}

const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// BookAudit pairs one catalog mutation with its before/after snapshots.
// BookID carries no foreign key so the row survives deletion of the book
// it describes.
type BookAudit struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    *int64    `json:"book_id"`
	Action    string    `json:"action"`
	OldData   *string   `json:"old_data"`
	NewData   *string   `json:"new_data"`
	CreatedAt time.Time `json:"created_at"`
}

type Invoice struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []InvoiceItem   `json:"items,omitempty"`
}

// InvoiceItem freezes the book price at invoice time; later catalog edits
// never change historical invoices.
type InvoiceItem struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	BookID    int64           `json:"book_id"`
	Title     string          `json:"title,omitempty"`
	BookPrice decimal.Decimal `json:"book_price"`
	Quantity  int             `json:"quantity"`
}
