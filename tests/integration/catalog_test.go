package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
	"github.com/vitabu/textbook-store/internal/service"
	"github.com/vitabu/textbook-store/internal/store"
)

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCreateBookWritesCreateAudit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedPrincipal(t, db, "admin", models.RoleAdmin)
	catalog := service.NewCatalog(db)

	book, err := catalog.CreateBook(ctx, admin, service.BookInput{
		Publisher: "EduPub",
		Level:     "pp1",
		Title:     "Advanced Mathematics",
		Price:     decPtr(100),
		Status:    "approved",
	})
	if err != nil {
		t.Fatalf("Create book: %v", err)
	}

	if book.ID == 0 {
		t.Error("Book ID should not be 0")
	}
	if !book.Price.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected price 100, got %s", book.Price.Decimal)
	}

	audits, err := store.ListAuditsForBook(ctx, db, book.ID)
	if err != nil {
		t.Fatalf("List audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("Expected exactly 1 audit row, got %d", len(audits))
	}

	audit := audits[0]
	if audit.Action != models.AuditActionCreate {
		t.Errorf("Expected CREATE action, got %s", audit.Action)
	}
	if audit.UserID != admin.ID {
		t.Errorf("Expected acting user %d, got %d", admin.ID, audit.UserID)
	}
	if audit.OldData != nil {
		t.Error("CREATE audit should have no old snapshot")
	}
	if audit.NewData == nil {
		t.Fatal("CREATE audit should have a new snapshot")
	}

	var snapshot models.Book
	if err := json.Unmarshal([]byte(*audit.NewData), &snapshot); err != nil {
		t.Fatalf("Unmarshal new snapshot: %v", err)
	}
	if snapshot.Title != "Advanced Mathematics" {
		t.Errorf("Snapshot title mismatch: %s", snapshot.Title)
	}
}

func TestUpdateBookPartialMergeAndAudit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedPrincipal(t, db, "admin", models.RoleAdmin)
	catalog := service.NewCatalog(db)

	book, err := catalog.CreateBook(ctx, admin, service.BookInput{
		Publisher: "LearnWell",
		Level:     "grade4",
		Title:     "Math for Beginners",
		Price:     decPtr(100),
	})
	if err != nil {
		t.Fatalf("Create book: %v", err)
	}

	updated, err := catalog.UpdateBook(ctx, admin, book.ID, service.BookPatch{Price: decPtr(150)})
	if err != nil {
		t.Fatalf("Update book: %v", err)
	}

	if updated.Publisher != "LearnWell" {
		t.Errorf("Publisher should be unchanged, got %q", updated.Publisher)
	}
	if updated.Title != "Math for Beginners" {
		t.Errorf("Title should be unchanged, got %q", updated.Title)
	}
	if !updated.Price.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected price 150, got %s", updated.Price.Decimal)
	}

	count, err := store.CountAuditsForBook(ctx, db, book.ID, models.AuditActionUpdate)
	if err != nil {
		t.Fatalf("Count audits: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected exactly 1 UPDATE audit, got %d", count)
	}

	audits, err := store.ListAuditsForBook(ctx, db, book.ID)
	if err != nil {
		t.Fatalf("List audits: %v", err)
	}

	var updateAudit *models.BookAudit
	for i := range audits {
		if audits[i].Action == models.AuditActionUpdate {
			updateAudit = &audits[i]
		}
	}
	if updateAudit == nil {
		t.Fatal("UPDATE audit not found")
	}

	var oldSnap, newSnap models.Book
	if err := json.Unmarshal([]byte(*updateAudit.OldData), &oldSnap); err != nil {
		t.Fatalf("Unmarshal old snapshot: %v", err)
	}
	if err := json.Unmarshal([]byte(*updateAudit.NewData), &newSnap); err != nil {
		t.Fatalf("Unmarshal new snapshot: %v", err)
	}

	if !oldSnap.Price.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Old snapshot price should be 100, got %s", oldSnap.Price.Decimal)
	}
	if !newSnap.Price.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("New snapshot price should be 150, got %s", newSnap.Price.Decimal)
	}
	if newSnap.Publisher != "LearnWell" {
		t.Errorf("New snapshot publisher should be unchanged, got %q", newSnap.Publisher)
	}
}

func TestDeleteBookAuditSurvives(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedPrincipal(t, db, "admin", models.RoleAdmin)
	catalog := service.NewCatalog(db)

	book, err := catalog.CreateBook(ctx, admin, service.BookInput{Title: "World Around Us", Price: decPtr(16)})
	if err != nil {
		t.Fatalf("Create book: %v", err)
	}

	if err := catalog.DeleteBook(ctx, admin, book.ID); err != nil {
		t.Fatalf("Delete book: %v", err)
	}

	if _, err := store.GetBook(ctx, db, book.ID); !errors.Is(err, database.ErrBookNotFound) {
		t.Errorf("Expected book not found after delete, got: %v", err)
	}

	// Deleting again reports not found.
	if err := catalog.DeleteBook(ctx, admin, book.ID); !errors.Is(err, database.ErrBookNotFound) {
		t.Errorf("Expected not found on repeated delete, got: %v", err)
	}

	audits, err := store.ListAuditsForBook(ctx, db, book.ID)
	if err != nil {
		t.Fatalf("List audits: %v", err)
	}
	if len(audits) != 2 {
		t.Fatalf("Expected CREATE and DELETE audits, got %d rows", len(audits))
	}

	deleteAudit := audits[0]
	if deleteAudit.Action != models.AuditActionDelete {
		t.Fatalf("Newest audit should be DELETE, got %s", deleteAudit.Action)
	}
	if deleteAudit.BookID == nil || *deleteAudit.BookID != book.ID {
		t.Error("DELETE audit should keep the book id")
	}
	if deleteAudit.NewData != nil {
		t.Error("DELETE audit should have no new snapshot")
	}
	if deleteAudit.OldData == nil {
		t.Error("DELETE audit should carry the old snapshot")
	}
}

func TestCreateBookValidation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedPrincipal(t, db, "admin", models.RoleAdmin)
	catalog := service.NewCatalog(db)

	if _, err := catalog.CreateBook(ctx, admin, service.BookInput{Title: "  "}); !service.IsValidation(err) {
		t.Errorf("Expected validation error for empty title, got: %v", err)
	}

	if _, err := catalog.CreateBook(ctx, admin, service.BookInput{Title: "X", Price: decPtr(-1)}); !service.IsValidation(err) {
		t.Errorf("Expected validation error for negative price, got: %v", err)
	}

	// Failed creates must leave no catalog rows and no audit rows behind.
	page, err := store.FilterBooks(ctx, db, store.BookFilter{SortBy: "title", Direction: "asc", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Filter books: %v", err)
	}
	if page.TotalCount != 0 {
		t.Errorf("Expected empty catalog, got %d books", page.TotalCount)
	}
}

func TestUpdateBookNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedPrincipal(t, db, "admin", models.RoleAdmin)
	catalog := service.NewCatalog(db)

	_, err := catalog.UpdateBook(ctx, admin, 424242, service.BookPatch{Price: decPtr(10)})
	if !errors.Is(err, database.ErrBookNotFound) {
		t.Errorf("Expected book not found, got: %v", err)
	}
}
