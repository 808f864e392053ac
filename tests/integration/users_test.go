package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitabu/textbook-store/internal/auth"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
	"github.com/vitabu/textbook-store/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tokens := auth.NewTokenIssuer("integration-secret", time.Hour)
	users := service.NewUsers(db, tokens)

	user, err := users.Register(ctx, "wanjiku", "a-strong-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("New users should get the user role, got %s", user.Role)
	}

	token, loggedIn, err := users.Login(ctx, "wanjiku", "a-strong-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Login returned wrong user: %d", loggedIn.ID)
	}

	principal, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse token: %v", err)
	}
	if principal.ID != user.ID || principal.Role != models.RoleUser {
		t.Errorf("Token principal mismatch: %+v", principal)
	}

	if _, _, err := users.Login(ctx, "wanjiku", "wrong-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("Expected invalid credentials, got: %v", err)
	}
	if _, _, err := users.Login(ctx, "no-such-user", "whatever"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("Expected invalid credentials for unknown user, got: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	users := service.NewUsers(db, auth.NewTokenIssuer("integration-secret", time.Hour))

	if _, err := users.Register(ctx, "otieno", "password1"); err != nil {
		t.Fatalf("First register: %v", err)
	}

	_, err := users.Register(ctx, "otieno", "password2")
	if !errors.Is(err, database.ErrUsernameTaken) {
		t.Errorf("Expected username taken, got: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	users := service.NewUsers(db, auth.NewTokenIssuer("integration-secret", time.Hour))

	if _, err := users.Register(ctx, "ab", "password"); !service.IsValidation(err) {
		t.Errorf("Expected validation error for short username, got: %v", err)
	}
	if _, err := users.Register(ctx, "valid-name", ""); !service.IsValidation(err) {
		t.Errorf("Expected validation error for empty password, got: %v", err)
	}
}

func TestChangeRole(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	admin := seedPrincipal(t, db, "admin", models.RoleAdmin)
	member := seedPrincipal(t, db, "member", models.RoleUser)
	users := service.NewUsers(db, auth.NewTokenIssuer("integration-secret", time.Hour))

	promoted, err := users.ChangeRole(ctx, admin, member.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted.Role != models.RoleAdmin {
		t.Errorf("Expected admin role after promotion, got %s", promoted.Role)
	}

	demoted, err := users.ChangeRole(ctx, admin, member.ID, models.RoleUser)
	if err != nil {
		t.Fatalf("Demote: %v", err)
	}
	if demoted.Role != models.RoleUser {
		t.Errorf("Expected user role after demotion, got %s", demoted.Role)
	}

	if _, err := users.ChangeRole(ctx, member, admin.ID, models.RoleUser); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Non-admin must not change roles, got: %v", err)
	}

	if _, err := users.ChangeRole(ctx, admin, member.ID, models.Role("superuser")); !service.IsValidation(err) {
		t.Errorf("Expected validation error for unknown role, got: %v", err)
	}

	if _, err := users.ChangeRole(ctx, admin, 999999, models.RoleAdmin); !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("Expected user not found, got: %v", err)
	}
}
