package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/vitabu/textbook-store/internal/auth"
	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/models"
	"github.com/vitabu/textbook-store/internal/store"
	"golang.org/x/time/rate"
)

// Users handles registration, login, and role management.
type Users struct {
	db      *sql.DB
	tokens  *auth.TokenIssuer
	limiter *rate.Limiter
}

func NewUsers(db *sql.DB, tokens *auth.TokenIssuer) *Users {
	return &Users{
		db:      db,
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

func (s *Users) Register(ctx context.Context, username, password string) (*models.User, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	fields := map[string]string{}
	if len(strings.TrimSpace(username)) < 3 {
		fields["username"] = "username must be at least 3 characters"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return store.CreateUser(ctx, s.db, username, hash, models.RoleUser)
}

// Login verifies the credentials and mints a bearer token. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *Users) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if !s.limiter.Allow() {
		return "", nil, ErrRateLimited
	}

	user, err := store.GetUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Principal{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ChangeRole promotes or demotes a user. Only admins may call it and the
// target role must be one of the closed role set.
func (s *Users) ChangeRole(ctx context.Context, actor auth.Principal, userID int64, role models.Role) (*models.User, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, validationError("role", "role must be 'user' or 'admin'")
	}
	return store.UpdateUserRole(ctx, s.db, userID, role)
}
