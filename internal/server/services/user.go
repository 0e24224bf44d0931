// Package services holds the server's business logic. UserService owns the
// credential lifecycle: account creation and password checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/dbx"
	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/dmitrijs2005/writerlab/internal/server/passwords"
	"github.com/dmitrijs2005/writerlab/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit; it counts bytes, not characters.
	MaxPasswordBytes = 72
)

var credentialValidator = validator.New()

// FieldError rejects one submitted field. It matches
// common.ErrorIncorrectFields with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", common.ErrorIncorrectFields, e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return common.ErrorIncorrectFields
}

// validateCredentials applies the signup rules shared by every entry point.
// email must already be normalized.
func validateCredentials(email, password string) error {
	if email == "" {
		return &FieldError{Field: "email", Message: "is required"}
	}
	if err := credentialValidator.Var(email, "email"); err != nil {
		return &FieldError{Field: "email", Message: "must be a valid email"}
	}

	switch {
	case password == "":
		return &FieldError{Field: "password", Message: "is required"}
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return &FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	case len(password) > MaxPasswordBytes:
		return &FieldError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)}
	}
	return nil
}

// PasswordHasher is a passwords.Hasher that can also supply a hash to
// compare against for accounts that do not exist.
type PasswordHasher interface {
	passwords.Hasher
	DummyHash() string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		log:         log.With("module", "users"),
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new account and its credential in one transaction.
// It returns common.ErrDuplicateEmail when the email is taken, including when
// a concurrent signup wins the race to the unique index. Invalid input is
// reported as a *FieldError.
func (s *UserService) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	_, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, Name: strings.TrimSpace(name)}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return s.repomanager.Passwords(tx).Create(ctx, &models.Credential{UserID: created.ID, Hash: hash})
	})
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	s.log.Info(ctx, "user created", "user_id", user.ID)
	return user, nil
}

// VerifyLogin returns the user when password matches its stored hash. An
// unknown email, a missing credential and a wrong password all return
// (nil, nil); each of them costs exactly one bcrypt comparison.
func (s *UserService) VerifyLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, hash, err := s.repomanager.Users(s.db).GetWithCredentialByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Compare(password, s.hasher.DummyHash())
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if hash == "" {
		s.hasher.Compare(password, s.hasher.DummyHash())
		return nil, nil
	}

	if !s.hasher.Compare(password, hash) {
		return nil, nil
	}

	return user, nil
}

// GetUserByID returns common.ErrorNotFound for unknown ids and
// common.ErrStoreUnavailable when the store cannot answer.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return user, nil
}
