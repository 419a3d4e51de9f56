// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/dmelton/splitbook/internal/domain"
)

// AccountStore handles account persistence.
type AccountStore interface {
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	GetAccount(ctx context.Context, userID, accountID string) (*domain.Account, error)
	CreateAccount(ctx context.Context, userID string, draft *domain.AccountDraft) (*domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, draft *domain.AccountDraft) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

// CategoryStore handles category persistence.
type CategoryStore interface {
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, userID string, draft *domain.CategoryDraft) (*domain.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, draft *domain.CategoryDraft) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// TransactionStore handles transaction persistence. ListTransactions must
// return both owned and shared-in transactions so settlement sees a user's
// full exposure.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, tx *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// UserStore handles user lookup and registration.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error)
}

// AuthStore persists refresh tokens.
type AuthStore interface {
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
