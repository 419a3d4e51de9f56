// Package domain defines the core business entities for splitbook.
// These models are independent of the record store and represent the
// canonical data structures used throughout the service.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Users
// ============================================================

// User is the identity anchor for ownership and sharing.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ============================================================
// Accounts
// ============================================================

// Account types recognized by the tracker.
const (
	AccountChecking   = "Checking"
	AccountSavings    = "Savings"
	AccountCreditCard = "CreditCard"
	AccountCash       = "Cash"
)

// AccountTypes lists the valid account types in display order.
var AccountTypes = []string{AccountChecking, AccountSavings, AccountCreditCard, AccountCash}

// Account is a user-owned money account. Balance is a stored running total,
// authoritative at query time; it is never recomputed from transactions.
type Account struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

// AccountDraft is the payload to create or update an account.
type AccountDraft struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// ============================================================
// Categories
// ============================================================

// Category classifies transactions. The hierarchy is at most two levels:
// a root has no parent, a child points at a root.
type Category struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// CategoryDraft is the payload to create or update a category.
type CategoryDraft struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// ============================================================
// Transactions
// ============================================================

// Transaction types. The stored sign of Amount is derived from the type:
// Income and Charge are positive, Expense and Payment negative.
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
	TypeCharge  = "Charge"
	TypePayment = "Payment"
)

// Participant is one member of a shared transaction's split. Share is an
// optional weighting accepted for forward compatibility; settlement
// currently splits equally and ignores it.
type Participant struct {
	UserID string          `json:"user_id"`
	Share  decimal.Decimal `json:"share,omitempty"`
}

// Transaction is a single financial transaction owned by one user.
// SharedWith is only meaningful while Shared is true.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   string          `json:"account_id"`
	CategoryID  string          `json:"category_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Notes       string          `json:"notes,omitempty"`
	Shared      bool            `json:"shared"`
	SharedWith  []Participant   `json:"shared_with,omitempty"`
}

// TransactionDraft is the payload to create a transaction. Amount is the
// raw display value ("$1,234.56", "(80.00)", "80"); the service derives the
// canonical signed amount from Type.
type TransactionDraft struct {
	AccountID   string        `json:"account_id"`
	CategoryID  string        `json:"category_id,omitempty"`
	Amount      string        `json:"amount"`
	Type        string        `json:"type"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Notes       string        `json:"notes,omitempty"`
	Shared      bool          `json:"shared"`
	SharedWith  []Participant `json:"shared_with,omitempty"`
}

// TransactionPatch carries partial updates to a transaction. Nil fields are
// left unchanged.
type TransactionPatch struct {
	AccountID   *string        `json:"account_id,omitempty"`
	CategoryID  *string        `json:"category_id,omitempty"`
	Amount      *string        `json:"amount,omitempty"`
	Type        *string        `json:"type,omitempty"`
	Date        *time.Time     `json:"date,omitempty"`
	Description *string        `json:"description,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	Shared      *bool          `json:"shared,omitempty"`
	SharedWith  *[]Participant `json:"shared_with,omitempty"`
}

// ============================================================
// Reports
// ============================================================

// Settlement is the shared-expense position of one user. Net is
// TotalOwedTo − TotalOwed: positive means the user is owed money overall.
type Settlement struct {
	TotalShared decimal.Decimal `json:"total_shared"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	TotalOwedTo decimal.Decimal `json:"total_owed_to"`
	Net         decimal.Decimal `json:"net"`
}

// SummaryReport is the dashboard aggregate for one user. All figures are
// rounded to 2 decimal places at this (presentation) boundary.
type SummaryReport struct {
	UserID        string          `json:"user_id"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Settlement    Settlement      `json:"settlement"`
	Accounts      int             `json:"accounts"`
	Transactions  int             `json:"transactions"`
}

// ============================================================
// CSV import
// ============================================================

// ImportResult reports the outcome of a CSV import batch.
type ImportResult struct {
	BatchID               string `json:"batch_id"`
	Created               int    `json:"created"`
	Skipped               int    `json:"skipped"`
	DryRun                bool   `json:"dry_run,omitempty"`
	UnresolvedAccountName string `json:"unresolved_account_name,omitempty"`
}

// ============================================================
// Auth — request / response types
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the body for 201 from POST /v1/auth/register.
type RegisterResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// ============================================================
// Generic API wrappers
// ============================================================

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
