package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/money"
	"github.com/dmelton/splitbook/internal/port"
)

var txTracer = otel.Tracer("service/transactions")

const maxDescriptionLength = 250

// TransactionService manages transactions and their sharing semantics.
// Mutations are owner-only; participants get read access through List/Get.
type TransactionService struct {
	transactions port.TransactionStore
	accounts     port.AccountStore
	categories   port.CategoryStore
	users        port.UserStore
	summaries    port.Cache[domain.SummaryReport]
	logger       *zap.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	transactions port.TransactionStore,
	accounts port.AccountStore,
	categories port.CategoryStore,
	users port.UserStore,
	summaries port.Cache[domain.SummaryReport],
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		users:        users,
		summaries:    summaries,
		logger:       logger,
	}
}

// List returns every transaction visible to the user: owned plus shared-in.
func (s *TransactionService) List(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.transactions.ListTransactions(ctx, userID)
}

func (s *TransactionService) Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Get")
	defer span.End()

	tx, err := s.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(userID, tx) {
		// Hidden rather than forbidden: existence is not disclosed.
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	return tx, nil
}

func (s *TransactionService) Create(ctx context.Context, userID string, draft *domain.TransactionDraft) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Create")
	defer span.End()

	tx := &domain.Transaction{
		UserID:      userID,
		AccountID:   draft.AccountID,
		CategoryID:  draft.CategoryID,
		Type:        draft.Type,
		Date:        draft.Date,
		Description: strings.TrimSpace(draft.Description),
		Notes:       draft.Notes,
		Shared:      draft.Shared,
		SharedWith:  draft.SharedWith,
	}

	amount, err := money.Normalize(draft.Type, draft.Amount)
	if err != nil {
		return nil, err
	}
	tx.Amount = amount

	if err := s.validate(ctx, userID, tx); err != nil {
		return nil, err
	}

	created, err := s.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.invalidateSummaries(created)
	s.logger.Info("transaction created",
		zap.String("transaction_id", created.ID),
		zap.String("user_id", userID),
		zap.String("type", created.Type),
	)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, transactionID string, patch *domain.TransactionPatch) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Update")
	defer span.End()

	existing, err := s.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(userID, existing) {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	if existing.UserID != userID {
		return nil, &domain.ErrForbidden{Action: "only the owner can modify a transaction"}
	}

	next := *existing
	applyPatch(&next, patch)

	// Re-derive the canonical sign whenever amount or type moved.
	if patch.Amount != nil {
		amount, err := money.Normalize(next.Type, *patch.Amount)
		if err != nil {
			return nil, err
		}
		next.Amount = amount
	} else if patch.Type != nil {
		amount, err := money.NormalizeDecimal(next.Type, next.Amount)
		if err != nil {
			return nil, err
		}
		next.Amount = amount
	}

	if err := s.validate(ctx, userID, &next); err != nil {
		return nil, err
	}

	updated, err := s.transactions.UpdateTransaction(ctx, transactionID, &next)
	if err != nil {
		return nil, err
	}

	// Invalidate for the union of old and new participants.
	s.invalidateSummaries(existing)
	s.invalidateSummaries(updated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	ctx, span := txTracer.Start(ctx, "TransactionService.Delete")
	defer span.End()

	existing, err := s.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	if !visibleTo(userID, existing) {
		return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	if existing.UserID != userID {
		return &domain.ErrForbidden{Action: "only the owner can delete a transaction"}
	}

	if err := s.transactions.DeleteTransaction(ctx, transactionID); err != nil {
		return err
	}

	s.invalidateSummaries(existing)
	s.logger.Info("transaction deleted",
		zap.String("transaction_id", transactionID),
		zap.String("user_id", userID),
	)
	return nil
}

// validate enforces the write rules shared by create and update. It
// mutates tx: sharing metadata is cleared when Shared is false.
func (s *TransactionService) validate(ctx context.Context, userID string, tx *domain.Transaction) error {
	if tx.Description == "" {
		return &domain.ErrValidation{Field: "description", Message: "required"}
	}
	if len(tx.Description) > maxDescriptionLength {
		return &domain.ErrValidation{Field: "description", Message: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	if tx.Date.IsZero() {
		return &domain.ErrValidation{Field: "date", Message: "required"}
	}
	if tx.Date.After(endOfToday()) {
		return &domain.ErrValidation{Field: "date", Message: "cannot be in the future"}
	}
	if tx.AccountID == "" {
		return &domain.ErrValidation{Field: "account_id", Message: "required"}
	}

	if _, err := s.accounts.GetAccount(ctx, userID, tx.AccountID); err != nil {
		return err
	}

	if tx.CategoryID != "" {
		cats, err := s.categories.ListCategories(ctx, userID)
		if err != nil {
			return err
		}
		found := false
		for _, c := range cats {
			if c.ID == tx.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return &domain.ErrNotFound{Resource: "category", ID: tx.CategoryID}
		}
	}

	if !tx.Shared {
		tx.SharedWith = nil
		return nil
	}
	for _, p := range tx.SharedWith {
		if p.UserID == userID {
			continue
		}
		if _, err := s.users.GetUserByID(ctx, p.UserID); err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				return &domain.ErrInvalidParticipant{UserID: p.UserID}
			}
			return err
		}
	}
	return nil
}

func applyPatch(tx *domain.Transaction, patch *domain.TransactionPatch) {
	if patch.AccountID != nil {
		tx.AccountID = *patch.AccountID
	}
	if patch.CategoryID != nil {
		tx.CategoryID = *patch.CategoryID
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Description != nil {
		tx.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Notes != nil {
		tx.Notes = *patch.Notes
	}
	if patch.Shared != nil {
		tx.Shared = *patch.Shared
	}
	if patch.SharedWith != nil {
		tx.SharedWith = *patch.SharedWith
	}
}

// invalidateSummaries drops the cached dashboard for everyone whose
// settlement the transaction can affect.
func (s *TransactionService) invalidateSummaries(tx *domain.Transaction) {
	s.summaries.Delete(summaryCacheKey(tx.UserID))
	for _, p := range tx.SharedWith {
		s.summaries.Delete(summaryCacheKey(p.UserID))
	}
}

func visibleTo(userID string, tx *domain.Transaction) bool {
	if tx.UserID == userID {
		return true
	}
	if !tx.Shared {
		return false
	}
	for _, p := range tx.SharedWith {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func summaryCacheKey(userID string) string {
	return "summary:" + userID
}

func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}
