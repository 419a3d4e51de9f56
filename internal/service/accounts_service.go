package service

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/port"
)

var accountTracer = otel.Tracer("service/accounts")

// AccountService manages money accounts. Balances are stored running
// totals, authoritative at query time; nothing here recomputes them from
// transactions.
type AccountService struct {
	accounts     port.AccountStore
	transactions port.TransactionStore
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accounts port.AccountStore, transactions port.TransactionStore, metrics *observability.Metrics, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts:     accounts,
		transactions: transactions,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *AccountService) List(ctx context.Context, userID string) ([]domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.accounts.ListAccounts(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Get")
	defer span.End()

	return s.accounts.GetAccount(ctx, userID, accountID)
}

func (s *AccountService) Create(ctx context.Context, userID string, draft *domain.AccountDraft) (*domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Create")
	defer span.End()

	if err := validateAccountDraft(draft); err != nil {
		return nil, err
	}
	return s.accounts.CreateAccount(ctx, userID, draft)
}

func (s *AccountService) Update(ctx context.Context, userID, accountID string, draft *domain.AccountDraft) (*domain.Account, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Update")
	defer span.End()

	if err := validateAccountDraft(draft); err != nil {
		return nil, err
	}
	// Ownership check before mutating.
	if _, err := s.accounts.GetAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	return s.accounts.UpdateAccount(ctx, accountID, draft)
}

// Delete removes an account. It refuses while any of the user's
// transactions still reference it, so history never dangles.
func (s *AccountService) Delete(ctx context.Context, userID, accountID string) error {
	ctx, span := accountTracer.Start(ctx, "AccountService.Delete")
	defer span.End()

	if _, err := s.accounts.GetAccount(ctx, userID, accountID); err != nil {
		return err
	}

	txs, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		if tx.AccountID == accountID {
			return &domain.ErrConflict{Message: "account has transactions: delete or move them first"}
		}
	}

	if err := s.accounts.DeleteAccount(ctx, accountID); err != nil {
		return err
	}

	s.logger.Info("account deleted",
		zap.String("account_id", accountID),
		zap.String("user_id", userID),
	)
	return nil
}

func validateAccountDraft(draft *domain.AccountDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if !slices.Contains(domain.AccountTypes, draft.Type) {
		return &domain.ErrValidation{Field: "type", Message: "must be one of " + strings.Join(domain.AccountTypes, ", ")}
	}
	if draft.Currency == "" {
		draft.Currency = "USD"
	}
	return nil
}
