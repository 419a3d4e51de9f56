package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/service"
)

func newAccountFixture(t *testing.T) (*service.AccountService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := service.NewAccountService(store, store, observability.NewMetrics(), zap.NewNop())
	return svc, store
}

func TestAccountCreate_Validation(t *testing.T) {
	svc, _ := newAccountFixture(t)

	_, err := svc.Create(context.Background(), "u1", &domain.AccountDraft{Name: "", Type: domain.AccountChecking})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}

	_, err = svc.Create(context.Background(), "u1", &domain.AccountDraft{Name: "Vault", Type: "Mattress"})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation for bad type, got %v", err)
	}
}

func TestAccountCreate_DefaultsCurrency(t *testing.T) {
	svc, _ := newAccountFixture(t)

	acct, err := svc.Create(context.Background(), "u1", &domain.AccountDraft{
		Name:    "Checking",
		Type:    domain.AccountChecking,
		Balance: decimal.RequireFromString("100"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if acct.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", acct.Currency)
	}
}

func TestAccountDelete_RefusedWhileReferenced(t *testing.T) {
	svc, store := newAccountFixture(t)
	store.accounts["a1"] = domain.Account{ID: "a1", UserID: "u1", Name: "Checking", Type: domain.AccountChecking}
	store.transactions["t1"] = domain.Transaction{
		ID: "t1", UserID: "u1", AccountID: "a1",
		Amount: decimal.RequireFromString("-5"), Type: domain.TypeExpense, Date: time.Now(),
	}

	err := svc.Delete(context.Background(), "u1", "a1")
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	delete(store.transactions, "t1")
	if err := svc.Delete(context.Background(), "u1", "a1"); err != nil {
		t.Fatalf("delete after transactions removed: %v", err)
	}
	if _, ok := store.accounts["a1"]; ok {
		t.Error("account still present after delete")
	}
}

func TestAccountAccess_ScopedToOwner(t *testing.T) {
	svc, store := newAccountFixture(t)
	store.accounts["a1"] = domain.Account{ID: "a1", UserID: "u1", Name: "Checking", Type: domain.AccountChecking}

	_, err := svc.Get(context.Background(), "u2", "a1")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}

	_, err = svc.Update(context.Background(), "u2", "a1", &domain.AccountDraft{Name: "Stolen", Type: domain.AccountChecking})
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound on cross-user update, got %v", err)
	}
}
