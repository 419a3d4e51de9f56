package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/handler"
	"github.com/dmelton/splitbook/internal/infra/cache"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/infra/resilience"
	"github.com/dmelton/splitbook/internal/service"
)

// stubStore satisfies every repository port with fixed data, enough to
// route requests end to end without a record store.
type stubStore struct {
	users  map[string]domain.User
	tokens map[string]domain.RefreshToken
}

func newStubStore() *stubStore {
	return &stubStore{
		users:  make(map[string]domain.User),
		tokens: make(map[string]domain.RefreshToken),
	}
}

func (s *stubStore) ListAccounts(context.Context, string) ([]domain.Account, error) {
	return nil, nil
}
func (s *stubStore) GetAccount(_ context.Context, _, accountID string) (*domain.Account, error) {
	return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
}
func (s *stubStore) CreateAccount(_ context.Context, userID string, draft *domain.AccountDraft) (*domain.Account, error) {
	return &domain.Account{ID: "acct-1", UserID: userID, Name: draft.Name, Type: draft.Type, Currency: draft.Currency}, nil
}
func (s *stubStore) UpdateAccount(_ context.Context, accountID string, _ *domain.AccountDraft) (*domain.Account, error) {
	return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
}
func (s *stubStore) DeleteAccount(context.Context, string) error { return nil }

func (s *stubStore) ListCategories(context.Context, string) ([]domain.Category, error) {
	return nil, nil
}
func (s *stubStore) CreateCategory(_ context.Context, userID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	return &domain.Category{ID: "cat-1", UserID: userID, Name: draft.Name, ParentID: draft.ParentID}, nil
}
func (s *stubStore) UpdateCategory(_ context.Context, categoryID string, _ *domain.CategoryDraft) (*domain.Category, error) {
	return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
}
func (s *stubStore) DeleteCategory(context.Context, string) error { return nil }

func (s *stubStore) ListTransactions(context.Context, string) ([]domain.Transaction, error) {
	return nil, nil
}
func (s *stubStore) GetTransaction(_ context.Context, transactionID string) (*domain.Transaction, error) {
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}
func (s *stubStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	created := *tx
	created.ID = "tx-1"
	return &created, nil
}
func (s *stubStore) UpdateTransaction(_ context.Context, transactionID string, _ *domain.Transaction) (*domain.Transaction, error) {
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}
func (s *stubStore) DeleteTransaction(context.Context, string) error { return nil }

func (s *stubStore) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return &u, nil
}
func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}
func (s *stubStore) CreateUser(_ context.Context, email, passwordHash string) (*domain.User, error) {
	u := domain.User{ID: "user-1", Email: email, PasswordHash: passwordHash}
	s.users[u.ID] = u
	return &u, nil
}

func (s *stubStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.tokens[tokenHash] = domain.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}
func (s *stubStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: ""}
	}
	return &t, nil
}
func (s *stubStore) RevokeRefreshToken(context.Context, string) error     { return nil }
func (s *stubStore) RevokeAllRefreshTokens(context.Context, string) error { return nil }

func newTestRouter() http.Handler {
	store := newStubStore()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	summaryCache := cache.New[domain.SummaryReport](time.Minute)

	svcs := handler.Services{
		Auth:         service.NewAuthService(store, store, "test-secret", 15*time.Minute, time.Hour, logger),
		Accounts:     service.NewAccountService(store, store, metrics, logger),
		Categories:   service.NewCategoryService(store, store, logger),
		Transactions: service.NewTransactionService(store, store, store, store, summaryCache, logger),
		Reports:      service.NewReportService(store, store, summaryCache, metrics, logger),
		Imports:      service.NewImportService(store, store, store, summaryCache, resilience.NewBulkhead(1), metrics, logger),
	}
	return handler.NewRouter(svcs, metrics, logger)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter()

	// A request through the middleware chain populates the counters.
	warmup := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(httptest.NewRecorder(), warmup)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	// The endpoint must expose the application registry, not the default
	// global one, or none of these families would appear.
	body := rec.Body.String()
	for _, family := range []string{"splitbook_requests_total", "splitbook_request_duration_seconds"} {
		if !strings.Contains(body, family) {
			t.Errorf("expected /metrics to expose %s", family)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	paths := []string{"/v1/accounts", "/v1/categories", "/v1/transactions", "/v1/reports/summary"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRegisterLoginAndAuthorizedRequest(t *testing.T) {
	router := newTestRouter()

	register := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := register(`{"email":"dana@example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	loginReq := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString(`{"email":"dana@example.com","password":"correct-horse"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", loginRec.Code, loginRec.Body)
	}

	var login domain.LoginResponse
	if err := json.NewDecoder(loginRec.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	accountsRec := httptest.NewRecorder()
	router.ServeHTTP(accountsRec, req)
	if accountsRec.Code != http.StatusOK {
		t.Errorf("authorized accounts list: expected 200, got %d: %s", accountsRec.Code, accountsRec.Body)
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
