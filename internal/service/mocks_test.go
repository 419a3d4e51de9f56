package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmelton/splitbook/internal/domain"
)

// fakeStore is an in-memory stand-in for the record store adapter. It
// implements every repository port so one instance can back all services
// in a test, the way the real client does in main.
type fakeStore struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	categories   map[string]domain.Category
	transactions map[string]domain.Transaction
	users        map[string]domain.User
	tokens       map[string]domain.RefreshToken
	nextID       int

	// err, when set, is returned by every operation.
	err error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     make(map[string]domain.Account),
		categories:   make(map[string]domain.Category),
		transactions: make(map[string]domain.Transaction),
		users:        make(map[string]domain.User),
		tokens:       make(map[string]domain.RefreshToken),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// --- AccountStore ---

func (f *fakeStore) ListAccounts(_ context.Context, userID string) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAccount(_ context.Context, userID, accountID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[accountID]
	if !ok || (userID != "" && a.UserID != userID) {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	return &a, nil
}

func (f *fakeStore) CreateAccount(_ context.Context, userID string, draft *domain.AccountDraft) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a := domain.Account{
		ID:       f.id("acct"),
		UserID:   userID,
		Name:     draft.Name,
		Type:     draft.Type,
		Balance:  draft.Balance,
		Currency: draft.Currency,
	}
	f.accounts[a.ID] = a
	return &a, nil
}

func (f *fakeStore) UpdateAccount(_ context.Context, accountID string, draft *domain.AccountDraft) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	a.Name, a.Type, a.Balance, a.Currency = draft.Name, draft.Type, draft.Balance, draft.Currency
	f.accounts[accountID] = a
	return &a, nil
}

func (f *fakeStore) DeleteAccount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.accounts, accountID)
	return nil
}

// --- CategoryStore ---

func (f *fakeStore) ListCategories(_ context.Context, userID string) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, userID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := domain.Category{ID: f.id("cat"), UserID: userID, Name: draft.Name, ParentID: draft.ParentID}
	f.categories[c.ID] = c
	return &c, nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, categoryID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.categories[categoryID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	c.Name, c.ParentID = draft.Name, draft.ParentID
	f.categories[categoryID] = c
	return &c, nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, categoryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.categories, categoryID)
	return nil
}

// --- TransactionStore ---

func (f *fakeStore) ListTransactions(_ context.Context, userID string) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
			continue
		}
		if tx.Shared {
			for _, p := range tx.SharedWith {
				if p.UserID == userID {
					out = append(out, tx)
					break
				}
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, transactionID string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	tx, ok := f.transactions[transactionID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	return &tx, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	created := *tx
	created.ID = f.id("tx")
	f.transactions[created.ID] = created
	return &created, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, transactionID string, tx *domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.transactions[transactionID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	updated := *tx
	updated.ID = transactionID
	f.transactions[transactionID] = updated
	return &updated, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.transactions, transactionID)
	return nil
}

// --- UserStore ---

func (f *fakeStore) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (f *fakeStore) CreateUser(_ context.Context, email, passwordHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := domain.User{ID: f.id("user"), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[u.ID] = u
	return &u, nil
}

// --- AuthStore ---

func (f *fakeStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tokens[tokenHash] = domain.RefreshToken{
		ID:        f.id("rt"),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: ""}
	}
	return &t, nil
}

func (f *fakeStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if t, ok := f.tokens[tokenHash]; ok {
		t.Revoked = true
		f.tokens[tokenHash] = t
	}
	return nil
}

func (f *fakeStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for hash, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
			f.tokens[hash] = t
		}
	}
	return nil
}
