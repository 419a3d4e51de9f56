package airtable

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
)

// ============================================================
// Accounts — CRUD over the Accounts table
// ============================================================

func accountFromRecord(rec *record) *domain.Account {
	created := rec.CreatedTime
	if t := fieldTime(rec.Fields, "created_at"); !t.IsZero() {
		created = t
	}
	return &domain.Account{
		ID:        rec.ID,
		UserID:    fieldLink(rec.Fields, "user"),
		Name:      fieldString(rec.Fields, "name"),
		Type:      fieldString(rec.Fields, "type"),
		Balance:   fieldDecimal(rec.Fields, "balance"),
		Currency:  fieldString(rec.Fields, "currency"),
		CreatedAt: created,
	}
}

func accountFields(userID string, draft *domain.AccountDraft) map[string]any {
	fields := map[string]any{
		"name":     draft.Name,
		"type":     draft.Type,
		"balance":  draft.Balance.InexactFloat64(),
		"currency": draft.Currency,
	}
	if userID != "" {
		fields["user"] = []string{userID}
	}
	return fields
}

func (c *Client) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Airtable.ListAccounts")
	defer span.End()

	q := url.Values{}
	q.Set("filterByFormula", userFormula(userID))
	q.Set("sort[0][field]", "name")
	q.Set("sort[0][direction]", "asc")

	var recs []record
	err := c.execute(ctx, tableAccounts, func() error {
		var err error
		recs, err = c.listAll(ctx, tableAccounts, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(recs))
	for i := range recs {
		accounts = append(accounts, *accountFromRecord(&recs[i]))
	}
	return accounts, nil
}

func (c *Client) GetAccount(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Airtable.GetAccount")
	defer span.End()

	rec, err := c.getRecord(ctx, tableAccounts, accountID)
	if errors.Is(err, errRecordNotFound) {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	if err != nil {
		return nil, err
	}

	acct := accountFromRecord(rec)
	if userID != "" && acct.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	return acct, nil
}

func (c *Client) CreateAccount(ctx context.Context, userID string, draft *domain.AccountDraft) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Airtable.CreateAccount")
	defer span.End()

	fields := accountFields(userID, draft)
	fields["created_at"] = time.Now().UTC().Format(time.RFC3339)

	var rec *record
	err := c.execute(ctx, tableAccounts, func() error {
		var err error
		rec, err = c.createRecord(ctx, tableAccounts, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("recordstore: account created",
		zap.String("account_id", rec.ID),
		zap.String("user_id", userID),
	)
	return accountFromRecord(rec), nil
}

func (c *Client) UpdateAccount(ctx context.Context, accountID string, draft *domain.AccountDraft) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Airtable.UpdateAccount")
	defer span.End()

	var rec *record
	err := c.execute(ctx, tableAccounts, func() error {
		var err error
		rec, err = c.patchRecord(ctx, tableAccounts, accountID, accountFields("", draft))
		return err
	})
	if errors.Is(err, errRecordNotFound) {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	if err != nil {
		return nil, err
	}
	return accountFromRecord(rec), nil
}

func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	ctx, span := tracer.Start(ctx, "Airtable.DeleteAccount")
	defer span.End()

	err := c.execute(ctx, tableAccounts, func() error {
		return c.deleteRecord(ctx, tableAccounts, accountID)
	})
	if errors.Is(err, errRecordNotFound) {
		return &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	return err
}
