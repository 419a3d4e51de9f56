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
// Transactions — CRUD over the Transactions table
// ============================================================

func transactionFromRecord(rec *record) *domain.Transaction {
	tx := &domain.Transaction{
		ID:          rec.ID,
		UserID:      fieldLink(rec.Fields, "user"),
		AccountID:   fieldLink(rec.Fields, "account"),
		CategoryID:  fieldLink(rec.Fields, "category"),
		Amount:      fieldDecimal(rec.Fields, "amount"),
		Type:        fieldString(rec.Fields, "type"),
		Date:        fieldTime(rec.Fields, "date"),
		Description: fieldString(rec.Fields, "description"),
		Notes:       fieldString(rec.Fields, "notes"),
		Shared:      fieldBool(rec.Fields, "shared"),
	}
	for _, id := range fieldLinks(rec.Fields, "shared_with") {
		tx.SharedWith = append(tx.SharedWith, domain.Participant{UserID: id})
	}
	return tx
}

func transactionFields(tx *domain.Transaction) map[string]any {
	fields := map[string]any{
		"amount":      tx.Amount.InexactFloat64(),
		"type":        tx.Type,
		"date":        tx.Date.Format("2006-01-02"),
		"description": tx.Description,
		"notes":       tx.Notes,
		"shared":      tx.Shared,
	}
	if tx.UserID != "" {
		fields["user"] = []string{tx.UserID}
	}
	if tx.AccountID != "" {
		fields["account"] = []string{tx.AccountID}
	}
	if tx.CategoryID != "" {
		fields["category"] = []string{tx.CategoryID}
	} else {
		fields["category"] = []string{}
	}
	participants := make([]string, 0, len(tx.SharedWith))
	for _, p := range tx.SharedWith {
		participants = append(participants, p.UserID)
	}
	fields["shared_with"] = participants
	return fields
}

// ListTransactions returns every transaction the user owns plus every
// shared transaction that names them as a participant, newest first.
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Airtable.ListTransactions")
	defer span.End()

	q := url.Values{}
	q.Set("filterByFormula", visibleToFormula(userID))
	q.Set("sort[0][field]", "date")
	q.Set("sort[0][direction]", "desc")

	var recs []record
	err := c.execute(ctx, tableTransactions, func() error {
		var err error
		recs, err = c.listAll(ctx, tableTransactions, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(recs))
	for i := range recs {
		txs = append(txs, *transactionFromRecord(&recs[i]))
	}
	return txs, nil
}

func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Airtable.GetTransaction")
	defer span.End()

	rec, err := c.getRecord(ctx, tableTransactions, transactionID)
	if errors.Is(err, errRecordNotFound) {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	if err != nil {
		return nil, err
	}
	return transactionFromRecord(rec), nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Airtable.CreateTransaction")
	defer span.End()

	fields := transactionFields(tx)
	fields["created_at"] = time.Now().UTC().Format(time.RFC3339)

	var rec *record
	err := c.execute(ctx, tableTransactions, func() error {
		var err error
		rec, err = c.createRecord(ctx, tableTransactions, fields)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("recordstore: transaction created",
		zap.String("transaction_id", rec.ID),
		zap.String("user_id", tx.UserID),
		zap.String("type", tx.Type),
	)
	return transactionFromRecord(rec), nil
}

func (c *Client) UpdateTransaction(ctx context.Context, transactionID string, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Airtable.UpdateTransaction")
	defer span.End()

	fields := transactionFields(tx)
	delete(fields, "user") // ownership never changes on update

	var rec *record
	err := c.execute(ctx, tableTransactions, func() error {
		var err error
		rec, err = c.patchRecord(ctx, tableTransactions, transactionID, fields)
		return err
	})
	if errors.Is(err, errRecordNotFound) {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	if err != nil {
		return nil, err
	}
	return transactionFromRecord(rec), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Airtable.DeleteTransaction")
	defer span.End()

	err := c.execute(ctx, tableTransactions, func() error {
		return c.deleteRecord(ctx, tableTransactions, transactionID)
	})
	if errors.Is(err, errRecordNotFound) {
		return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	return err
}
