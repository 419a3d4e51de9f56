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
// Users — lookup and registration
// ============================================================

func userFromRecord(rec *record) *domain.User {
	created := rec.CreatedTime
	if t := fieldTime(rec.Fields, "created_at"); !t.IsZero() {
		created = t
	}
	return &domain.User{
		ID:           rec.ID,
		Email:        fieldString(rec.Fields, "email"),
		PasswordHash: fieldString(rec.Fields, "password_hash"),
		CreatedAt:    created,
	}
}

func (c *Client) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Airtable.GetUserByID")
	defer span.End()

	rec, err := c.getRecord(ctx, tableUsers, userID)
	if errors.Is(err, errRecordNotFound) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	if err != nil {
		return nil, err
	}
	return userFromRecord(rec), nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Airtable.GetUserByEmail")
	defer span.End()

	q := url.Values{}
	q.Set("filterByFormula", emailFormula(email))
	q.Set("maxRecords", "1")

	var recs []record
	err := c.execute(ctx, tableUsers, func() error {
		var err error
		recs, err = c.listAll(ctx, tableUsers, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}
	return userFromRecord(&recs[0]), nil
}

func (c *Client) CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Airtable.CreateUser")
	defer span.End()

	var rec *record
	err := c.execute(ctx, tableUsers, func() error {
		var err error
		rec, err = c.createRecord(ctx, tableUsers, map[string]any{
			"email":         email,
			"password_hash": passwordHash,
			"created_at":    time.Now().UTC().Format(time.RFC3339),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("recordstore: user created", zap.String("user_id", rec.ID))
	return userFromRecord(rec), nil
}
