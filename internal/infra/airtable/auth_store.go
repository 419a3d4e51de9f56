package airtable

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
)

// ============================================================
// Refresh tokens — persisted hashed, never raw
// ============================================================

func refreshTokenFromRecord(rec *record) *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        rec.ID,
		UserID:    fieldLink(rec.Fields, "user"),
		TokenHash: fieldString(rec.Fields, "token_hash"),
		ExpiresAt: fieldTime(rec.Fields, "expires_at"),
		Revoked:   fieldBool(rec.Fields, "revoked"),
	}
}

func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Airtable.StoreRefreshToken")
	defer span.End()

	return c.execute(ctx, tableRefreshTokens, func() error {
		_, err := c.createRecord(ctx, tableRefreshTokens, map[string]any{
			"user":       []string{userID},
			"token_hash": tokenHash,
			"expires_at": expiresAt.UTC().Format(time.RFC3339),
			"revoked":    false,
		})
		return err
	})
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Airtable.GetRefreshToken")
	defer span.End()

	q := url.Values{}
	q.Set("filterByFormula", tokenHashFormula(tokenHash))
	q.Set("maxRecords", "1")

	var recs []record
	err := c.execute(ctx, tableRefreshTokens, func() error {
		var err error
		recs, err = c.listAll(ctx, tableRefreshTokens, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: ""}
	}
	return refreshTokenFromRecord(&recs[0]), nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Airtable.RevokeRefreshToken")
	defer span.End()

	token, err := c.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return err
	}

	return c.execute(ctx, tableRefreshTokens, func() error {
		_, err := c.patchRecord(ctx, tableRefreshTokens, token.ID, map[string]any{
			"revoked": true,
		})
		return err
	})
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Airtable.RevokeAllRefreshTokens")
	defer span.End()

	q := url.Values{}
	q.Set("filterByFormula", userFormula(userID))

	var recs []record
	err := c.execute(ctx, tableRefreshTokens, func() error {
		var err error
		recs, err = c.listAll(ctx, tableRefreshTokens, q)
		return err
	})
	if err != nil {
		return err
	}

	for i := range recs {
		if fieldBool(recs[i].Fields, "revoked") {
			continue
		}
		id := recs[i].ID
		err := c.execute(ctx, tableRefreshTokens, func() error {
			_, err := c.patchRecord(ctx, tableRefreshTokens, id, map[string]any{
				"revoked": true,
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	c.logger.Info("recordstore: refresh tokens revoked",
		zap.String("user_id", userID),
		zap.Int("count", len(recs)),
	)
	return nil
}
