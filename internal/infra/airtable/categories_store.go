package airtable

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
)

// ============================================================
// Categories — CRUD over the Categories table
// ============================================================

func categoryFromRecord(rec *record) *domain.Category {
	return &domain.Category{
		ID:       rec.ID,
		UserID:   fieldLink(rec.Fields, "user"),
		Name:     fieldString(rec.Fields, "name"),
		ParentID: fieldLink(rec.Fields, "parent"),
	}
}

func categoryFields(userID string, draft *domain.CategoryDraft) map[string]any {
	fields := map[string]any{
		"name": draft.Name,
	}
	if userID != "" {
		fields["user"] = []string{userID}
	}
	if draft.ParentID != "" {
		fields["parent"] = []string{draft.ParentID}
	} else {
		fields["parent"] = []string{}
	}
	return fields
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Airtable.ListCategories")
	defer span.End()

	q := url.Values{}
	q.Set("filterByFormula", userFormula(userID))

	var recs []record
	err := c.execute(ctx, tableCategories, func() error {
		var err error
		recs, err = c.listAll(ctx, tableCategories, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(recs))
	for i := range recs {
		categories = append(categories, *categoryFromRecord(&recs[i]))
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, userID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Airtable.CreateCategory")
	defer span.End()

	var rec *record
	err := c.execute(ctx, tableCategories, func() error {
		var err error
		rec, err = c.createRecord(ctx, tableCategories, categoryFields(userID, draft))
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("recordstore: category created",
		zap.String("category_id", rec.ID),
		zap.String("user_id", userID),
	)
	return categoryFromRecord(rec), nil
}

func (c *Client) UpdateCategory(ctx context.Context, categoryID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Airtable.UpdateCategory")
	defer span.End()

	var rec *record
	err := c.execute(ctx, tableCategories, func() error {
		var err error
		rec, err = c.patchRecord(ctx, tableCategories, categoryID, categoryFields("", draft))
		return err
	})
	if errors.Is(err, errRecordNotFound) {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	if err != nil {
		return nil, err
	}
	return categoryFromRecord(rec), nil
}

func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Airtable.DeleteCategory")
	defer span.End()

	err := c.execute(ctx, tableCategories, func() error {
		return c.deleteRecord(ctx, tableCategories, categoryID)
	})
	if errors.Is(err, errRecordNotFound) {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return err
}
