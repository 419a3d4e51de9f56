package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/category"
	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/port"
)

var categoryTracer = otel.Tracer("service/categories")

// CategoryNode is one node of the rendered category tree.
type CategoryNode struct {
	Category domain.Category   `json:"category"`
	Children []domain.Category `json:"children"`
}

// CategoryService manages the two-level category hierarchy.
type CategoryService struct {
	categories   port.CategoryStore
	transactions port.TransactionStore
	logger       *zap.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories port.CategoryStore, transactions port.TransactionStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories:   categories,
		transactions: transactions,
		logger:       logger,
	}
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	return s.categories.ListCategories(ctx, userID)
}

// Tree returns the user's categories as roots with their children, roots
// sorted by name.
func (s *CategoryService) Tree(ctx context.Context, userID string) ([]CategoryNode, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Tree")
	defer span.End()

	cats, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	tree := category.New(cats)
	roots := tree.Roots()
	nodes := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, CategoryNode{
			Category: root,
			Children: tree.ChildrenOf(root.ID),
		})
	}
	return nodes, nil
}

func (s *CategoryService) Create(ctx context.Context, userID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Create")
	defer span.End()

	if strings.TrimSpace(draft.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	cats, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	tree := category.New(cats)
	if err := tree.ValidateRelation(domain.Category{UserID: userID, ParentID: draft.ParentID}); err != nil {
		return nil, err
	}

	return s.categories.CreateCategory(ctx, userID, draft)
}

func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, draft *domain.CategoryDraft) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Update")
	defer span.End()

	if strings.TrimSpace(draft.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	cats, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	tree := category.New(cats)
	if _, ok := tree.Get(categoryID); !ok {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	if err := tree.ValidateRelation(domain.Category{ID: categoryID, UserID: userID, ParentID: draft.ParentID}); err != nil {
		return nil, err
	}
	// A root with children cannot become a child: its children would end
	// up three levels deep.
	if draft.ParentID != "" {
		if children := tree.ChildrenOf(categoryID); len(children) > 0 {
			return nil, &domain.ErrInvalidCategoryRelation{CategoryID: categoryID, Reason: "category with children cannot be nested under a parent"}
		}
	}

	return s.categories.UpdateCategory(ctx, categoryID, draft)
}

// Delete removes a category. It refuses while children exist and clears
// the category from any transactions that referenced it.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Delete")
	defer span.End()

	cats, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	tree := category.New(cats)
	if _, ok := tree.Get(categoryID); !ok {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	if children := tree.ChildrenOf(categoryID); len(children) > 0 {
		return &domain.ErrCategoryHasChildren{CategoryID: categoryID, Children: len(children)}
	}

	// Detach before delete so transactions fall back to uncategorized.
	txs, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return err
	}
	for i := range txs {
		if txs[i].CategoryID != categoryID || txs[i].UserID != userID {
			continue
		}
		detached := txs[i]
		detached.CategoryID = ""
		if _, err := s.transactions.UpdateTransaction(ctx, detached.ID, &detached); err != nil {
			return err
		}
	}

	if err := s.categories.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	s.logger.Info("category deleted",
		zap.String("category_id", categoryID),
		zap.String("user_id", userID),
	)
	return nil
}
