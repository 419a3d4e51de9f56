package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmelton/splitbook/internal/csvimport"
	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/infra/resilience"
	"github.com/dmelton/splitbook/internal/port"
)

var importTracer = otel.Tracer("service/import")

// ImportService runs CSV import batches. Parsing and reconciliation are
// pure; only the final commit writes. Batches pass through a bulkhead so
// concurrent large uploads cannot starve the record store.
type ImportService struct {
	transactions port.TransactionStore
	accounts     port.AccountStore
	categories   port.CategoryStore
	summaries    port.Cache[domain.SummaryReport]
	bulkhead     *resilience.Bulkhead
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewImportService creates a new import service.
func NewImportService(
	transactions port.TransactionStore,
	accounts port.AccountStore,
	categories port.CategoryStore,
	summaries port.Cache[domain.SummaryReport],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		summaries:    summaries,
		bulkhead:     bulkhead,
		metrics:      metrics,
		logger:       logger,
	}
}

// ImportCSV parses the uploaded file, reconciles every row against the
// user's accounts and categories, and commits the resulting drafts unless
// dryRun is set. The account is derived from the file name once per batch;
// when it cannot be resolved the batch halts without writing, returning
// ErrAccountUnresolved alongside a result naming the missing account, and
// the caller re-submits the same file after creating it.
func (s *ImportService) ImportCSV(ctx context.Context, userID, filename string, file io.Reader, dryRun bool) (*domain.ImportResult, error) {
	ctx, span := importTracer.Start(ctx, "ImportService.ImportCSV")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("dry_run", dryRun),
	)

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	accountName := csvimport.AccountNameFromFile(filename)
	if accountName == "" {
		return nil, &domain.ErrValidation{Field: "file", Message: "file name must end with the account name"}
	}

	rows, parseSkipped, err := csvimport.Parse(file)
	if err != nil {
		return nil, err
	}

	var (
		accounts   []domain.Account
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.ListAccounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := csvimport.Reconcile(rows, csvimport.Context{
		UserID:      userID,
		AccountName: accountName,
		Accounts:    accounts,
		Categories:  categories,
	})
	if res.UnresolvedAccountName != "" {
		s.metrics.IncrImportBatch("halted")
		s.logger.Warn("import halted: account not found",
			zap.String("user_id", userID),
			zap.String("account_name", res.UnresolvedAccountName),
		)
		// The partial result travels with the error so the caller can
		// report which account to create before re-submitting.
		return &domain.ImportResult{
			BatchID:               uuid.New().String(),
			DryRun:                dryRun,
			UnresolvedAccountName: res.UnresolvedAccountName,
		}, &domain.ErrAccountUnresolved{AccountName: res.UnresolvedAccountName}
	}

	result := &domain.ImportResult{
		BatchID: uuid.New().String(),
		Skipped: parseSkipped + res.Skipped,
		DryRun:  dryRun,
	}

	if dryRun {
		result.Created = len(res.Drafts)
		s.metrics.IncrImportBatch("dry_run")
		return result, nil
	}

	for i := range res.Drafts {
		created, err := s.transactions.CreateTransaction(ctx, &res.Drafts[i])
		if err != nil {
			s.metrics.IncrImportBatch("failed")
			s.metrics.AddImportRows("created", result.Created)
			return nil, fmt.Errorf("commit row %d of batch %s: %w", i+1, result.BatchID, err)
		}
		result.Created++
		s.invalidateSummaries(created)
	}

	s.metrics.IncrImportBatch("committed")
	s.metrics.AddImportRows("created", result.Created)
	s.metrics.AddImportRows("skipped", result.Skipped)

	s.logger.Info("import batch committed",
		zap.String("batch_id", result.BatchID),
		zap.String("user_id", userID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ImportService) invalidateSummaries(tx *domain.Transaction) {
	s.summaries.Delete(summaryCacheKey(tx.UserID))
	for _, p := range tx.SharedWith {
		s.summaries.Delete(summaryCacheKey(p.UserID))
	}
}
