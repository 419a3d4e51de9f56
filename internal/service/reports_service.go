package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/port"
	"github.com/dmelton/splitbook/internal/settlement"
)

var reportTracer = otel.Tracer("service/reports")

// ReportService assembles the dashboard summary: balances, income and
// expense totals, and the shared-expense settlement. Results are cached
// per user; transaction and import writes invalidate the cache.
type ReportService struct {
	accounts     port.AccountStore
	transactions port.TransactionStore
	summaries    port.Cache[domain.SummaryReport]
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(
	accounts port.AccountStore,
	transactions port.TransactionStore,
	summaries port.Cache[domain.SummaryReport],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		accounts:     accounts,
		transactions: transactions,
		summaries:    summaries,
		metrics:      metrics,
		logger:       logger,
	}
}

// Summary computes the user's dashboard aggregate. Amounts accumulate at
// full precision and are rounded to 2 decimal places only here, at the
// presentation boundary.
func (s *ReportService) Summary(ctx context.Context, userID string) (*domain.SummaryReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if cached, ok := s.summaries.Get(summaryCacheKey(userID)); ok {
		s.metrics.IncrCacheHit("summary")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("summary")

	var (
		accounts []domain.Account
		txs      []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.ListAccounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions.ListTransactions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pos := settlement.SharedSettlement(userID, txs)
	report := domain.SummaryReport{
		UserID:        userID,
		TotalBalance:  round2(settlement.TotalBalance(accounts)),
		TotalIncome:   round2(settlement.TotalIncome(userID, txs)),
		TotalExpenses: round2(settlement.TotalExpenses(userID, txs)),
		Settlement: domain.Settlement{
			TotalShared: round2(pos.TotalShared),
			TotalPaid:   round2(pos.TotalPaid),
			TotalOwed:   round2(pos.TotalOwed),
			TotalOwedTo: round2(pos.TotalOwedTo),
			Net:         round2(pos.Net),
		},
		Accounts:     len(accounts),
		Transactions: len(txs),
	}

	s.summaries.Set(summaryCacheKey(userID), report)
	return &report, nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
