package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"money-transfer-service/internal/cache"
	"money-transfer-service/internal/domain"
)

type SummaryService struct {
	store  domain.Store
	cache  *cache.ViewCache[domain.TransactionSummary]
	logger *slog.Logger
}

// NewSummaryService builds the aggregator. viewCache may be nil, in which
// case every read goes to the database.
func NewSummaryService(store domain.Store, viewCache *cache.ViewCache[domain.TransactionSummary], logger *slog.Logger) *SummaryService {
	return &SummaryService{
		store:  store,
		cache:  viewCache,
		logger: logger,
	}
}

// Generate recomputes the summary for the calendar day of date from the
// transactions created that day and replaces any previously stored row.
func (s *SummaryService) Generate(date time.Time) (*domain.TransactionSummary, error) {
	day := truncateToDay(date)
	startOfDay := day
	endOfDay := day.AddDate(0, 0, 1).Add(-time.Nanosecond)

	s.logger.Info("Generating transaction summary", "date", day.Format("2006-01-02"))

	transactions, err := s.store.Transactions().FindByCreatedAtBetween(startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}

	summary := buildSummary(day, transactions)

	if err := s.store.Summaries().SaveSummary(summary); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(context.Background(), summaryCacheKey(day), summary)
	}

	return summary, nil
}

// GetOrBuild returns the stored summary for the date, building and caching
// one on first access. Transfers committed after a summary was built are not
// reflected until the next Rebuild.
func (s *SummaryService) GetOrBuild(date time.Time) (*domain.TransactionSummary, error) {
	day := truncateToDay(date)

	if s.cache != nil {
		if summary, ok := s.cache.Get(context.Background(), summaryCacheKey(day)); ok {
			return summary, nil
		}
	}

	summary, err := s.store.Summaries().GetSummaryByDate(day)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		if s.cache != nil {
			s.cache.Set(context.Background(), summaryCacheKey(day), summary)
		}
		return summary, nil
	}

	return s.Generate(day)
}

// Rebuild forces a fresh aggregation regardless of any stored summary.
func (s *SummaryService) Rebuild(date time.Time) (*domain.TransactionSummary, error) {
	return s.Generate(date)
}

// buildSummary computes the aggregate buckets. "Failed" means not
// successful: FAILED, INSUFFICIENT_FUNDS and rows stuck in PROCESSING all
// land in the failed count. Monetary totals sum successful rows only, except
// commission which sums every commission-worthy row.
func buildSummary(day time.Time, transactions []*domain.Transaction) *domain.TransactionSummary {
	var successful int64
	totalAmount := decimal.Zero
	totalFees := decimal.Zero
	totalCommission := decimal.Zero

	for _, tx := range transactions {
		if tx.Status == domain.StatusSuccessful {
			successful++
			totalAmount = totalAmount.Add(tx.Amount)
			totalFees = totalFees.Add(tx.TransactionFee)
		}
		if tx.CommissionWorthy {
			totalCommission = totalCommission.Add(tx.Commission)
		}
	}

	total := int64(len(transactions))

	return &domain.TransactionSummary{
		Date:                   day,
		TotalTransactions:      total,
		SuccessfulTransactions: successful,
		FailedTransactions:     total - successful,
		TotalAmount:            totalAmount,
		TotalFees:              totalFees,
		TotalCommission:        totalCommission,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func summaryCacheKey(day time.Time) string {
	return "summary:" + day.Format("2006-01-02")
}
