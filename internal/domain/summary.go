package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionSummary is a derived per-day aggregate. It is rebuilt from the
// transaction table, never treated as a source of truth.
type TransactionSummary struct {
	Date                   time.Time       `json:"date"`
	TotalTransactions      int64           `json:"total_transactions"`
	SuccessfulTransactions int64           `json:"successful_transactions"`
	FailedTransactions     int64           `json:"failed_transactions"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	TotalFees              decimal.Decimal `json:"total_fees"`
	TotalCommission        decimal.Decimal `json:"total_commission"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

type SummaryRepository interface {
	// GetSummaryByDate returns (nil, nil) when no summary exists for the date.
	GetSummaryByDate(date time.Time) (*TransactionSummary, error)
	// SaveSummary replaces any existing row for the summary's date.
	SaveSummary(summary *TransactionSummary) error
}
