package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/errors"
)

type summaryRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewSummaryRepository(db SQLExecutor, logger *slog.Logger) domain.SummaryRepository {
	return &summaryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *summaryRepository) GetSummaryByDate(date time.Time) (*domain.TransactionSummary, error) {
	query := `
		SELECT date, total_transactions, successful_transactions, failed_transactions,
		       total_amount, total_fees, total_commission, updated_at
		FROM transaction_summaries WHERE date = $1
	`

	var summary domain.TransactionSummary
	var amountStr, feesStr, commissionStr string

	err := r.db.QueryRow(query, date.Format("2006-01-02")).Scan(
		&summary.Date,
		&summary.TotalTransactions,
		&summary.SuccessfulTransactions,
		&summary.FailedTransactions,
		&amountStr,
		&feesStr,
		&commissionStr,
		&summary.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get summary", "date", date.Format("2006-01-02"), "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get summary").WithDetails(err.Error())
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&summary.TotalAmount, amountStr},
		{&summary.TotalFees, feesStr},
		{&summary.TotalCommission, commissionStr},
	} {
		d, err := decimal.NewFromString(field.src)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse summary totals").WithDetails(err.Error())
		}
		*field.dst = d
	}

	return &summary, nil
}

// SaveSummary overwrites the full row for the summary's date. Regeneration
// replaces prior values, it never accumulates into them.
func (r *summaryRepository) SaveSummary(summary *domain.TransactionSummary) error {
	query := `
		INSERT INTO transaction_summaries
		(date, total_transactions, successful_transactions, failed_transactions,
		 total_amount, total_fees, total_commission, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date) DO UPDATE SET
			total_transactions = EXCLUDED.total_transactions,
			successful_transactions = EXCLUDED.successful_transactions,
			failed_transactions = EXCLUDED.failed_transactions,
			total_amount = EXCLUDED.total_amount,
			total_fees = EXCLUDED.total_fees,
			total_commission = EXCLUDED.total_commission,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := r.db.Exec(
		query,
		summary.Date.Format("2006-01-02"),
		summary.TotalTransactions,
		summary.SuccessfulTransactions,
		summary.FailedTransactions,
		summary.TotalAmount.String(),
		summary.TotalFees.String(),
		summary.TotalCommission.String(),
		now,
	)

	if err != nil {
		r.logger.Error("Failed to save summary", "date", summary.Date.Format("2006-01-02"), "error", err)
		return errors.NewAppError(errors.InternalError, "failed to save summary").WithDetails(err.Error())
	}

	summary.UpdatedAt = now
	r.logger.Info("Summary saved", "date", summary.Date.Format("2006-01-02"))
	return nil
}
