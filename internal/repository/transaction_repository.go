package repository

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/errors"
)

const transactionColumns = `id, reference, source_account_number, destination_account_number,
		amount, transaction_fee, billed_amount, description, status, status_message,
		commission_worthy, commission, created_at, updated_at`

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) CreateTransaction(tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, reference, source_account_number, destination_account_number, amount,
		 transaction_fee, billed_amount, description, status, status_message,
		 commission_worthy, commission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	_, err := r.db.Exec(
		query,
		tx.ID,
		tx.Reference,
		tx.SourceAccountNumber,
		tx.DestinationAccountNumber,
		tx.Amount.String(),
		tx.TransactionFee.String(),
		tx.BilledAmount.String(),
		tx.Description,
		string(tx.Status),
		tx.StatusMessage,
		tx.CommissionWorthy,
		tx.Commission.String(),
		now,
		now,
	)

	if err != nil {
		r.logger.Error("Failed to create transaction",
			"reference", tx.Reference,
			"source_account_number", tx.SourceAccountNumber,
			"destination_account_number", tx.DestinationAccountNumber,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to create transaction").WithDetails(err.Error())
	}

	tx.CreatedAt = now
	tx.UpdatedAt = now
	r.logger.Info("Transaction created", "transaction_id", tx.ID, "reference", tx.Reference)
	return nil
}

// UpdateTransaction persists the mutable fields only; identity, parties and
// amounts are immutable after creation.
func (r *transactionRepository) UpdateTransaction(tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, status_message = $2, commission_worthy = $3, commission = $4, updated_at = $5
		WHERE id = $6
	`

	now := time.Now()
	_, err := r.db.Exec(
		query,
		string(tx.Status),
		tx.StatusMessage,
		tx.CommissionWorthy,
		tx.Commission.String(),
		now,
		tx.ID,
	)

	if err != nil {
		r.logger.Error("Failed to update transaction",
			"transaction_id", tx.ID, "status", tx.Status, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update transaction").WithDetails(err.Error())
	}

	tx.UpdatedAt = now
	r.logger.Info("Transaction updated", "transaction_id", tx.ID, "status", tx.Status)
	return nil
}

func (r *transactionRepository) FindSuccessfulWithoutCommission() ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND commission_worthy = false
		ORDER BY created_at
	`

	return r.queryTransactions(query, string(domain.StatusSuccessful))
}

func (r *transactionRepository) FindByCreatedAtBetween(start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at
	`

	return r.queryTransactions(query, start, end)
}

func (r *transactionRepository) FindWithFilters(filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AccountNumber != "" {
		args = append(args, filter.AccountNumber)
		conditions = append(conditions, fmt.Sprintf(
			"(source_account_number = $%d OR destination_account_number = $%d)", len(args), len(args)))
	}
	if filter.StartTime != nil {
		args = append(args, *filter.StartTime)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndTime != nil {
		args = append(args, *filter.EndTime)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to count transactions").WithDetails(err.Error())
	}

	offset := (filter.Page - 1) * filter.Size
	args = append(args, filter.Size, offset)
	query := fmt.Sprintf(`
		SELECT `+transactionColumns+`
		FROM transactions%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	transactions, err := r.queryTransactions(query, args...)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Size) - 1) / int64(filter.Size))

	return &domain.TransactionPage{
		Content:       transactions,
		TotalElements: total,
		TotalPages:    totalPages,
		Page:          filter.Page,
		Size:          filter.Size,
		First:         filter.Page == 1,
		Last:          filter.Page >= totalPages,
	}, nil
}

func (r *transactionRepository) queryTransactions(query string, args ...interface{}) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query transactions", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to query transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, errors.NewAppError(errors.InternalError, "failed to scan transaction").WithDetails(err.Error())
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to iterate transactions").WithDetails(err.Error())
	}

	return transactions, nil
}

func scanTransaction(scanner rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountStr, feeStr, billedStr, commissionStr, statusStr string

	err := scanner.Scan(
		&tx.ID,
		&tx.Reference,
		&tx.SourceAccountNumber,
		&tx.DestinationAccountNumber,
		&amountStr,
		&feeStr,
		&billedStr,
		&tx.Description,
		&statusStr,
		&tx.StatusMessage,
		&tx.CommissionWorthy,
		&commissionStr,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Status = domain.TransactionStatus(statusStr)

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&tx.Amount, amountStr},
		{&tx.TransactionFee, feeStr},
		{&tx.BilledAmount, billedStr},
		{&tx.Commission, commissionStr},
	} {
		d, err := decimal.NewFromString(field.src)
		if err != nil {
			return nil, err
		}
		*field.dst = d
	}

	return &tx, nil
}
