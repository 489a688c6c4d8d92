package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending           TransactionStatus = "PENDING"
	StatusProcessing        TransactionStatus = "PROCESSING"
	StatusSuccessful        TransactionStatus = "SUCCESSFUL"
	StatusFailed            TransactionStatus = "FAILED"
	StatusInsufficientFunds TransactionStatus = "INSUFFICIENT_FUNDS"
)

// ParseTransactionStatus maps a status string to its enum value.
func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	switch TransactionStatus(s) {
	case StatusPending, StatusProcessing, StatusSuccessful, StatusFailed, StatusInsufficientFunds:
		return TransactionStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no further status transitions are allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusFailed || s == StatusInsufficientFunds
}

type Transaction struct {
	ID                       uuid.UUID         `json:"id"`
	Reference                string            `json:"reference"`
	SourceAccountNumber      string            `json:"source_account_number"`
	DestinationAccountNumber string            `json:"destination_account_number"`
	Amount                   decimal.Decimal   `json:"amount"`
	TransactionFee           decimal.Decimal   `json:"transaction_fee"`
	BilledAmount             decimal.Decimal   `json:"billed_amount"`
	Description              string            `json:"description,omitempty"`
	Status                   TransactionStatus `json:"status"`
	StatusMessage            string            `json:"status_message"`
	CommissionWorthy         bool              `json:"commission_worthy"`
	Commission               decimal.Decimal   `json:"commission"`
	CreatedAt                time.Time         `json:"created_at"`
	UpdatedAt                time.Time         `json:"updated_at"`
}

// TransactionFilter narrows paginated transaction queries. Nil/zero fields
// are ignored. Page is 1-based.
type TransactionFilter struct {
	Status        *TransactionStatus
	AccountNumber string
	StartTime     *time.Time
	EndTime       *time.Time
	Page          int
	Size          int
}

type TransactionPage struct {
	Content       []*Transaction `json:"content"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
}

type TransactionRepository interface {
	CreateTransaction(tx *Transaction) error
	UpdateTransaction(tx *Transaction) error
	FindSuccessfulWithoutCommission() ([]*Transaction, error)
	FindByCreatedAtBetween(start, end time.Time) ([]*Transaction, error)
	FindWithFilters(filter TransactionFilter) (*TransactionPage, error)
}
