package service

import (
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/errors"
)

var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

const maxDescriptionLength = 150

type TransferService struct {
	store  domain.Store
	fees   FeeCalculator
	logger *slog.Logger
}

func NewTransferService(store domain.Store, fees FeeCalculator, logger *slog.Logger) *TransferService {
	return &TransferService{
		store:  store,
		fees:   fees,
		logger: logger,
	}
}

type TransferRequest struct {
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	Description              string
}

// ProcessTransfer moves funds between two accounts. Requests rejected during
// validation (bad input, unknown account, insufficient funds) return an error
// and persist nothing. Once the PROCESSING row is written, failures are
// captured in the returned transaction's terminal status instead of an error,
// with the balance mutation rolled back.
func (s *TransferService) ProcessTransfer(req *TransferRequest) (*domain.Transaction, error) {
	s.logger.Info("Processing transfer",
		"source_account_number", req.SourceAccountNumber,
		"destination_account_number", req.DestinationAccountNumber,
		"amount", req.Amount)

	if err := s.validateTransfer(req); err != nil {
		return nil, err
	}

	reference := uuid.New().String()

	source, err := s.store.Accounts().GetAccount(req.SourceAccountNumber)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Accounts().GetAccount(req.DestinationAccountNumber); err != nil {
		return nil, err
	}

	fee := s.fees.TransactionFee(req.Amount)
	billedAmount := req.Amount.Add(fee)

	if source.Balance.LessThan(billedAmount) {
		s.logger.Warn("Insufficient funds",
			"account_number", source.AccountNumber,
			"required", billedAmount,
			"available", source.Balance)
		return nil, errors.ErrInsufficientFunds
	}

	transaction := &domain.Transaction{
		ID:                       uuid.New(),
		Reference:                reference,
		SourceAccountNumber:      req.SourceAccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   req.Amount,
		TransactionFee:           fee,
		BilledAmount:             billedAmount,
		Description:              req.Description,
		Status:                   domain.StatusProcessing,
		StatusMessage:            "Transaction is being processed",
		Commission:               decimal.Zero,
	}

	if err := s.store.Transactions().CreateTransaction(transaction); err != nil {
		return nil, err
	}

	moveErr := s.store.WithTransaction(func(store domain.Store) error {
		return s.moveFunds(store, req, billedAmount)
	})

	switch {
	case moveErr == nil:
		transaction.Status = domain.StatusSuccessful
		transaction.StatusMessage = "Transfer completed successfully"
	case moveErr == errors.ErrInsufficientFunds:
		s.logger.Warn("Insufficient funds detected under lock", "reference", reference)
		transaction.Status = domain.StatusInsufficientFunds
		transaction.StatusMessage = "Insufficient funds in source account"
	default:
		s.logger.Error("Transfer failed during processing", "reference", reference, "error", moveErr)
		transaction.Status = domain.StatusFailed
		transaction.StatusMessage = "Processing error: " + moveErr.Error()
	}

	if err := s.store.Transactions().UpdateTransaction(transaction); err != nil {
		// The balances are settled at this point; the caller gets the real
		// outcome while the row stays PROCESSING until the next rebuild.
		s.logger.Error("Failed to finalize transaction status",
			"reference", reference, "status", transaction.Status, "error", err)
		return transaction, nil
	}

	s.logger.Info("Transfer finished", "reference", reference, "status", transaction.Status)
	return transaction, nil
}

// moveFunds runs inside one database transaction. Both rows are locked in
// ascending account-number order so that two transfers over the same pair of
// accounts cannot deadlock, then the debit lands before the credit.
func (s *TransferService) moveFunds(store domain.Store, req *TransferRequest, billedAmount decimal.Decimal) error {
	accounts := store.Accounts()

	first, second := req.SourceAccountNumber, req.DestinationAccountNumber
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*domain.Account, 2)
	for _, number := range []string{first, second} {
		account, err := accounts.GetAccountForUpdate(number)
		if err != nil {
			return err
		}
		locked[number] = account
	}

	source := locked[req.SourceAccountNumber]
	dest := locked[req.DestinationAccountNumber]

	// Balance may have moved between the unlocked pre-check and lock
	// acquisition; re-check before mutating anything.
	if source.Balance.LessThan(billedAmount) {
		return errors.ErrInsufficientFunds
	}

	newSourceBalance := source.Balance.Sub(billedAmount)
	if err := accounts.UpdateAccountBalance(source.AccountNumber, newSourceBalance); err != nil {
		return err
	}
	s.logger.Info("Debited source account",
		"account_number", source.AccountNumber,
		"billed_amount", billedAmount,
		"amount", req.Amount)

	newDestBalance := dest.Balance.Add(req.Amount)
	if err := accounts.UpdateAccountBalance(dest.AccountNumber, newDestBalance); err != nil {
		return err
	}
	s.logger.Info("Credited destination account",
		"account_number", dest.AccountNumber,
		"amount", req.Amount)

	return nil
}

func (s *TransferService) validateTransfer(req *TransferRequest) error {
	if !accountNumberPattern.MatchString(req.SourceAccountNumber) ||
		!accountNumberPattern.MatchString(req.DestinationAccountNumber) {
		return errors.ErrInvalidAccountNumber
	}
	if req.SourceAccountNumber == req.DestinationAccountNumber {
		return errors.ErrSameAccountTransfer
	}
	if !req.Amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if len(req.Description) > maxDescriptionLength {
		return errors.NewAppErrorf(errors.InvalidInput, "description must not exceed %d characters", maxDescriptionLength)
	}
	return nil
}

// ListTransactions returns a page of transactions matching the filter,
// newest first. Page defaults to 1, size to 10 and is clamped to 100.
func (s *TransferService) ListTransactions(filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Size < 1 {
		filter.Size = 10
	}
	if filter.Size > 100 {
		filter.Size = 100
	}
	if filter.AccountNumber != "" && !accountNumberPattern.MatchString(filter.AccountNumber) {
		return nil, errors.ErrInvalidAccountNumber
	}

	return s.store.Transactions().FindWithFilters(filter)
}
