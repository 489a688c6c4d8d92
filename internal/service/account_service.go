package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/errors"
)

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

func (s *AccountService) GetAccount(accountNumber string) (*domain.Account, error) {
	if !accountNumberPattern.MatchString(accountNumber) {
		return nil, errors.ErrInvalidAccountNumber
	}
	return s.store.Accounts().GetAccount(accountNumber)
}

// demo accounts created on first start against an empty database
var seedAccounts = []struct {
	number  string
	name    string
	balance string
}{
	{"1000000001", "John Doe's Account", "5000.00"},
	{"1000000002", "Jane Smith's Account", "7500.00"},
	{"1000000003", "Alice Johnson's Account", "3000.00"},
	{"1000000004", "Bob Brown's Account", "4200.00"},
	{"1000000005", "Charlie Davis's Account", "6100.00"},
}

// SeedDemoAccounts populates the demo accounts when the accounts table is
// empty. A non-empty table means initialization already happened.
func (s *AccountService) SeedDemoAccounts() error {
	count, err := s.store.Accounts().CountAccounts()
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("Accounts already initialized, skipping seed")
		return nil
	}

	s.logger.Info("Seeding demo accounts")
	for _, seed := range seedAccounts {
		account := &domain.Account{
			AccountNumber: seed.number,
			AccountName:   seed.name,
			Balance:       decimal.RequireFromString(seed.balance),
		}
		if err := s.store.Accounts().CreateAccount(account); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded demo accounts", "count", len(seedAccounts))
	return nil
}
