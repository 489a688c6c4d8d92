package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"money-transfer-service/internal/domain"
)

// MockAccountRepository is a mock implementation of domain.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(account *domain.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccount(accountNumber string) (*domain.Account, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountForUpdate(accountNumber string) (*domain.Account, error) {
	args := m.Called(accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalance(accountNumber string, newBalance decimal.Decimal) error {
	args := m.Called(accountNumber, newBalance)
	return args.Error(0)
}

func (m *MockAccountRepository) CountAccounts() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(tx *domain.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(tx *domain.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindSuccessfulWithoutCommission() ([]*domain.Transaction, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByCreatedAtBetween(start, end time.Time) ([]*domain.Transaction, error) {
	args := m.Called(start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindWithFilters(filter domain.TransactionFilter) (*domain.TransactionPage, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionPage), args.Error(1)
}

// MockSummaryRepository is a mock implementation of domain.SummaryRepository.
type MockSummaryRepository struct {
	mock.Mock
}

func (m *MockSummaryRepository) GetSummaryByDate(date time.Time) (*domain.TransactionSummary, error) {
	args := m.Called(date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionSummary), args.Error(1)
}

func (m *MockSummaryRepository) SaveSummary(summary *domain.TransactionSummary) error {
	args := m.Called(summary)
	return args.Error(0)
}

// mockStore bundles the repository mocks. WithTransaction runs fn against
// the same store, mirroring how the real store reuses repositories inside a
// database transaction.
type mockStore struct {
	accounts     *MockAccountRepository
	transactions *MockTransactionRepository
	summaries    *MockSummaryRepository
}

func newMockStore() *mockStore {
	return &mockStore{
		accounts:     new(MockAccountRepository),
		transactions: new(MockTransactionRepository),
		summaries:    new(MockSummaryRepository),
	}
}

func (s *mockStore) Accounts() domain.AccountRepository         { return s.accounts }
func (s *mockStore) Transactions() domain.TransactionRepository { return s.transactions }
func (s *mockStore) Summaries() domain.SummaryRepository        { return s.summaries }

func (s *mockStore) WithTransaction(fn func(domain.Store) error) error {
	return fn(s)
}

func decimalEq(expected string) interface{} {
	want := decimal.RequireFromString(expected)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func anyDecimal() interface{} {
	return mock.AnythingOfType("decimal.Decimal")
}

func anyTransaction() interface{} {
	return mock.AnythingOfType("*domain.Transaction")
}
