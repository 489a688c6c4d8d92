package repository

import (
	"database/sql"
	"log/slog"

	"money-transfer-service/internal/domain"
	"money-transfer-service/internal/errors"
)

// Store implements domain.Store on top of database/sql.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

func (s *Store) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

func (s *Store) Transactions() domain.TransactionRepository {
	return NewTransactionRepository(s.executor, s.logger)
}

func (s *Store) Summaries() domain.SummaryRepository {
	return NewSummaryRepository(s.executor, s.logger)
}

// WithTransaction runs fn against a store bound to a single database
// transaction. fn returning an error (or panicking) rolls everything back.
// Row locks taken via GetAccountForUpdate are held until this returns.
func (s *Store) WithTransaction(fn func(domain.Store) error) error {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.NewAppError(errors.InternalError, "nested transactions are not supported")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to begin transaction").WithDetails(err.Error())
	}

	txStore := &Store{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ domain.Store = (*Store)(nil)
