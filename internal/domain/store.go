package domain

// Store bundles the repositories with unit-of-work support. Mutations that
// must commit or roll back together run inside WithTransaction; everything
// else runs on the base store.
type Store interface {
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Summaries() SummaryRepository
	WithTransaction(fn func(Store) error) error
}
