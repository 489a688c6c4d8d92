package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"money-transfer-service/internal/domain"
)

type CommissionService struct {
	store  domain.Store
	fees   FeeCalculator
	logger *slog.Logger
}

func NewCommissionService(store domain.Store, fees FeeCalculator, logger *slog.Logger) *CommissionService {
	return &CommissionService{
		store:  store,
		fees:   fees,
		logger: logger,
	}
}

// SweepCommissions marks every successful, not-yet-commissioned transaction
// as commission worthy and records its commission, computed from the stored
// fee. The selection predicate makes repeated sweeps idempotent. A failure
// on one row is logged and does not stop the sweep.
func (s *CommissionService) SweepCommissions() (int, error) {
	s.logger.Info("Starting commission sweep")

	candidates, err := s.store.Transactions().FindSuccessfulWithoutCommission()
	if err != nil {
		return 0, err
	}

	updated := 0
	totalCommission := decimal.Zero

	for _, tx := range candidates {
		tx.CommissionWorthy = true
		tx.Commission = s.fees.Commission(tx.TransactionFee)

		if err := s.store.Transactions().UpdateTransaction(tx); err != nil {
			s.logger.Error("Failed to update commission", "transaction_id", tx.ID, "error", err)
			continue
		}

		totalCommission = totalCommission.Add(tx.Commission)
		updated++
	}

	s.logger.Info("Commission sweep finished",
		"updated", updated,
		"total_commission", totalCommission)
	return updated, nil
}
