package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pagbridge/internal/gateway"
	"pagbridge/internal/repository"
)

// Scheduler runs the background reconciliation jobs.
type Scheduler struct {
	cron         *cron.Cron
	transactions *repository.TransactionRepository
	logger       *zap.Logger
	pendingTTL   time.Duration
}

// New creates the scheduler. pendingTTL is how long a transaction may
// stay pending before it is written off (the boleto expiry window).
func New(transactions *repository.TransactionRepository, pendingTTL time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		transactions: transactions,
		logger:       logger,
		pendingTTL:   pendingTTL,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Expire stale pending transactions - every hour
	s.cron.AddFunc("0 0 * * * *", func() {
		s.logger.Debug("Running: expire stale pending transactions")
		s.expireStalePending()
	})

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// expireStalePending fails pending transactions older than the TTL. The
// gateways never notify about an abandoned checkout or an unpaid boleto,
// so without this the rows would stay pending forever.
func (s *Scheduler) expireStalePending() {
	cutoff := time.Now().Add(-s.pendingTTL)

	stale, err := s.transactions.FindStalePending(cutoff)
	if err != nil {
		s.logger.Error("Failed to query stale pending transactions", zap.Error(err))
		return
	}

	for _, txn := range stale {
		if err := s.transactions.UpdateStatus(txn.ID, string(gateway.StatusFailed)); err != nil {
			s.logger.Error("Failed to expire transaction",
				zap.String("id", txn.ID),
				zap.Error(err))
			continue
		}
		s.logger.Info("Expired stale pending transaction",
			zap.String("id", txn.ID),
			zap.String("gateway", txn.Gateway),
			zap.Int64("invoice_id", txn.InvoiceID))
	}
}
