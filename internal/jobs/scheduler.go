package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"BrokerLedger/api/broker"
	"BrokerLedger/internal/config"
	"BrokerLedger/internal/logger"
	"BrokerLedger/internal/serviceiface"
	"BrokerLedger/internal/store"
)

// CronService runs the engine's maintenance jobs: the nightly rebuild of
// the duplicate-fingerprint index from statement history, and the monthly
// ledger snapshot used for month-end reconciliation.
type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", config.DefaultTimeZone, err)
	}

	fingerprintSchedule := config.DefaultFingerprintSchedule
	snapshotSchedule := config.DefaultSnapshotSchedule
	if s.config != nil {
		if v, ok := s.config["fingerprint_schedule"].(string); ok && v != "" {
			fingerprintSchedule = v
		}
		if v, ok := s.config["snapshot_schedule"].(string); ok && v != "" {
			snapshotSchedule = v
		}
	}

	s.cron = cron.New(cron.WithLocation(loc))

	_, err = s.cron.AddFunc(fingerprintSchedule, s.rebuildFingerprintIndex)
	if err != nil {
		return fmt.Errorf("failed to schedule fingerprint rebuild: %v", err)
	}
	_, err = s.cron.AddFunc(snapshotSchedule, s.snapshotLedgers)
	if err != nil {
		return fmt.Errorf("failed to schedule ledger snapshot: %v", err)
	}

	s.cron.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started — fingerprint rebuild and ledger snapshot scheduled")
	}
	log.Println("Cron service started")
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Println("Cron service stopped.")
	return nil
}

// rebuildFingerprintIndex reloads every user's fingerprints from statement
// history so the in-memory index cannot drift from what is persisted.
func (s *CronService) rebuildFingerprintIndex() {
	engine := broker.GetEngine()
	if engine == nil {
		log.Println("[WARN] fingerprint rebuild skipped: broker engine not started")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err := engine.RebuildIndex(ctx)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogJob("fingerprint-index-rebuild", err)
	}
	if err != nil {
		log.Println("[ERROR] fingerprint index rebuild failed:", err)
	}
}

// snapshotLedgers copies every user's current ledger rows into the
// snapshot table, stamped with the run time.
func (s *CronService) snapshotLedgers() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rows, err := store.NewLedgerStore(s.db).Snapshot(ctx)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogJob("ledger-snapshot", err)
	}
	if err != nil {
		log.Println("[ERROR] ledger snapshot failed:", err)
		return
	}
	log.Printf("[INFO] ledger snapshot complete, %d rows", rows)
}
