package config

import "time"

const (
	DefaultTimeZone = "Asia/Kolkata"

	// Statement ingestion bounds. Batches are processed synchronously inside
	// one request, so both the size and the wall-clock cost are capped.
	MaxBatchTransactions = 5000
	ProcessTimeout       = 30 * time.Second

	// Maintenance Configuration Constants
	DefaultFingerprintSchedule = "0 2 * * *"  // nightly duplicate-index rebuild
	DefaultSnapshotSchedule    = "30 2 1 * *" // monthly ledger snapshot
)
