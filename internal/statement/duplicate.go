package statement

import "sync"

// Fingerprint is the exact-match identity of a transaction for duplicate
// detection: date (as stored), company name, credit amount and account
// number. Two rows differing only in accountNo are distinct.
type Fingerprint struct {
	Date        string
	CompanyName string
	AccountNo   string
	Amount      string
}

// FingerprintOf normalizes a transaction into its fingerprint. The amount is
// keyed on its canonical decimal string so "100" and "100.00" collide.
func FingerprintOf(t Transaction) Fingerprint {
	return Fingerprint{
		Date:        t.Date,
		CompanyName: t.CompanyName,
		AccountNo:   t.AccountNo,
		Amount:      t.CreditAmount.String(),
	}
}

// Index holds per-user sets of historical transaction fingerprints so an
// upload is checked in O(batch) instead of rescanning every prior statement.
// It is updated incrementally on successful ingestion and can be rebuilt
// from the statement store (startup, nightly job).
type Index struct {
	mu    sync.RWMutex
	users map[string]map[Fingerprint]struct{}
}

func NewIndex() *Index {
	return &Index{users: make(map[string]map[Fingerprint]struct{})}
}

// Contains reports whether the user has already submitted this transaction.
func (ix *Index) Contains(userID string, fp Fingerprint) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.users[userID][fp]
	return ok
}

// FirstDuplicate scans a batch against the user's history and returns the
// index of the first duplicate, or -1.
func (ix *Index) FirstDuplicate(userID string, txns []Transaction) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := ix.users[userID]
	if seen == nil {
		return -1
	}
	for i, t := range txns {
		if _, ok := seen[FingerprintOf(t)]; ok {
			return i
		}
	}
	return -1
}

// Observe records accepted transactions for a user.
func (ix *Index) Observe(userID string, txns []Transaction) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.users[userID]
	if !ok {
		set = make(map[Fingerprint]struct{}, len(txns))
		ix.users[userID] = set
	}
	for _, t := range txns {
		set[FingerprintOf(t)] = struct{}{}
	}
}

// ReplaceUser swaps in a freshly built fingerprint set for one user.
func (ix *Index) ReplaceUser(userID string, fps []Fingerprint) {
	set := make(map[Fingerprint]struct{}, len(fps))
	for _, fp := range fps {
		set[fp] = struct{}{}
	}
	ix.mu.Lock()
	ix.users[userID] = set
	ix.mu.Unlock()
}

// Reset drops all users, used before a full rebuild.
func (ix *Index) Reset() {
	ix.mu.Lock()
	ix.users = make(map[string]map[Fingerprint]struct{})
	ix.mu.Unlock()
}
