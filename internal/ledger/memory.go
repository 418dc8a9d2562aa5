package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-process Store. A single mutex guards the nested map;
// the map is small (per-user year/month totals) so contention is not a
// concern, and it gives the same lost-update-free behaviour as the SQL
// upsert path.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]Ledger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]Ledger)}
}

func (m *MemoryStore) Increment(ctx context.Context, userID, year, month string, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.users[userID]
	if !ok {
		l = make(Ledger)
		m.users[userID] = l
	}
	months, ok := l[year]
	if !ok {
		months = make(map[string]decimal.Decimal)
		l[year] = months
	}
	months[month] = months[month].Add(delta)
	return nil
}

func (m *MemoryStore) Read(ctx context.Context, userID string) (Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Ledger)
	for year, months := range m.users[userID] {
		out[year] = make(map[string]decimal.Decimal, len(months))
		for month, v := range months {
			out[year][month] = v
		}
	}
	return out, nil
}
