package ledger

import (
	"sort"
	"sync"
)

// lockTable hands out one mutex per wallet id. Multi-wallet acquisitions lock
// in ascending id order so two transfers touching the same pair of wallets in
// opposite directions cannot deadlock. Mutexes are kept for the life of the
// process; the table grows with the number of distinct wallets, not with
// traffic.
type lockTable struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[int64]*sync.Mutex)}
}

// acquire locks every given wallet id (duplicates collapse to one) and
// returns a release function that unlocks in reverse order.
func (t *lockTable) acquire(ids ...int64) func() {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	held := make([]*sync.Mutex, 0, len(unique))
	for _, id := range unique {
		t.mu.Lock()
		m, ok := t.locks[id]
		if !ok {
			m = &sync.Mutex{}
			t.locks[id] = m
		}
		t.mu.Unlock()
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
