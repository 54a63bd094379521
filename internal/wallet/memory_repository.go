package wallet

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	wallets map[int64]Wallet
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{wallets: make(map[int64]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, w Wallet) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID == 0 {
		r.nextID++
		w.ID = r.nextID
	} else if w.ID > r.nextID {
		r.nextID = w.ID
	}
	r.wallets[w.ID] = w
	return w, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (r *memoryRepository) FindByUserID(_ context.Context, userID int64) (Wallet, error) {
	return r.findLocked(func(w Wallet) bool { return w.UserID == userID })
}

func (r *memoryRepository) FindByCode(_ context.Context, code string) (Wallet, error) {
	return r.findLocked(func(w Wallet) bool { return w.Code == code })
}

func (r *memoryRepository) Update(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.ID]; !ok {
		return ErrNotFound
	}
	r.wallets[w.ID] = w
	return nil
}

func (r *memoryRepository) List(_ context.Context) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) findLocked(match func(Wallet) bool) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if match(w) {
			return w, nil
		}
	}
	return Wallet{}, ErrNotFound
}
