package identity

import (
	"context"

	"github.com/ledger-bank/ledger_bank/internal/storage"
)

// FileRepository stores users in a JSON collection on disk.
type FileRepository struct {
	col *storage.Collection[User]
}

// NewFileRepository opens the users collection under dir.
func NewFileRepository(dir string) (*FileRepository, error) {
	col, err := storage.NewCollection[User](dir, "users",
		func(u User) int64 { return u.ID },
		func(u *User, id int64) { u.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &FileRepository{col: col}, nil
}

// Create appends a new user record.
func (r *FileRepository) Create(_ context.Context, user User) (User, error) {
	return r.col.Upsert(user)
}

// FindByID fetches a user by identifier.
func (r *FileRepository) FindByID(_ context.Context, id int64) (User, error) {
	user, ok, err := r.col.Find(func(u User) bool { return u.ID == id })
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// FindByUsername fetches a user by unique username.
func (r *FileRepository) FindByUsername(_ context.Context, username string) (User, error) {
	user, ok, err := r.col.Find(func(u User) bool { return u.Username == username })
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// List returns all users in insertion order.
func (r *FileRepository) List(_ context.Context) ([]User, error) {
	return r.col.Load()
}
