package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store is the unit-of-work handle: one *gorm.DB (a pool or an open
// transaction) plus the repositories bound to it.
type Store struct {
	db       *gorm.DB
	Accounts *AccountRepository
	Messages *MessageRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Accounts: NewAccountRepository(db),
		Messages: NewMessageRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction.
// It commits when fn returns nil and rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
