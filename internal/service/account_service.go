package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/repository"
	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountCache is an optional read-through cache for GetAccountByID.
// Fill must not overwrite an invalidated entry. Invalidate errors abort the
// write that triggered them.
type AccountCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Account, bool)
	Fill(ctx context.Context, account *models.Account)
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type AccountInput struct {
	Name  string
	Email string
}

// AccountPatch carries the fields of a partial update. Nil means "leave as is".
type AccountPatch struct {
	Name  *string
	Email *string
}

func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

type AccountService struct {
	store *repository.Store
	cache AccountCache
}

// NewAccountService builds the account directory. cache may be nil.
func NewAccountService(store *repository.Store, cache AccountCache) *AccountService {
	return &AccountService{
		store: store,
		cache: cache,
	}
}

// ListAccounts returns at most limit accounts, oldest first.
func (s *AccountService) ListAccounts(ctx context.Context, limit int) ([]models.Account, error) {
	logger.Log.Debug("Listing accounts", zap.Int("limit", limit))

	if limit < 1 {
		return []models.Account{}, nil
	}

	var accounts []models.Account
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		accounts, err = tx.Accounts.List(limit)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		return nil
	})
	if err != nil {
		logFailure("List accounts failed", err)
		return nil, err
	}

	return accounts, nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if s.cache != nil {
		if account, ok := s.cache.Get(ctx, id); ok {
			logger.Log.Debug("Account served from cache", zap.String("account_id", id.String()))
			return account, nil
		}
	}

	var account *models.Account
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		account, err = s.requireAccount(tx, id)
		return err
	})
	if err != nil {
		logFailure("Get account failed", err, zap.String("account_id", id.String()))
		return nil, err
	}

	s.cacheFill(ctx, account)
	return account, nil
}

func (s *AccountService) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account *models.Account
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		account, err = s.findByEmail(tx, email)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		logFailure("Get account by email failed", err, zap.String("email", email))
		return nil, err
	}

	return account, nil
}

// CreateAccount rejects an email that is already taken. The lookup is an
// early exit; the unique index decides when two creates race.
func (s *AccountService) CreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	start := time.Now()

	logger.Log.Debug("Creating account",
		zap.String("name", in.Name),
		zap.String("email", in.Email),
	)

	account := &models.Account{
		Name:  in.Name,
		Email: in.Email,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := s.findByEmail(tx, in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		if err := tx.Accounts.Create(account); err != nil {
			return translateWriteError("failed to create account", err)
		}
		return nil
	})
	if err != nil {
		logFailure("Create account failed", err, zap.String("email", in.Email))
		return nil, err
	}

	logger.Log.Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("email", account.Email),
		zap.Duration("duration", time.Since(start)),
	)

	return account, nil
}

// UpdateAccount applies the non-nil fields of patch. An empty patch returns
// the current account untouched; keeping one's own email is not a conflict.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, patch AccountPatch) (*models.Account, error) {
	logger.Log.Debug("Updating account",
		zap.String("account_id", id.String()),
		zap.Bool("name", patch.Name != nil),
		zap.Bool("email", patch.Email != nil),
	)

	var account *models.Account
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		account, err = s.requireAccount(tx, id)
		if err != nil {
			return err
		}

		if patch.IsEmpty() {
			return nil
		}

		if patch.Email != nil && *patch.Email != account.Email {
			other, err := s.findByEmail(tx, *patch.Email)
			if err != nil {
				return err
			}
			if other != nil && other.ID != id {
				return ErrEmailAlreadyExists
			}
		}

		fields := make(map[string]interface{}, 2)
		if patch.Name != nil {
			fields["name"] = *patch.Name
			account.Name = *patch.Name
		}
		if patch.Email != nil {
			fields["email"] = *patch.Email
			account.Email = *patch.Email
		}

		if err := tx.Accounts.Updates(account, fields); err != nil {
			return translateWriteError("failed to update account", err)
		}
		return s.invalidate(ctx, id)
	})
	if err != nil {
		logFailure("Update account failed", err, zap.String("account_id", id.String()))
		return nil, err
	}

	if !patch.IsEmpty() {
		logger.Log.Info("Account updated",
			zap.String("account_id", id.String()),
		)
	}

	return account, nil
}

// DeleteAccount removes the account and, in the same transaction, every
// message it authored.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	logger.Log.Debug("Deleting account", zap.String("account_id", id.String()))

	var removedMessages int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := s.requireAccount(tx, id); err != nil {
			return err
		}

		var err error
		removedMessages, err = tx.Messages.DeleteBySender(id)
		if err != nil {
			return fmt.Errorf("failed to delete account messages: %w", err)
		}

		if err := tx.Accounts.Delete(id); err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}
		return s.invalidate(ctx, id)
	})
	if err != nil {
		logFailure("Delete account failed", err, zap.String("account_id", id.String()))
		return err
	}

	logger.Log.Info("Account deleted",
		zap.String("account_id", id.String()),
		zap.Int64("messages_deleted", removedMessages),
	)

	return nil
}

// requireAccount loads the account on tx or fails with ErrAccountNotFound.
// MessageService uses it for its existence checks.
func (s *AccountService) requireAccount(tx *repository.Store, id uuid.UUID) (*models.Account, error) {
	account, err := tx.Accounts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// findByEmail is the non-failing lookup used for uniqueness checks.
func (s *AccountService) findByEmail(tx *repository.Store, email string) (*models.Account, error) {
	account, err := tx.Accounts.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	return account, nil
}

func (s *AccountService) cacheFill(ctx context.Context, account *models.Account) {
	if s.cache != nil {
		s.cache.Fill(ctx, account)
	}
}

// invalidate runs inside the write transaction, before commit, so a cache
// that cannot be invalidated rolls the write back.
func (s *AccountService) invalidate(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, id)
}

func translateWriteError(msg string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailAlreadyExists
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// logFailure logs domain errors at warn level and everything else at error.
func logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))

	var notFound *NotFoundError
	var exists *AlreadyExistsError
	if errors.As(err, &notFound) || errors.As(err, &exists) {
		logger.Log.Warn(msg, fields...)
		return
	}
	logger.Log.Error(msg, fields...)
}
