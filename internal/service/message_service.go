package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/repository"
	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageInput struct {
	Content string
}

// MessageService manages messages scoped to the account that wrote them.
// Account existence is checked through AccountService on the same transaction.
type MessageService struct {
	store    *repository.Store
	accounts *AccountService
}

func NewMessageService(store *repository.Store, accounts *AccountService) *MessageService {
	return &MessageService{
		store:    store,
		accounts: accounts,
	}
}

func (s *MessageService) ListMessagesForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Message, error) {
	logger.Log.Debug("Listing messages", zap.String("account_id", accountID.String()))

	var messages []models.Message
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := s.accounts.requireAccount(tx, accountID); err != nil {
			return err
		}

		var err error
		messages, err = tx.Messages.ListBySender(accountID)
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		return nil
	})
	if err != nil {
		logFailure("List messages failed", err, zap.String("account_id", accountID.String()))
		return nil, err
	}

	return messages, nil
}

// GetMessageForAccount fails with ErrAccountNotFound when the account is
// missing and ErrMessageNotFound when the message is missing or belongs to
// someone else.
func (s *MessageService) GetMessageForAccount(ctx context.Context, accountID, messageID uuid.UUID) (*models.Message, error) {
	var message *models.Message
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		message, err = s.requireMessage(tx, accountID, messageID)
		return err
	})
	if err != nil {
		logFailure("Get message failed", err,
			zap.String("account_id", accountID.String()),
			zap.String("message_id", messageID.String()),
		)
		return nil, err
	}

	return message, nil
}

func (s *MessageService) CreateMessageForAccount(ctx context.Context, accountID uuid.UUID, in MessageInput) (*models.Message, error) {
	logger.Log.Debug("Creating message",
		zap.String("account_id", accountID.String()),
		zap.Int("length", len(in.Content)),
	)

	message := &models.Message{
		Content:   in.Content,
		Timestamp: time.Now().UTC(),
		SenderID:  accountID,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := s.accounts.requireAccount(tx, accountID); err != nil {
			return err
		}

		if err := tx.Messages.Create(message); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	})
	if err != nil {
		logFailure("Create message failed", err, zap.String("account_id", accountID.String()))
		return nil, err
	}

	logger.Log.Info("Message created",
		zap.String("account_id", accountID.String()),
		zap.String("message_id", message.ID.String()),
	)

	return message, nil
}

func (s *MessageService) DeleteMessageForAccount(ctx context.Context, accountID, messageID uuid.UUID) error {
	logger.Log.Debug("Deleting message",
		zap.String("account_id", accountID.String()),
		zap.String("message_id", messageID.String()),
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		message, err := s.requireMessage(tx, accountID, messageID)
		if err != nil {
			return err
		}

		if err := tx.Messages.Delete(message.ID); err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}
		return nil
	})
	if err != nil {
		logFailure("Delete message failed", err,
			zap.String("account_id", accountID.String()),
			zap.String("message_id", messageID.String()),
		)
		return err
	}

	logger.Log.Info("Message deleted",
		zap.String("account_id", accountID.String()),
		zap.String("message_id", messageID.String()),
	)

	return nil
}

// requireMessage checks the account first so callers can tell a missing
// account from a missing message.
func (s *MessageService) requireMessage(tx *repository.Store, accountID, messageID uuid.UUID) (*models.Message, error) {
	if _, err := s.accounts.requireAccount(tx, accountID); err != nil {
		return nil, err
	}

	message, err := tx.Messages.GetForSender(accountID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}
	return message, nil
}
