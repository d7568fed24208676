package repository

import (
	"errors"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListBySender returns the sender's messages oldest first.
func (r *MessageRepository) ListBySender(senderID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.
		Where("sender_id = ?", senderID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetForSender returns (nil, nil) unless a message with id exists and
// belongs to senderID.
func (r *MessageRepository) GetForSender(senderID, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := r.db.
		Where("id = ? AND sender_id = ?", id, senderID).
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Message{}).Error
}

// DeleteBySender removes every message authored by senderID and returns how
// many rows went away.
func (r *MessageRepository) DeleteBySender(senderID uuid.UUID) (int64, error) {
	result := r.db.Where("sender_id = ?", senderID).Delete(&models.Message{})
	return result.RowsAffected, result.Error
}
