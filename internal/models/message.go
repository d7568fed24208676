package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content   string    `gorm:"type:varchar(1000);not null" json:"content"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
