package testutil

import (
	"testing"
	"time"

	"github.com/Baaaki/message-board/internal/models"
	"gorm.io/gorm"
)

// CreateTestAccount inserts an account directly, bypassing the services.
func CreateTestAccount(t *testing.T, db *gorm.DB, name, email string) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:  name,
		Email: email,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return account
}

// DefaultTestAccount inserts the "User 1" account used across suites.
func DefaultTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	return CreateTestAccount(t, db, "User 1", "user1@test.com")
}

// CreateTestMessage inserts a message for sender at the given time.
func CreateTestMessage(t *testing.T, db *gorm.DB, sender *models.Account, content string, at time.Time) *models.Message {
	t.Helper()

	message := &models.Message{
		Content:   content,
		Timestamp: at.UTC(),
		SenderID:  sender.ID,
	}
	if err := db.Create(message).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}
	return message
}

// CountRows counts rows of model matching the optional condition.
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	tx := db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}
