package repository

import (
	"errors"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// List returns up to limit accounts in insertion order.
func (r *AccountRepository) List(limit int) ([]models.Account, error) {
	accounts := make([]models.Account, 0)
	err := r.db.
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetByID returns (nil, nil) when no account has the id.
func (r *AccountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail returns (nil, nil) when no account has the email.
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// Updates writes only the given columns and refreshes account in place.
func (r *AccountRepository) Updates(account *models.Account, fields map[string]interface{}) error {
	return r.db.Model(account).Updates(fields).Error
}

func (r *AccountRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Account{}).Error
}
