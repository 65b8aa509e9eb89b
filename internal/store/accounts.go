package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/petermazzocco/car-dealership/models"
	"gorm.io/gorm"
)

type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

func (s *Accounts) ByID(ctx context.Context, id string) (models.Account, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Accounts) ByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// Create stores a new account, assigning its ID.
func (s *Accounts) Create(ctx context.Context, acct *models.Account) error {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	acct.Email = strings.ToLower(strings.TrimSpace(acct.Email))
	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		return fmt.Errorf("accounts.Create: %w", err)
	}
	return nil
}

func (s *Accounts) SetPassword(ctx context.Context, id, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("accounts.SetPassword: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Accounts) first(ctx context.Context, query string, arg string) (models.Account, error) {
	var acct models.Account
	err := s.db.WithContext(ctx).Where(query, arg).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("accounts: %w", err)
	}
	return acct, nil
}

// Migrate creates or updates the tables the service needs.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Account{}, &models.CarDocument{})
}
