package credentials

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"input-portal/internal/common"
	"input-portal/internal/models"
)

// SQLBackend keeps the registry in the users table. Row ids carry the
// insertion order.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) (*SQLBackend, error) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("%w: migrate users: %w", common.ErrStorage, err)
	}
	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Load(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := b.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: load users: %w", common.ErrStorage, err)
	}
	return users, nil
}

// Save replaces the table contents in one transaction.
func (b *SQLBackend) Save(ctx context.Context, users []models.User) error {
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
			return err
		}
		if len(users) == 0 {
			return nil
		}
		rows := make([]models.User, len(users))
		for i, u := range users {
			u.ID = uint(i + 1)
			rows[i] = u
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%w: save users: %w", common.ErrStorage, err)
	}
	return nil
}
