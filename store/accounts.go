package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/meinhoongagan/findam/models"
)

type GormAccountStore struct {
	db *gorm.DB
}

func NewGormAccountStore(db *gorm.DB) *GormAccountStore {
	return &GormAccountStore{db: db}
}

func (s *GormAccountStore) Create(ctx context.Context, a *models.Account) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormAccountStore) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var a models.Account
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *GormAccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *GormAccountStore) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error) {
	var a models.Account
	err := s.db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiry > ?", token, now).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *GormAccountStore) SetResetToken(ctx context.Context, id uint, token string, expiry time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_token":        token,
			"reset_token_expiry": expiry,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormAccountStore) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("reset_token = ? AND reset_token_expiry > ?", token, now).
		Updates(map[string]any{
			"password":           passwordHash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormAccountStore) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?", now).
		Updates(map[string]any{
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	return res.RowsAffected, translate(res.Error)
}
