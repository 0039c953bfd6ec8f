package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/meinhoongagan/findam/models"
)

type GormProviderStore struct {
	db *gorm.DB
}

func NewGormProviderStore(db *gorm.DB) *GormProviderStore {
	return &GormProviderStore{db: db}
}

// Create relies on idx_providers_user_id to reject a second provider for the
// same account, so concurrent registrations cannot both succeed.
func (s *GormProviderStore) Create(ctx context.Context, p *models.Provider) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&models.Account{}).
			Where("id = ?", p.UserID).
			Update("provider_id", p.ID).Error
	})
	return translate(err)
}

func (s *GormProviderStore) GetByID(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormProviderStore) GetByUserID(ctx context.Context, userID uint) (*models.Provider, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormProviderStore) Search(ctx context.Context, q ProviderSearch) ([]models.Provider, error) {
	tx := s.db.WithContext(ctx).Model(&models.Provider{})
	for _, pred := range q.Predicates() {
		tx = tx.Scopes(pred.Scope)
	}

	providers := make([]models.Provider, 0)
	err := tx.Order("created_at DESC").
		Order("id DESC").
		Limit(q.limit()).
		Find(&providers).Error
	if err != nil {
		return nil, translate(err)
	}
	return providers, nil
}
