package store

import (
	"context"
	"time"

	"github.com/meinhoongagan/findam/models"
)

// AccountStore persists accounts. Emails are expected in normalised form.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByResetToken returns the account holding token with an expiry after now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error)
	SetResetToken(ctx context.Context, id uint, token string, expiry time.Time) error

	// ConsumeResetToken replaces the password hash and clears the token in one
	// step, only if token is still held and unexpired at now.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ProviderStore persists provider profiles.
type ProviderStore interface {
	// Create inserts p and links the owning account to it. It returns
	// ErrDuplicate if the account already owns a provider.
	Create(ctx context.Context, p *models.Provider) error
	GetByID(ctx context.Context, id uint) (*models.Provider, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Provider, error)
	Search(ctx context.Context, s ProviderSearch) ([]models.Provider, error)
}

var (
	_ AccountStore  = (*GormAccountStore)(nil)
	_ ProviderStore = (*GormProviderStore)(nil)
	_ AccountStore  = (*MemoryAccountStore)(nil)
	_ ProviderStore = (*MemoryProviderStore)(nil)
)
