package services

import (
	"context"
	"errors"

	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/store"
)

// ProviderQuery answers provider searches and lookups for one operating city.
type ProviderQuery struct {
	providers store.ProviderStore
	city      string
}

func NewProviderQuery(providers store.ProviderStore, city string) *ProviderQuery {
	return &ProviderQuery{providers: providers, city: city}
}

// Search returns active providers in the operating city matching every
// supplied filter, newest first, at most store.MaxSearchResults.
func (q *ProviderQuery) Search(ctx context.Context, f store.ProviderFilter) ([]models.Provider, error) {
	providers, err := q.providers.Search(ctx, store.ProviderSearch{
		City:   q.city,
		Filter: f,
		Limit:  store.MaxSearchResults,
	})
	if err != nil {
		return nil, ErrQueryFailed(err)
	}
	return providers, nil
}

func (q *ProviderQuery) Get(ctx context.Context, id uint) (*models.Provider, error) {
	p, err := q.providers.GetByID(ctx, id)
	return p, lookupError(err)
}

func (q *ProviderQuery) GetByUser(ctx context.Context, userID uint) (*models.Provider, error) {
	p, err := q.providers.GetByUserID(ctx, userID)
	return p, lookupError(err)
}

// Exists reports whether userID already owns a provider profile.
func (q *ProviderQuery) Exists(ctx context.Context, userID uint) (bool, error) {
	_, err := q.providers.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, ErrQueryFailed(err)
	}
}

func lookupError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrProviderNotFound()
	default:
		return ErrQueryFailed(err)
	}
}
