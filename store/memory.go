package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/meinhoongagan/findam/models"
)

// Memory is an in-process store used by tests and local runs without Postgres.
// It enforces the same unique constraints as the SQL schema.
type Memory struct {
	mu             sync.Mutex
	now            func() time.Time
	nextAccountID  uint
	nextProviderID uint
	accounts       map[uint]*models.Account
	providers      map[uint]*models.Provider
}

func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		accounts:  make(map[uint]*models.Account),
		providers: make(map[uint]*models.Provider),
	}
}

// Accounts returns an AccountStore view over m.
func (m *Memory) Accounts() *MemoryAccountStore { return &MemoryAccountStore{m: m} }

// Providers returns a ProviderStore view over m.
func (m *Memory) Providers() *MemoryProviderStore { return &MemoryProviderStore{m: m} }

// AddProvider stores p as-is, keeping any CreatedAt, IsActive or Rating the
// caller set. It bypasses the owner link so fixtures may use orphan user ids.
func (m *Memory) AddProvider(p models.Provider) *models.Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProviderID++
	p.ID = m.nextProviderID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	stored := cloneProvider(&p)
	m.providers[p.ID] = stored
	return cloneProvider(stored)
}

type MemoryAccountStore struct{ m *Memory }

func (s *MemoryAccountStore) Create(_ context.Context, a *models.Account) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.accounts {
		if existing.Email == a.Email {
			return ErrDuplicate
		}
	}
	s.m.nextAccountID++
	a.ID = s.m.nextAccountID
	now := s.m.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.m.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (s *MemoryAccountStore) GetByID(_ context.Context, id uint) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(a), nil
}

func (s *MemoryAccountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, a := range s.m.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) GetByResetToken(_ context.Context, token string, now time.Time) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if a := s.m.findByResetToken(token, now); a != nil {
		return cloneAccount(a), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) SetResetToken(_ context.Context, id uint, token string, expiry time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.ResetToken = &token
	a.ResetTokenExpiry = &expiry
	a.UpdatedAt = s.m.now()
	return nil
}

func (s *MemoryAccountStore) ConsumeResetToken(_ context.Context, token, passwordHash string, now time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a := s.m.findByResetToken(token, now)
	if a == nil {
		return ErrNotFound
	}
	a.Password = passwordHash
	a.ResetToken = nil
	a.ResetTokenExpiry = nil
	a.UpdatedAt = s.m.now()
	return nil
}

func (s *MemoryAccountStore) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, a := range s.m.accounts {
		if a.ResetTokenExpiry != nil && !a.ResetTokenExpiry.After(now) {
			a.ResetToken = nil
			a.ResetTokenExpiry = nil
			n++
		}
	}
	return n, nil
}

func (m *Memory) findByResetToken(token string, now time.Time) *models.Account {
	for _, a := range m.accounts {
		if a.HasValidResetToken(token, now) {
			return a
		}
	}
	return nil
}

type MemoryProviderStore struct{ m *Memory }

func (s *MemoryProviderStore) Create(_ context.Context, p *models.Provider) error {
	if err := p.BeforeCreate(nil); err != nil {
		return err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.providers {
		if existing.UserID == p.UserID {
			return ErrDuplicate
		}
	}
	s.m.nextProviderID++
	p.ID = s.m.nextProviderID
	p.CreatedAt = s.m.now()
	s.m.providers[p.ID] = cloneProvider(p)

	if a, ok := s.m.accounts[p.UserID]; ok {
		id := p.ID
		a.ProviderID = &id
	}
	return nil
}

func (s *MemoryProviderStore) GetByID(_ context.Context, id uint) (*models.Provider, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProvider(p), nil
}

func (s *MemoryProviderStore) GetByUserID(_ context.Context, userID uint) (*models.Provider, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, p := range s.m.providers {
		if p.UserID == userID {
			return cloneProvider(p), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryProviderStore) Search(_ context.Context, q ProviderSearch) ([]models.Provider, error) {
	preds := q.Predicates()

	s.m.mu.Lock()
	out := make([]models.Provider, 0)
	for _, p := range s.m.providers {
		if matchesAll(p, preds) {
			out = append(out, *cloneProvider(p))
		}
	}
	s.m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if n := q.limit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	if a.ProviderID != nil {
		id := *a.ProviderID
		c.ProviderID = &id
	}
	if a.ResetToken != nil {
		t := *a.ResetToken
		c.ResetToken = &t
	}
	if a.ResetTokenExpiry != nil {
		e := *a.ResetTokenExpiry
		c.ResetTokenExpiry = &e
	}
	return &c
}

func cloneProvider(p *models.Provider) *models.Provider {
	c := *p
	c.Areas = append(pq.StringArray(nil), p.Areas...)
	c.WorkImages = append(pq.StringArray{}, p.WorkImages...)
	if p.ProfileImage != nil {
		img := *p.ProfileImage
		c.ProfileImage = &img
	}
	return &c
}
