package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/store"
)

// AuthService owns signup, login and logout.
type AuthService struct {
	accounts store.AccountStore
	hasher   PasswordHasher
	sessions SessionManager

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(accounts store.AccountStore, hasher PasswordHasher, sessions SessionManager) *AuthService {
	return &AuthService{accounts: accounts, hasher: hasher, sessions: sessions}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"`
}

type LoginResult struct {
	Token   string
	Session Session
	Account models.AccountView
}

// Register creates an account. Unknown roles are coerced to customer.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if verr := validateStruct(in); verr != nil {
		return nil, verr
	}

	if _, err := s.accounts.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken()
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, ErrInternal(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrInternal(err)
	}

	account := &models.Account{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     models.ParseRole(in.Role),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken()
		}
		return nil, ErrInternal(err)
	}

	log.Info().Uint("account_id", account.ID).Str("role", account.Role.String()).Msg("account registered")
	return account, nil
}

// Login verifies credentials and issues a session. Unknown email and wrong
// password both yield ErrInvalidCredentials after a full hash comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation("Missing fields", "email", "password")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, ErrInternal(err)
		}
		_ = s.hasher.Compare(s.fallbackHash(), password)
		return nil, ErrInvalidCredentials()
	}
	if err := s.hasher.Compare(account.Password, password); err != nil {
		return nil, ErrInvalidCredentials()
	}

	token, session, err := s.sessions.Issue(account)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return &LoginResult{Token: token, Session: session, Account: account.View()}, nil
}

func (s *AuthService) Logout(ctx context.Context, session Session) error {
	return s.sessions.Revoke(ctx, session)
}

// Me returns the current account for a session.
func (s *AuthService) Me(ctx context.Context, session Session) (models.AccountView, error) {
	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.AccountView{}, ErrAuthenticationRequired()
		}
		return models.AccountView{}, ErrInternal(err)
	}
	return account.View(), nil
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("findam-placeholder-password")
	})
	return s.dummyHash
}
