package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meinhoongagan/findam/store"
)

const testCity = "Ibadan"

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to, url string
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, url: resetURL})
	return nil
}

type env struct {
	mem      *store.Memory
	hasher   *BcryptHasher
	sessions *JWTSessions
	auth     *AuthService
	query    *ProviderQuery
	reg      *Registration
	mailer   *fakeMailer
	reset    *PasswordReset
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := store.NewMemory()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	sessions := NewJWTSessions("test-secret", 24*time.Hour, nil)
	mailer := &fakeMailer{}
	return &env{
		mem:      mem,
		hasher:   hasher,
		sessions: sessions,
		auth:     NewAuthService(mem.Accounts(), hasher, sessions),
		query:    NewProviderQuery(mem.Providers(), testCity),
		reg:      NewRegistration(mem.Providers(), testCity),
		mailer:   mailer,
		reset:    NewPasswordReset(mem.Accounts(), hasher, mailer, "https://findam.ng/"),
	}
}

// requireCode asserts err is a service error with the given code.
func requireCode(t *testing.T, err error, code string) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected *services.Error, got %T: %v", err, err)
	require.Equal(t, code, se.Code, "unexpected error: %v", err)
	return se
}
