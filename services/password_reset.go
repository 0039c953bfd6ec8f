package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/store"
	"github.com/meinhoongagan/findam/utils"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

const (
	minPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes
	maxPasswordBytes = 72
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// PasswordReset issues and redeems single-use reset tokens.
type PasswordReset struct {
	accounts store.AccountStore
	hasher   PasswordHasher
	mailer   Mailer
	appURL   string

	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

func NewPasswordReset(accounts store.AccountStore, hasher PasswordHasher, mailer Mailer, appURL string) *PasswordReset {
	return &PasswordReset{
		accounts: accounts,
		hasher:   hasher,
		mailer:   mailer,
		appURL:   strings.TrimRight(appURL, "/"),
		ttl:      ResetTokenTTL,
		now:      time.Now,
		newToken: utils.GenerateToken,
	}
}

// WithClock replaces the time source; used by tests.
func (r *PasswordReset) WithClock(now func() time.Time) *PasswordReset {
	r.now = now
	return r
}

// Request issues a reset token for email if an account exists. The result
// never reveals whether it does: unknown emails and mail failures both
// return nil.
func (r *PasswordReset) Request(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	account, err := r.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return ErrInternal(err)
	}

	token, err := r.newToken()
	if err != nil {
		return ErrInternal(err)
	}
	if err := r.accounts.SetResetToken(ctx, account.ID, token, r.now().Add(r.ttl)); err != nil {
		return ErrInternal(err)
	}

	if err := r.mailer.SendPasswordReset(ctx, account.Email, r.resetURL(token)); err != nil {
		log.Error().Err(err).Uint("account_id", account.ID).Msg("failed to send password reset email")
		return nil
	}
	log.Info().Uint("account_id", account.ID).Msg("password reset email sent")
	return nil
}

// Validate succeeds only while some account holds token and it is unexpired.
func (r *PasswordReset) Validate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrValidation("Token is required", "token")
	}
	if _, err := r.accounts.GetByResetToken(ctx, token, r.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken()
		}
		return ErrInternal(err)
	}
	return nil
}

// Reset redeems token, storing the new password and clearing the token.
func (r *PasswordReset) Reset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return ErrValidation("Token and password are required", "token", "password")
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword()
	}
	if len(newPassword) > maxPasswordBytes {
		return ErrValidation("password must be at most 72 characters", "password")
	}
	if err := r.Validate(ctx, token); err != nil {
		return err
	}

	hash, err := r.hasher.Hash(newPassword)
	if err != nil {
		return ErrInternal(err)
	}
	if err := r.accounts.ConsumeResetToken(ctx, token, hash, r.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken()
		}
		return ErrInternal(err)
	}
	return nil
}

// SweepExpired clears reset tokens whose expiry has passed.
func (r *PasswordReset) SweepExpired(ctx context.Context) (int64, error) {
	return r.accounts.ClearExpiredResetTokens(ctx, r.now())
}

func (r *PasswordReset) resetURL(token string) string {
	return r.appURL + "/reset-password?token=" + url.QueryEscape(token)
}
