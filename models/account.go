package models

import (
	"strings"
	"time"
)

// Account is a login identity. Password holds the bcrypt hash only.
type Account struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"not null"`
	Email            string     `json:"email" gorm:"uniqueIndex:idx_accounts_email;not null"`
	Password         string     `json:"-" gorm:"not null"`
	Role             Role       `json:"role" gorm:"type:varchar(16);not null"`
	ProviderID       *uint      `json:"providerId"`
	ResetToken       *string    `json:"-" gorm:"index:idx_accounts_reset_token"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// AccountView is the safe, client-facing projection of an Account.
type AccountView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	ProviderID *uint  `json:"providerId,omitempty"`
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		ProviderID: a.ProviderID,
	}
}

// HasValidResetToken reports whether token matches the stored one and has not expired at now.
func (a *Account) HasValidResetToken(token string, now time.Time) bool {
	if a.ResetToken == nil || a.ResetTokenExpiry == nil || token == "" {
		return false
	}
	return *a.ResetToken == token && a.ResetTokenExpiry.After(now)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
