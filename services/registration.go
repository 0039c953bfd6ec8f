package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/store"
)

const msgAllFieldsRequired = "all fields are required and at least one area must be selected"

// RegisterProviderInput is the business registration form.
type RegisterProviderInput struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	ServiceType       string   `json:"serviceType"`
	CustomServiceType string   `json:"customServiceType"`
	City              string   `json:"city"`
	Areas             []string `json:"areas"`
	Description       string   `json:"description"`
	ProfileImage      string   `json:"profileImage"`
	WorkImages        []string `json:"workImages"`
}

// Registration creates the single provider profile of a provider account.
type Registration struct {
	providers store.ProviderStore
	city      string
}

func NewRegistration(providers store.ProviderStore, city string) *Registration {
	return &Registration{providers: providers, city: city}
}

// Register runs the registration state machine for the caller's session.
// A nil session means the caller is not authenticated.
func (r *Registration) Register(ctx context.Context, session *Session, in RegisterProviderInput) (*models.Provider, error) {
	if session == nil || session.AccountID == 0 {
		return nil, ErrAuthenticationRequired()
	}
	if session.Role != models.RoleProvider {
		return nil, ErrRoleNotEligible()
	}

	existing, err := r.providers.GetByUserID(ctx, session.AccountID)
	switch {
	case err == nil:
		return nil, ErrAlreadyRegistered(existing)
	case !errors.Is(err, store.ErrNotFound):
		return nil, ErrInternal(err)
	}

	provider, verr := r.buildProvider(session.AccountID, in)
	if verr != nil {
		return nil, verr
	}

	if err := r.providers.Create(ctx, provider); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// lost a race with a concurrent registration for the same account
			existing, _ := r.providers.GetByUserID(ctx, session.AccountID)
			return nil, ErrAlreadyRegistered(existing)
		}
		if errors.Is(err, models.ErrNoAreas) {
			return nil, ErrValidation(msgAllFieldsRequired, "areas")
		}
		return nil, ErrInternal(err)
	}

	log.Info().
		Uint("provider_id", provider.ID).
		Uint("account_id", session.AccountID).
		Str("service_type", provider.ServiceType).
		Msg("provider registered")
	return provider, nil
}

func (r *Registration) buildProvider(accountID uint, in RegisterProviderInput) (*models.Provider, *Error) {
	category := models.ResolveCategory(in.ServiceType, in.CustomServiceType)
	areas := cleanAreas(in.Areas)

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	city := strings.TrimSpace(in.City)
	description := strings.TrimSpace(in.Description)

	var missing []string
	for _, f := range []struct {
		field string
		empty bool
	}{
		{"name", name == ""},
		{"email", email == ""},
		{"phone", phone == ""},
		{"serviceType", category.IsZero()},
		{"city", city == ""},
		{"areas", len(areas) == 0},
		{"description", description == ""},
	} {
		if f.empty {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return nil, ErrValidation(msgAllFieldsRequired, missing...)
	}

	if !isEmail(email) {
		return nil, ErrValidation("email must be a valid email address", "email")
	}
	if !strings.EqualFold(city, r.city) {
		return nil, ErrValidation(fmt.Sprintf("FindAm currently operates only in %s", r.city), "city")
	}

	workImages := cleanList(in.WorkImages)
	if len(workImages) > models.MaxWorkImages {
		return nil, ErrValidation(fmt.Sprintf("at most %d work images are allowed", models.MaxWorkImages), "workImages")
	}

	p := &models.Provider{
		UserID:      accountID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		ServiceType: category.String(),
		City:        r.city,
		Areas:       areas,
		Description: description,
		WorkImages:  workImages,
		Rating:      models.Rating{Average: 0, Count: 0},
		Verified:    false,
		IsActive:    true,
	}
	if img := strings.TrimSpace(in.ProfileImage); img != "" {
		p.ProfileImage = &img
	}
	return p, nil
}

// cleanAreas trims, drops blanks and de-duplicates while keeping order.
func cleanAreas(in []string) pq.StringArray {
	out := pq.StringArray{}
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func cleanList(in []string) pq.StringArray {
	out := pq.StringArray{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
