package services

import (
	"context"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/findam/models"
	"github.com/meinhoongagan/findam/store"
)

func validInput() RegisterProviderInput {
	return RegisterProviderInput{
		Name:        "Ade Plumbing",
		Email:       "ade@x.com",
		Phone:       "08030000000",
		ServiceType: "Plumber",
		City:        "Ibadan",
		Areas:       []string{"Bodija", " Agodi ", "Bodija", ""},
		Description: "Pipes, taps and boreholes.",
	}
}

func providerSession(t *testing.T, e *env) *Session {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.Register(ctx, RegisterInput{Name: "Ade", Email: "a@x.com", Password: "secret1", Role: "provider"})
	require.NoError(t, err)
	res, err := e.auth.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	return &res.Session
}

func countForAccount(t *testing.T, e *env, accountID uint) int {
	t.Helper()
	res, err := e.mem.Providers().Search(context.Background(), store.ProviderSearch{City: testCity})
	require.NoError(t, err)
	n := 0
	for _, p := range res {
		if p.UserID == accountID {
			n++
		}
	}
	return n
}

func TestRegistration_Unauthenticated(t *testing.T) {
	e := newEnv(t)
	_, err := e.reg.Register(context.Background(), nil, validInput())
	requireCode(t, err, CodeAuthenticationRequired)
}

func TestRegistration_CustomerIsNeverEligible(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.Register(ctx, RegisterInput{Name: "C", Email: "c@x.com", Password: "secret1", Role: "customer"})
	require.NoError(t, err)
	res, err := e.auth.Login(ctx, "c@x.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = e.reg.Register(ctx, &res.Session, validInput())
		requireCode(t, err, CodeRoleNotEligible)
	}
	assert.Equal(t, 0, countForAccount(t, e, res.Session.AccountID))
}

func TestRegistration_CreatesWithDefaults(t *testing.T) {
	e := newEnv(t)
	sess := providerSession(t, e)
	in := validInput()
	in.ProfileImage = "https://img/p.jpg"
	in.WorkImages = []string{"https://img/1.jpg", " "}

	p, err := e.reg.Register(context.Background(), sess, in)
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, sess.AccountID, p.UserID)
	assert.Equal(t, pq.StringArray{"Bodija", "Agodi"}, p.Areas)
	assert.Equal(t, models.Rating{}, p.Rating)
	assert.False(t, p.Verified)
	assert.True(t, p.IsActive)
	require.NotNil(t, p.ProfileImage)
	assert.Equal(t, "https://img/p.jpg", *p.ProfileImage)
	assert.Equal(t, pq.StringArray{"https://img/1.jpg"}, p.WorkImages)

	acc, err := e.mem.Accounts().GetByID(context.Background(), sess.AccountID)
	require.NoError(t, err)
	require.NotNil(t, acc.ProviderID)
	assert.Equal(t, p.ID, *acc.ProviderID)
}

func TestRegistration_SecondAttemptIsAlreadyRegistered(t *testing.T) {
	e := newEnv(t)
	sess := providerSession(t, e)
	ctx := context.Background()

	first, err := e.reg.Register(ctx, sess, validInput())
	require.NoError(t, err)

	_, err = e.reg.Register(ctx, sess, validInput())
	se := requireCode(t, err, CodeAlreadyRegistered)
	require.NotNil(t, se.Provider)
	assert.Equal(t, first.ID, se.Provider.ID)
	assert.Equal(t, 1, countForAccount(t, e, sess.AccountID))
}

func TestRegistration_ConcurrentAttemptsCreateOne(t *testing.T) {
	e := newEnv(t)
	sess := providerSession(t, e)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.reg.Register(context.Background(), sess, validInput())
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, HasCode(err, CodeAlreadyRegistered), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, countForAccount(t, e, sess.AccountID))
}

func TestRegistration_Validation(t *testing.T) {
	e := newEnv(t)
	sess := providerSession(t, e)

	cases := []struct {
		name   string
		mutate func(*RegisterProviderInput)
		field  string
	}{
		{"empty areas", func(in *RegisterProviderInput) { in.Areas = nil }, "areas"},
		{"blank areas", func(in *RegisterProviderInput) { in.Areas = []string{" ", ""} }, "areas"},
		{"missing phone", func(in *RegisterProviderInput) { in.Phone = "  " }, "phone"},
		{"missing description", func(in *RegisterProviderInput) { in.Description = "" }, "description"},
		{"other without custom", func(in *RegisterProviderInput) { in.ServiceType = "Other" }, "serviceType"},
		{"missing city", func(in *RegisterProviderInput) { in.City = "" }, "city"},
		{"bad email", func(in *RegisterProviderInput) { in.Email = "nope" }, "email"},
		{"other city", func(in *RegisterProviderInput) { in.City = "Lagos" }, "city"},
		{"too many work images", func(in *RegisterProviderInput) {
			in.WorkImages = []string{"1", "2", "3", "4", "5", "6", "7"}
		}, "workImages"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := e.reg.Register(context.Background(), sess, in)
			se := requireCode(t, err, CodeValidationFailed)
			assert.Contains(t, se.Fields, tc.field)
		})
	}
	assert.Equal(t, 0, countForAccount(t, e, sess.AccountID))
}

func TestRegistration_CustomCategory(t *testing.T) {
	e := newEnv(t)
	sess := providerSession(t, e)
	in := validInput()
	in.ServiceType = "Other"
	in.CustomServiceType = "Shoe Maker"
	in.City = "ibadan"

	p, err := e.reg.Register(context.Background(), sess, in)
	require.NoError(t, err)
	assert.Equal(t, "Shoe Maker", p.ServiceType)
	assert.Equal(t, testCity, p.City)
}
