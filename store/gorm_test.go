package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meinhoongagan/findam/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestGormProviderStore_SearchComposesBaseAndFilters(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormProviderStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "providers" WHERE is_active = \$1 AND city = \$2 ` +
		`AND \(+name ILIKE \$3 OR service_type ILIKE \$4\)+ AND \$5 = ANY\(areas\) ` +
		`AND service_type = \$6 AND rating_average >= \$7 ORDER BY created_at DESC,\s*id DESC LIMIT \$8`).
		WithArgs(true, "Ibadan", `%50\%%`, `%50\%%`, "Bodija", "Plumber", 4.0, MaxSearchResults).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "service_type", "city", "areas", "rating_average", "is_active"}).
			AddRow(3, 9, "Ade Plumbing", "Plumber", "Ibadan", "{Bodija,Agodi}", 4.5, true))

	res, err := s.Search(context.Background(), ProviderSearch{
		City: "Ibadan",
		Filter: ProviderFilter{
			Text:      "50%",
			Area:      "Bodija",
			Category:  "Plumber",
			MinRating: ptr(4.0),
		},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, uint(3), res[0].ID)
	assert.Equal(t, pq.StringArray{"Bodija", "Agodi"}, res[0].Areas)
	assert.Equal(t, 4.5, res[0].Rating.Average)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProviderStore_SearchWithoutFiltersKeepsBase(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormProviderStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "providers" WHERE is_active = \$1 AND city = \$2 ORDER BY created_at DESC,\s*id DESC LIMIT \$3`).
		WithArgs(true, "Ibadan", MaxSearchResults).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := s.Search(context.Background(), ProviderSearch{City: "Ibadan", Limit: 1000})
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProviderStore_CreateLinksAccount(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormProviderStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "providers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`UPDATE "accounts" SET .*"provider_id"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &models.Provider{UserID: 4, Name: "Shop", City: "Ibadan", Areas: pq.StringArray{"Bodija"}, IsActive: true}
	require.NoError(t, s.Create(context.Background(), p))
	assert.Equal(t, uint(11), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProviderStore_CreateUniqueViolationIsDuplicate(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormProviderStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "providers"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_providers_user_id"})
	mock.ExpectRollback()

	p := &models.Provider{UserID: 4, Name: "Shop", City: "Ibadan", Areas: pq.StringArray{"Bodija"}}
	err := s.Create(context.Background(), p)
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProviderStore_GetByIDNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormProviderStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "providers" WHERE "providers"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountStore_GetByEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormAccountStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE email = \$1`).
		WithArgs("a@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "role"}).
			AddRow(1, "Ada", "a@x.com", "$2a$10$hash", "provider"))

	a, err := s.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, a.Role)
	assert.Equal(t, "$2a$10$hash", a.Password)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountStore_CreateDuplicateEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormAccountStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "accounts"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_accounts_email"})
	mock.ExpectRollback()

	err := s.Create(context.Background(), &models.Account{Name: "A", Email: "a@x.com", Password: "h", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountStore_ConsumeResetTokenNoMatch(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormAccountStore(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET .* WHERE reset_token = \$\d+ AND reset_token_expiry > \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.ConsumeResetToken(context.Background(), "tok", "hash", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountStore_SetResetToken(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewGormAccountStore(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET .*"reset_token".* WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SetResetToken(context.Background(), 1, "tok", time.Now().Add(time.Hour)))
	require.NoError(t, mock.ExpectationsWereMet())
}
