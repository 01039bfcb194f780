package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/acefarmer/backend/internal/domain/member"
	"github.com/acefarmer/backend/internal/domain/shared"
)

func TestGormCustomerRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when member number is unseen", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupTestDB(t))

		customer, err := member.NewCustomer("00123", "Nguyễn Văn An")
		require.NoError(t, err)

		saved, err := repo.Upsert(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, "00123", saved.MemberNo)

		found, err := repo.FindByMemberNo(ctx, "00123")
		require.NoError(t, err)
		assert.Equal(t, "Nguyễn Văn An", found.FullName)
	})

	t.Run("updates mutable fields on replay", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupTestDB(t))

		first, err := member.NewCustomer("00123", "Nguyễn Văn An")
		require.NoError(t, err)
		created, err := repo.Upsert(ctx, first)
		require.NoError(t, err)

		second, err := member.NewCustomer("00123", "Nguyễn Văn An")
		require.NoError(t, err)
		second.PhoneNumber = "0912345678"
		second.Gender = member.GenderMale
		second.VillageName = "Thôn Đoài"
		second.LocationType = member.LocationTypeRural
		second.LastSyncedAt = time.Now()

		updated, err := repo.Upsert(ctx, second)
		require.NoError(t, err)

		// same row, not a second one
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "0912345678", updated.PhoneNumber)
		assert.True(t, updated.IsRural())

		var count int64
		require.NoError(t, repo.db.Model(&member.Customer{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("member number survives updates", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupTestDB(t))

		first, err := member.NewCustomer("00500", "Trần Thị Hà")
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, first)
		require.NoError(t, err)

		second, err := member.NewCustomer("00500", "Trần Thị Hà")
		require.NoError(t, err)
		updated, err := repo.Upsert(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "00500", updated.MemberNo)
	})
}

func TestGormCustomerRepository_FindByMemberNo(t *testing.T) {
	ctx := context.Background()

	t.Run("missing member yields ErrNotFound", func(t *testing.T) {
		repo := NewGormCustomerRepository(setupTestDB(t))
		_, err := repo.FindByMemberNo(ctx, "99999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCustomerRepository_ExistsByMemberNo(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(setupTestDB(t))

	customer, err := member.NewCustomer("00777", "Phạm Quỳnh")
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, customer)
	require.NoError(t, err)

	exists, err := repo.ExistsByMemberNo(ctx, "00777")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByMemberNo(ctx, "00778")
	require.NoError(t, err)
	assert.False(t, exists)
}

// newMockCustomerRepository creates a repository backed by a mocked Postgres
// connection, for asserting query shape without a database
func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCustomerRepository(gormDB), mock, mockDB
}

func TestGormCustomerRepository_QueryShape(t *testing.T) {
	t.Run("FindByMemberNo filters on member_no", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE member_no = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("00123", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "member_no", "full_name"}))

		_, err := repo.FindByMemberNo(context.Background(), "00123")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
