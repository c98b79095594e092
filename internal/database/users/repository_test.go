package users

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hajimeclub/portal/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func testUser(email string) *entities.User {
	return &entities.User{
		Name:          "Test Member",
		Email:         email,
		PasswordHash:  "deadbeef.cafebabe",
		Role:          entities.UserRoleStudent,
		AcceptedTerms: true,
		JoinedAt:      time.Now(),
	}
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := testUser("member@example.com")
	err := repo.Create(user)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestRepository_Create_DuplicateEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(testUser("member@example.com")))

	err := repo.Create(testUser("member@example.com"))

	assert.Error(t, err)
}

func TestRepository_GetByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := testUser("member@example.com")
	require.NoError(t, repo.Create(created))

	user, err := repo.GetByID(created.ID)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "member@example.com", user.Email)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.GetByID(999)

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_GetByEmail_CaseInsensitive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := testUser("Member@Example.com")
	require.NoError(t, repo.Create(created))

	for _, email := range []string{"member@example.com", "MEMBER@EXAMPLE.COM", "Member@Example.com"} {
		user, err := repo.GetByEmail(email)
		require.NoError(t, err)
		require.NotNil(t, user, "lookup for %s", email)
		assert.Equal(t, created.ID, user.ID)
	}
}

func TestRepository_GetByEmail_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.GetByEmail("nobody@example.com")

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_ChangePassword(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := testUser("member@example.com")
	require.NoError(t, repo.Create(created))

	err := repo.ChangePassword(created.ID, "feedface.baadf00d")

	require.NoError(t, err)
	user, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "feedface.baadf00d", user.PasswordHash)
}

func TestRepository_ChangePassword_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.ChangePassword(999, "feedface.baadf00d")

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_List(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	older := testUser("first@example.com")
	older.JoinedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(older))

	newer := testUser("second@example.com")
	require.NoError(t, repo.Create(newer))

	users, err := repo.List()

	require.NoError(t, err)
	require.Len(t, users, 2)
	// Ordered by join date, earliest first.
	assert.Equal(t, "first@example.com", users[0].Email)
	assert.Equal(t, "second@example.com", users[1].Email)
}

func TestRepository_SetVerified(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := testUser("member@example.com")
	require.NoError(t, repo.Create(created))
	assert.False(t, created.Verified)

	err := repo.SetVerified(created.ID, true)

	require.NoError(t, err)
	user, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

func TestRepository_SetVerified_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SetVerified(999, true)

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := testUser("member@example.com")
	require.NoError(t, repo.Create(created))

	err := repo.Delete(created.ID)

	require.NoError(t, err)
	user, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRepository_Count(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Create(testUser("a@example.com")))
	require.NoError(t, repo.Create(testUser("b@example.com")))

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
