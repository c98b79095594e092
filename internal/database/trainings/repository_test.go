package trainings

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
	dbPath := "./test_trainings_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.TrainingSession{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateAndList(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	later := &entities.TrainingSession{
		Title:      "Advanced randori",
		Date:       time.Now().Add(7 * 24 * time.Hour),
		StartTime:  "19:00",
		EndTime:    "21:00",
		Instructor: "Sensei Admin",
		Capacity:   20,
	}
	require.NoError(t, repo.Create(later))

	sooner := &entities.TrainingSession{
		Title:      "Beginners class",
		Date:       time.Now().Add(24 * time.Hour),
		StartTime:  "18:00",
		EndTime:    "19:30",
		Instructor: "Sensei Admin",
		Capacity:   30,
	}
	require.NoError(t, repo.Create(sooner))
	assert.NotZero(t, sooner.ID)

	sessions, err := repo.List()

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// Ordered by date, soonest first.
	assert.Equal(t, "Beginners class", sessions[0].Title)
	assert.Equal(t, "Advanced randori", sessions[1].Title)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	s := &entities.TrainingSession{
		Title:      "Kata practice",
		Date:       time.Now().Add(48 * time.Hour),
		StartTime:  "10:00",
		EndTime:    "12:00",
		Instructor: "Sensei Admin",
		Capacity:   15,
	}
	require.NoError(t, repo.Create(s))

	require.NoError(t, repo.Delete(s.ID))

	sessions, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Delete(999)

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
