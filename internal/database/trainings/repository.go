// Package trainings provides database operations for scheduled classes.
package trainings

import (
	"gorm.io/gorm"

	"github.com/hajimeclub/portal/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all training sessions ordered by date.
func (r *Repository) List() ([]entities.TrainingSession, error) {
	var sessions []entities.TrainingSession
	err := r.db.Order("date ASC").Find(&sessions).Error
	return sessions, err
}

// Create persists a new training session.
func (r *Repository) Create(s *entities.TrainingSession) error {
	return r.db.Create(s).Error
}

// Delete removes a training session. Returns gorm.ErrRecordNotFound when it
// does not exist.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.TrainingSession{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
