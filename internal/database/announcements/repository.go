// Package announcements provides database operations for club notices.
package announcements

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

// List returns all announcements, newest first.
func (r *Repository) List() ([]entities.Announcement, error) {
	var items []entities.Announcement
	err := r.db.Order("created_at DESC").Find(&items).Error
	return items, err
}

// Create persists a new announcement.
func (r *Repository) Create(a *entities.Announcement) error {
	return r.db.Create(a).Error
}

// Delete removes an announcement. Returns gorm.ErrRecordNotFound when the
// announcement does not exist.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Announcement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
