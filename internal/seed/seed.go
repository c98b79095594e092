// Package seed populates an empty database with the club's starter data:
// one admin, a handful of demo students, the weekly schedule and a few
// announcements.
package seed

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimeclub/portal/internal/auth"
	"github.com/hajimeclub/portal/internal/database"
	"github.com/hajimeclub/portal/internal/database/announcements"
	"github.com/hajimeclub/portal/internal/database/trainings"
	"github.com/hajimeclub/portal/internal/database/users"
	"github.com/hajimeclub/portal/internal/entities"
)

// DefaultPassword is the shared password for seeded demo accounts. Only for
// development databases.
const DefaultPassword = "password123"

// Run seeds the database. It is a no-op when any users already exist.
func Run(db *database.Database, hasher *auth.Hasher) error {
	userRepo := users.NewRepository(db.DB)

	count, err := userRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		log.Println("Database already seeded")
		return nil
	}

	passwordHash, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now()

	admin := &entities.User{
		Name:          "Sensei Admin",
		Email:         "admin@hajime.com",
		PasswordHash:  passwordHash,
		Role:          entities.UserRoleAdmin,
		Verified:      true,
		AcceptedTerms: true,
		Phone:         "1234567890",
		JoinedAt:      now,
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	students := []struct {
		name  string
		email string
	}{
		{"John Doe", "john@example.com"},
		{"Jane Smith", "jane@example.com"},
		{"Alice Johnson", "alice@example.com"},
		{"Bob Brown", "bob@example.com"},
		{"Charlie Davis", "charlie@example.com"},
		{"Diana Evans", "diana@example.com"},
	}
	for _, s := range students {
		student := &entities.User{
			Name:          s.name,
			Email:         s.email,
			PasswordHash:  passwordHash,
			Role:          entities.UserRoleStudent,
			AcceptedTerms: true,
			Phone:         "0987654321",
			JoinedAt:      now,
		}
		if err := userRepo.Create(student); err != nil {
			return fmt.Errorf("failed to create student %s: %w", s.email, err)
		}
	}

	trainingRepo := trainings.NewRepository(db.DB)
	schedule := []entities.TrainingSession{
		{Title: "Basics of Judo", Date: now.AddDate(0, 0, 1), StartTime: "18:00", EndTime: "20:00", Instructor: "Sensei Admin", Capacity: 20, Description: "Introduction to Judo techniques."},
		{Title: "Self Defense 101", Date: now.AddDate(0, 0, 3), StartTime: "18:00", EndTime: "20:00", Instructor: "Sensei Admin", Capacity: 20, Description: "Basic self defense moves."},
		{Title: "Advanced Throwing", Date: now.AddDate(0, 0, 5), StartTime: "18:00", EndTime: "20:00", Instructor: "Sensei Admin", Capacity: 15, Description: "Advanced throwing techniques."},
		{Title: "Sparring Session", Date: now.AddDate(0, 0, 8), StartTime: "18:00", EndTime: "20:00", Instructor: "Sensei Admin", Capacity: 10, Description: "Practice sparring."},
	}
	for i := range schedule {
		if err := trainingRepo.Create(&schedule[i]); err != nil {
			return fmt.Errorf("failed to create training session: %w", err)
		}
	}

	announcementRepo := announcements.NewRepository(db.DB)
	notices := []entities.Announcement{
		{Title: "Welcome to Hajime Club!", Body: "We are excited to start our new batch. Please be on time.", AuthorID: admin.ID},
		{Title: "Gear Requirements", Body: "Please bring your Gi to every session.", AuthorID: admin.ID},
		{Title: "Holiday Schedule", Body: "No classes on public holidays.", AuthorID: admin.ID},
	}
	for i := range notices {
		if err := announcementRepo.Create(&notices[i]); err != nil {
			return fmt.Errorf("failed to create announcement: %w", err)
		}
	}

	log.Println("Database seeded successfully")
	return nil
}
