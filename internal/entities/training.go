package entities

import "time"

// TrainingSession is a scheduled class members can attend.
type TrainingSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200" json:"title"`
	Date        time.Time `gorm:"index" json:"date"`
	StartTime   string    `gorm:"size:5" json:"start_time"` // "18:00"
	EndTime     string    `gorm:"size:5" json:"end_time"`
	Instructor  string    `gorm:"size:100" json:"instructor"`
	Capacity    int       `json:"capacity"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}
