package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FirstName    string `gorm:"size:100"`
	LastName     string `gorm:"size:100"`
	IsActive     bool   `gorm:"default:true"`
	IsVerified   bool   `gorm:"default:false"`
	Timezone     string `gorm:"size:50;default:UTC"`

	CatName       string   `gorm:"size:100"`
	CatBreed      string   `gorm:"size:100"`
	CatAge        *int     `gorm:"column:cat_age"`
	CatWeight     *float64 `gorm:"column:cat_weight"`
	DailyTargetML float64  `gorm:"column:daily_target_ml;default:210"`

	LastLogin *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`

	FeedingLogs    []FeedingLog          `gorm:"constraint:OnDelete:CASCADE"`
	MedicationLogs []MedicationLog       `gorm:"constraint:OnDelete:CASCADE"`
	DailyTrackers  []DailyFeedingTracker `gorm:"constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DaysInactive reports whole days elapsed since the last login, or -1 when
// the user has never logged in.
func (u *User) DaysInactive(now time.Time) int {
	if u.LastLogin == nil {
		return -1
	}
	return int(now.Sub(*u.LastLogin).Hours() / 24)
}
