package model

import "time"

// DailyFeedingTracker aggregates one user's feeding progress for one
// calendar day. Exactly one row exists per (user, date); the unique index
// enforces that at the storage layer.
type DailyFeedingTracker struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	UserID        string    `gorm:"size:36;uniqueIndex:idx_user_date;not null"`
	TargetDate    time.Time `gorm:"type:date;uniqueIndex:idx_user_date;not null"`
	DailyTargetML float64   `gorm:"column:daily_target_ml;not null;default:210"`
	RemainingML   float64   `gorm:"column:remaining_ml;not null"`
	TotalFedML    float64   `gorm:"column:total_fed_ml;not null;default:0"`
	FeedingCount  int       `gorm:"not null;default:0"`
	LastUpdated   time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (DailyFeedingTracker) TableName() string {
	return "daily_feeding_trackers"
}

// NewTracker seeds a tracker for the given day with the full target still
// remaining.
func NewTracker(userID string, dailyTargetML float64, targetDate time.Time) *DailyFeedingTracker {
	return &DailyFeedingTracker{
		UserID:        userID,
		TargetDate:    targetDate,
		DailyTargetML: dailyTargetML,
		RemainingML:   dailyTargetML,
	}
}

// AddFeeding applies one feeding. Remaining is clamped at zero so an
// overshoot never drives it negative.
func (t *DailyFeedingTracker) AddFeeding(amountML float64, now time.Time) {
	t.TotalFedML += amountML
	t.RemainingML = max(0, t.RemainingML-amountML)
	t.FeedingCount++
	t.LastUpdated = now
}

// ResetForNewDay zeroes progress and re-dates the tracker. A non-nil
// newTarget also replaces the daily target.
func (t *DailyFeedingTracker) ResetForNewDay(newTarget *float64, today, now time.Time) {
	if newTarget != nil {
		t.DailyTargetML = *newTarget
	}
	t.RemainingML = t.DailyTargetML
	t.TotalFedML = 0
	t.FeedingCount = 0
	t.TargetDate = today
	t.LastUpdated = now
}

// SetTarget changes the daily target mid-day, preserving progress already
// logged and recomputing only the remaining balance.
func (t *DailyFeedingTracker) SetTarget(newTarget float64, now time.Time) {
	t.DailyTargetML = newTarget
	t.RemainingML = max(0, newTarget-t.TotalFedML)
	t.LastUpdated = now
}

// ProgressPercentage is capped at 100. A zero target counts as complete.
func (t *DailyFeedingTracker) ProgressPercentage() float64 {
	if t.DailyTargetML == 0 {
		return 100
	}
	return min(100, t.TotalFedML/t.DailyTargetML*100)
}

func (t *DailyFeedingTracker) IsCompleted() bool {
	return t.TotalFedML >= t.DailyTargetML
}

// IsOverdue reports whether the tracker belongs to a day before today,
// i.e. rollover has not yet been applied to it.
func (t *DailyFeedingTracker) IsOverdue(today time.Time) bool {
	return t.TargetDate.Before(today)
}
