package model

import "time"

type MedicationLog struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	UserID         string    `gorm:"size:36;index;not null"`
	MedicationName string    `gorm:"size:100;not null"`
	Dosage         string    `gorm:"size:50;not null"` // e.g. "10mg", "1 tablet", "5ml"
	AmountML       float64   `gorm:"column:amount_ml;not null"` // liquid used to give the medication
	Route          string    `gorm:"size:50;default:E-tube"`
	Notes          string    `gorm:"type:text"`
	FlushedBefore  bool      `gorm:"default:false"`
	FlushedAfter   bool      `gorm:"default:false"`
	TimeGiven      time.Time `gorm:"index;autoCreateTime"`
}

func (MedicationLog) TableName() string {
	return "medication_logs"
}
