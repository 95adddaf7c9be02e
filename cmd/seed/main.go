package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/catelog/catetube-backend/internal/auth"
	"github.com/catelog/catetube-backend/internal/config"
	"github.com/catelog/catetube-backend/internal/db"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const demoEmail = "demo@example.com"

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.DailyFeedingTracker{},
		&model.FeedingLog{},
		&model.MedicationLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&model.User{}).Where("email = ?", demoEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("demo user already exists; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	hash, err := auth.HashPassword("DemoPass123")
	if err != nil {
		return err
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		age := 9
		weight := 4.2
		user := &model.User{
			Email:         demoEmail,
			PasswordHash:  hash,
			FirstName:     "Demo",
			LastName:      "Caregiver",
			CatName:       "Mochi",
			CatBreed:      "Domestic Shorthair",
			CatAge:        &age,
			CatWeight:     &weight,
			DailyTargetML: 210.0,
			IsActive:      true,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		tracker := model.NewTracker(user.ID, user.DailyTargetML, today)
		tracker.LastUpdated = now
		if err := tx.Create(tracker).Error; err != nil {
			return err
		}

		for i, amount := range []float64{70, 70} {
			feeding := &model.FeedingLog{
				UserID:        user.ID,
				AmountML:      amount,
				FlushedBefore: true,
				FlushedAfter:  true,
				TimeGiven:     now.Add(time.Duration(-4+2*i) * time.Hour),
			}
			if err := tx.Create(feeding).Error; err != nil {
				return err
			}
			tracker.AddFeeding(amount, feeding.TimeGiven)
		}
		if err := tx.Save(tracker).Error; err != nil {
			return err
		}

		med := &model.MedicationLog{
			UserID:         user.ID,
			MedicationName: "Mirtazapine",
			Dosage:         "1.88mg",
			AmountML:       5,
			Route:          "E-tube",
			Notes:          "appetite stimulant",
			FlushedBefore:  true,
			FlushedAfter:   true,
			TimeGiven:      now.Add(-3 * time.Hour),
		}
		if err := tx.Create(med).Error; err != nil {
			return err
		}

		log.Printf("seeded demo user %s with tracker and sample logs", demoEmail)
		return nil
	})
}
