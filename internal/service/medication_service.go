package service

import (
	"context"
	"errors"

	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
)

type MedicationInput struct {
	MedicationName string
	Dosage         string
	AmountML       float64
	Route          string
	Notes          string
	FlushedBefore  bool
	FlushedAfter   bool
}

type MedicationService interface {
	LogMedication(ctx context.Context, userID string, in MedicationInput) (*model.MedicationLog, error)
	ListMedications(ctx context.Context, userID string, limit, offset int) ([]model.MedicationLog, int64, error)
}

type medicationService struct {
	repos repository.Registry
	clock clock.Clock
}

func NewMedicationService(repos repository.Registry, clk clock.Clock) MedicationService {
	return &medicationService{repos: repos, clock: clk}
}

// LogMedication appends a medication log. Medication flush volume does not
// count toward the feeding tracker.
func (s *medicationService) LogMedication(ctx context.Context, userID string, in MedicationInput) (*model.MedicationLog, error) {
	if in.MedicationName == "" {
		return nil, errors.New("medication_name is required")
	}
	if in.Dosage == "" {
		return nil, errors.New("dosage is required")
	}
	if in.AmountML <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Route == "" {
		in.Route = "E-tube"
	}
	log := &model.MedicationLog{
		UserID:         userID,
		MedicationName: in.MedicationName,
		Dosage:         in.Dosage,
		AmountML:       in.AmountML,
		Route:          in.Route,
		Notes:          in.Notes,
		FlushedBefore:  in.FlushedBefore,
		FlushedAfter:   in.FlushedAfter,
		TimeGiven:      s.clock.Now(),
	}
	if err := s.repos.Medications().Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *medicationService) ListMedications(ctx context.Context, userID string, limit, offset int) ([]model.MedicationLog, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Medications().ListByUser(ctx, userID, limit, offset)
}
