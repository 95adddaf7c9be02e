package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogMedication(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	user := createTestUser(t, repos, "a@example.com", 210)
	svc := NewMedicationService(repos, clk)

	log, err := svc.LogMedication(context.Background(), user.ID, MedicationInput{
		MedicationName: "Mirtazapine",
		Dosage:         "2mg",
		AmountML:       5,
	})
	require.NoError(t, err)
	require.NotZero(t, log.ID)
	require.Equal(t, "E-tube", log.Route, "route defaults when omitted")
	require.True(t, log.TimeGiven.Equal(clk.Now()))
}

func TestLogMedication_Validation(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewMedicationService(repos, testClock())
	ctx := context.Background()

	_, err := svc.LogMedication(ctx, "u1", MedicationInput{Dosage: "2mg", AmountML: 5})
	require.Error(t, err)
	_, err = svc.LogMedication(ctx, "u1", MedicationInput{MedicationName: "Mirtazapine", AmountML: 5})
	require.Error(t, err)
	_, err = svc.LogMedication(ctx, "u1", MedicationInput{MedicationName: "Mirtazapine", Dosage: "2mg"})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLogMedication_DoesNotTouchTracker(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	user := createTestUser(t, repos, "a@example.com", 210)
	meds := NewMedicationService(repos, clk)
	tracker := NewTrackerService(repos, testCache(), clk, testDefaultTarget)

	_, err := meds.LogMedication(context.Background(), user.ID, MedicationInput{
		MedicationName: "Ondansetron",
		Dosage:         "1mg",
		AmountML:       12,
	})
	require.NoError(t, err)

	tr, err := tracker.GetOrCreateToday(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, tr.TotalFedML, "medication flush volume never counts as feeding")
	require.Equal(t, 210.0, tr.RemainingML)
}
