package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSecret = []byte("test-secret-key")

func validRegisterInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "Sup3rSecret",
		FirstName: "Alex",
		CatName:   "Mochi",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	svc := NewAuthService(repos, clk, testSecret, time.Hour)

	user, token, err := svc.Register(context.Background(), validRegisterInput("Alex@Example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alex@example.com", user.Email, "email is normalized to lower case")
	require.Equal(t, 210.0, user.DailyTargetML, "missing target falls back to the default")
	require.NotEqual(t, "Sup3rSecret", user.PasswordHash)

	got, loginToken, err := svc.Login(context.Background(), "alex@example.com", "Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, loginToken)
	require.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLogin, "login stamps last_login")
	require.True(t, got.LastLogin.Equal(clk.Now()))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewAuthService(repos, testClock(), testSecret, time.Hour)

	_, _, err := svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewAuthService(repos, testClock(), testSecret, time.Hour)

	in := validRegisterInput("not-an-email")
	_, _, err := svc.Register(context.Background(), in)
	require.Error(t, err)

	in = validRegisterInput("a@example.com")
	in.Password = "weak"
	_, _, err = svc.Register(context.Background(), in)
	require.Error(t, err)

	in = validRegisterInput("a@example.com")
	in.FirstName = "  "
	_, _, err = svc.Register(context.Background(), in)
	require.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewAuthService(repos, testClock(), testSecret, time.Hour)

	_, _, err := svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@example.com", "WrongPass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@example.com", "Sup3rSecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewAuthService(repos, testClock(), testSecret, time.Hour)

	user, _, err := svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), user.ID, "Sup3rSecret"))

	_, _, err = svc.Login(context.Background(), "a@example.com", "Sup3rSecret")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestUpdateProfile(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewAuthService(repos, testClock(), testSecret, time.Hour)

	user, _, err := svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.NoError(t, err)

	name := "Luna"
	target := 240.0
	got, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		CatName:       &name,
		DailyTargetML: &target,
	})
	require.NoError(t, err)
	require.Equal(t, "Luna", got.CatName)
	require.Equal(t, 240.0, got.DailyTargetML)
	require.Equal(t, "Alex", got.FirstName, "untouched fields keep their values")

	bad := -1.0
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{DailyTargetML: &bad})
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestChangePassword(t *testing.T) {
	repos := newTestRegistry(t)
	svc := NewAuthService(repos, testClock(), testSecret, time.Hour)

	user, _, err := svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "NewSecret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), user.ID, "Sup3rSecret", "NewSecret1")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@example.com", "NewSecret1")
	require.NoError(t, err)
}

func TestDelete_RemovesOwnedData(t *testing.T) {
	repos := newTestRegistry(t)
	clk := testClock()
	svc := NewAuthService(repos, clk, testSecret, time.Hour)
	feeding := NewFeedingService(repos, testCache(), clk, testDefaultTarget)

	user, _, err := svc.Register(context.Background(), validRegisterInput("a@example.com"))
	require.NoError(t, err)
	_, err = feeding.LogFeeding(context.Background(), user.ID, FeedingInput{AmountML: 70})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), user.ID, "Sup3rSecret"))

	_, err = svc.GetUser(context.Background(), user.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repos.Trackers().FindByUserAndDate(context.Background(), user.ID, clk.Today())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, total, err := repos.Feedings().ListByUser(context.Background(), user.ID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), total)
}
