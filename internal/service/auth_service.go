package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/catelog/catetube-backend/internal/auth"
	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/repository"
	"gorm.io/gorm"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type RegisterInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	CatName       string
	CatBreed      string
	CatAge        *int
	CatWeight     *float64
	DailyTargetML float64
	Timezone      string
}

type ProfileUpdate struct {
	FirstName     *string
	LastName      *string
	CatName       *string
	CatBreed      *string
	CatAge        *int
	CatWeight     *float64
	DailyTargetML *float64
	Timezone      *string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, newPassword string) error
	Deactivate(ctx context.Context, userID, password string) error
	// Delete removes the account and everything it owns. A referential
	// integrity failure surfaces as ErrConflict, distinct from generic
	// storage errors.
	Delete(ctx context.Context, userID, password string) error
}

type authService struct {
	repos         repository.Registry
	clock         clock.Clock
	secretKey     []byte
	tokenValidity time.Duration
}

func NewAuthService(repos repository.Registry, clk clock.Clock, secretKey []byte, tokenValidity time.Duration) AuthService {
	return &authService{repos: repos, clock: clk, secretKey: secretKey, tokenValidity: tokenValidity}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailRe.MatchString(email) {
		return nil, "", errors.New("invalid email format")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, "", errors.New("first_name is required")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}
	if _, err := s.repos.Users().FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	target := in.DailyTargetML
	if target <= 0 {
		target = 210.0
	}
	tz := in.Timezone
	if tz == "" {
		tz = "UTC"
	}
	user := &model.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		CatName:       in.CatName,
		CatBreed:      in.CatBreed,
		CatAge:        in.CatAge,
		CatWeight:     in.CatWeight,
		DailyTargetML: target,
		Timezone:      tz,
		IsActive:      true,
	}
	if err := s.repos.Users().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", errors.New("email and password are required")
	}
	user, err := s.repos.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDeactivated
	}

	now := s.clock.Now()
	if err := s.repos.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", err
	}
	user.LastLogin = &now

	token, err := auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repos.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.CatName != nil {
		user.CatName = *in.CatName
	}
	if in.CatBreed != nil {
		user.CatBreed = *in.CatBreed
	}
	if in.CatAge != nil {
		user.CatAge = in.CatAge
	}
	if in.CatWeight != nil {
		user.CatWeight = in.CatWeight
	}
	if in.DailyTargetML != nil {
		if *in.DailyTargetML <= 0 {
			return nil, ErrInvalidTarget
		}
		user.DailyTargetML = *in.DailyTargetML
	}
	if in.Timezone != nil {
		user.Timezone = *in.Timezone
	}
	if err := s.repos.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.repos.Users().Update(ctx, user)
}

func (s *authService) Deactivate(ctx context.Context, userID, password string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	user.IsActive = false
	return s.repos.Users().Update(ctx, user)
}

func (s *authService) Delete(ctx context.Context, userID, password string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	if err := s.repos.Users().DeleteCascade(ctx, []string{user.ID}); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrConflict
		}
		return err
	}
	return nil
}
