package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc     service.AuthService
	sweeper *service.Sweeper
}

func NewAuthHandler(svc service.AuthService, sweeper *service.Sweeper) *AuthHandler {
	return &AuthHandler{svc: svc, sweeper: sweeper}
}

type UserResponse struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	CatName       string   `json:"cat_name"`
	CatBreed      string   `json:"cat_breed"`
	CatAge        *int     `json:"cat_age"`
	CatWeight     *float64 `json:"cat_weight"`
	DailyTargetML float64  `json:"daily_target_ml"`
	Timezone      string   `json:"timezone"`
	CreatedAt     string   `json:"created_at"`
	LastLogin     *string  `json:"last_login"`
	IsActive      bool     `json:"is_active"`
}

func toUserResponse(u *model.User) UserResponse {
	var lastLogin *string
	if u.LastLogin != nil {
		v := u.LastLogin.Format(time.RFC3339)
		lastLogin = &v
	}
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		CatName:       u.CatName,
		CatBreed:      u.CatBreed,
		CatAge:        u.CatAge,
		CatWeight:     u.CatWeight,
		DailyTargetML: u.DailyTargetML,
		Timezone:      u.Timezone,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		LastLogin:     lastLogin,
		IsActive:      u.IsActive,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	body := struct {
		Email         string   `json:"email"`
		Password      string   `json:"password"`
		FirstName     string   `json:"first_name"`
		LastName      string   `json:"last_name"`
		CatName       string   `json:"cat_name"`
		CatBreed      string   `json:"cat_breed"`
		CatAge        *int     `json:"cat_age"`
		CatWeight     *float64 `json:"cat_weight"`
		DailyTargetML float64  `json:"daily_target_ml"`
		Timezone      string   `json:"timezone"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	user, token, err := h.svc.Register(c.Request().Context(), service.RegisterInput{
		Email:         body.Email,
		Password:      body.Password,
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		CatName:       body.CatName,
		CatBreed:      body.CatBreed,
		CatAge:        body.CatAge,
		CatWeight:     body.CatWeight,
		DailyTargetML: body.DailyTargetML,
		Timezone:      body.Timezone,
	})
	if err != nil {
		if err == service.ErrEmailTaken {
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", err.Error()))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"token":   token,
		"user":    toUserResponse(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	user, token, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials, service.ErrAccountDeactivated:
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", err.Error()))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    toUserResponse(user),
	})
}

// Logout exists for client symmetry; bearer tokens are stateless so there
// is nothing to revoke server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	user, err := h.svc.GetUser(c.Request().Context(), uid)
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to load user"))
	}
	return c.JSON(http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	body := struct {
		FirstName     *string  `json:"first_name"`
		LastName      *string  `json:"last_name"`
		CatName       *string  `json:"cat_name"`
		CatBreed      *string  `json:"cat_breed"`
		CatAge        *int     `json:"cat_age"`
		CatWeight     *float64 `json:"cat_weight"`
		DailyTargetML *float64 `json:"daily_target_ml"`
		Timezone      *string  `json:"timezone"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	user, err := h.svc.UpdateProfile(c.Request().Context(), uid, service.ProfileUpdate{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		CatName:       body.CatName,
		CatBreed:      body.CatBreed,
		CatAge:        body.CatAge,
		CatWeight:     body.CatWeight,
		DailyTargetML: body.DailyTargetML,
		Timezone:      body.Timezone,
	})
	if err != nil {
		if err == service.ErrNotFound {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserResponse(user),
	})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if body.CurrentPassword == "" || body.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "current and new passwords are required"))
	}
	if err := h.svc.ChangePassword(c.Request().Context(), uid, body.CurrentPassword, body.NewPassword); err != nil {
		if err == service.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "current password is incorrect"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *AuthHandler) Deactivate(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	body := struct {
		Password string `json:"password"`
	}{}
	if err := c.Bind(&body); err != nil || body.Password == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "password confirmation required"))
	}
	if err := h.svc.Deactivate(c.Request().Context(), uid, body.Password); err != nil {
		if err == service.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "incorrect password"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to deactivate account"))
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Account deactivated successfully"})
}

func (h *AuthHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	body := struct {
		Password string `json:"password"`
	}{}
	if err := c.Bind(&body); err != nil || body.Password == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "password confirmation required"))
	}
	if err := h.svc.Delete(c.Request().Context(), uid, body.Password); err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "incorrect password"))
		case service.ErrConflict:
			return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "cannot delete account due to data dependencies"))
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user already deleted"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "database error occurred"))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

// CleanupInactive is the manual sweep trigger, restricted to admin
// accounts.
func (h *AuthHandler) CleanupInactive(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	user, err := h.svc.GetUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "unknown user"))
	}
	if !strings.HasSuffix(user.Email, "@admin.com") {
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "admin access required"))
	}
	result, err := h.sweeper.Sweep(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "failed to cleanup users"))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "User cleanup completed",
		"result":  result,
	})
}
