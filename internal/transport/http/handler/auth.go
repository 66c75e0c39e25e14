package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/app"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Username         string `json:"username" binding:"required,min=3,max=50"`
	Email            string `json:"email" binding:"required,email,max=128"`
	Password         string `json:"password" binding:"required,min=6,max=128"`
	SecurityQuestion string `json:"securityQuestion" binding:"max=255"`
	SecurityAnswer   string `json:"securityAnswer" binding:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username       string  `json:"username" binding:"omitempty,min=3,max=50"`
	Bio            *string `json:"bio"`
	ProfilePicture string  `json:"profilePicture"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=128"`
}

type ForgotPasswordRequest struct {
	Email          string `json:"email" binding:"required,email"`
	SecurityAnswer string `json:"securityAnswer" binding:"required"`
	NewPassword    string `json:"newPassword" binding:"required,min=6,max=128"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Register(app.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		serviceError(c, err, "failed to register user")
		return
	}

	response.OK(c, http.StatusCreated, "User registered successfully", gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		serviceError(c, err, "failed to login")
		return
	}

	response.OK(c, http.StatusOK, "Login successful", gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		serviceError(c, err, "failed to fetch profile")
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{"user": user})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.authService.UpdateProfile(userID, app.UpdateProfileInput{
		Username:       req.Username,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		serviceError(c, err, "failed to update profile")
		return
	}

	response.OK(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "user not found in token")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		serviceError(c, err, "failed to change password")
		return
	}

	response.OK(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	err := h.authService.ForgotPassword(req.Email, req.SecurityAnswer, req.NewPassword)
	if err != nil {
		if errors.Is(err, app.ErrNoSecurityQuestion) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		serviceError(c, err, "failed to reset password")
		return
	}

	response.OK(c, http.StatusOK, "Password has been reset successfully", nil)
}

func (h *AuthHandler) GetSecurityQuestion(c *gin.Context) {
	email := c.Param("email")

	question, err := h.authService.GetSecurityQuestion(email)
	if err != nil {
		// An account without a configured question is indistinguishable
		// from a missing account on this public endpoint.
		if errors.Is(err, app.ErrNoSecurityQuestion) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		serviceError(c, err, "failed to fetch security question")
		return
	}

	response.OK(c, http.StatusOK, "", gin.H{"securityQuestion": question})
}
