package dto

import authdomain "sinara-backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	DeviceID string `json:"device_id"`
}

type RegisterPushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	SessionID   string           `json:"session_id"`
	User        *authdomain.User `json:"user"`
}
