package usecase

import (
	"errors"
	"time"

	authdomain "sinara-backend/internal/auth/domain"
	authdto "sinara-backend/internal/auth/dto"
	"sinara-backend/internal/auth/repository"
	"sinara-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthUsecase owns users and device sessions. The notification core reads
// live push tokens from the sessions managed here but never revokes them.
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Logout(sessionID string) error
	ValidateToken(tokenString string) (*authdomain.User, string, error)
	RegisterPushToken(userID, sessionID, token string) error
	UnregisterPushToken(userID, sessionID string) error
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.DeviceSessionRepository
	config      *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, sessionRepo repository.DeviceSessionRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      cfg,
	}
}

// Login authenticates the user and opens a device session for the calling
// device. Each device keeps its own session so multi-device push works.
func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("invalid email or password")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, errors.New("invalid email or password")
	}

	session := &authdomain.DeviceSession{
		UserID:    user.ID,
		DeviceID:  req.DeviceID,
		ExpiresAt: time.Now().Add(u.config.SessionExpiry),
	}
	if err := u.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	accessToken, err := u.generateAccessToken(user, session.ID)
	if err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken: accessToken,
		SessionID:   session.ID,
		User:        user,
	}, nil
}

func (u *authUsecase) Logout(sessionID string) error {
	return u.sessionRepo.Revoke(sessionID)
}

// RegisterPushToken attaches a push token to the caller's own session.
func (u *authUsecase) RegisterPushToken(userID, sessionID, token string) error {
	return u.sessionRepo.SetPushToken(sessionID, userID, token)
}

func (u *authUsecase) UnregisterPushToken(userID, sessionID string) error {
	return u.sessionRepo.ClearPushToken(sessionID, userID)
}

func (u *authUsecase) generateAccessToken(user *authdomain.User, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"session_id": sessionID,
		"email":      user.Email,
		"role":       user.Role,
		"exp":        time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

// ValidateToken resolves the user and session behind a bearer token. The
// session must still exist and be neither revoked nor expired.
func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	session, err := u.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, "", err
	}
	if session == nil || session.IsRevoked || session.ExpiresAt.Before(time.Now()) {
		return nil, "", errors.New("session expired or revoked")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, "", err
	}

	if user == nil {
		return nil, "", errors.New("user not found")
	}

	return user, sessionID, nil
}
