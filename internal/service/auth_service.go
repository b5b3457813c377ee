package service

import (
	"context"
	"time"

	"github.com/Zeek-James/pem-zee/internal/config"
	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/model"
	"github.com/Zeek-James/pem-zee/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	bcryptCost = 12
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uint) (*dto.UserResponse, error)
	Register(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func unauthorized(msg string) error {
	return &LedgerError{Kind: ErrUnauthorized, Message: msg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, unauthorized("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, unauthorized("Invalid username or password")
	}

	now := time.Now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("could not record last login")
	} else {
		user.LastLogin = &now
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, unauthorized("Refresh token is invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenTypeRefresh {
		return nil, unauthorized("Refresh token is invalid or expired")
	}
	// JSON numbers decode as float64
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, unauthorized("Malformed token")
	}

	user, err := s.repo.FindByID(ctx, uint(rawID))
	if err != nil || !user.IsActive {
		return nil, unauthorized("User not found or inactive")
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("User %d not found", userID)
		}
		return nil, err
	}
	resp := userResponse(user)
	return &resp, nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterUserRequest) (*dto.UserResponse, error) {
	role, err := s.repo.FindRoleByName(ctx, req.Role)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, invalid("Unknown role %q", req.Role)
		}
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsConstraintViolation(err) {
			return nil, conflict("Username or email already registered", err)
		}
		return nil, err
	}
	user.Role = role
	resp := userResponse(user)
	return &resp, nil
}

// HashPassword hashes with the cost used for every stored credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenTypeAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenTypeRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, typ string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":     user.ID,
		"username":    user.Username,
		"role":        roleName(user),
		"permissions": permissionKeys(user),
		"typ":         typ,
		"exp":         now.Add(duration).Unix(),
		"iat":         now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func roleName(u *model.User) string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

func permissionKeys(u *model.User) []string {
	keys := []string{}
	if u.Role == nil {
		return keys
	}
	for _, p := range u.Role.Permissions {
		keys = append(keys, p.Key())
	}
	return keys
}

func userResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        roleName(u),
		Permissions: permissionKeys(u),
		IsActive:    u.IsActive,
	}
	if u.LastLogin != nil {
		ts := formatTimestamp(*u.LastLogin)
		resp.LastLogin = &ts
	}
	return resp
}
