package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrTokenInvalid = errors.New("token is invalid or expired")

const RoleAdmin = "admin"

// AuthService authenticates the single configured dashboard administrator.
type AuthService struct {
	admin              domain.User
	jwtSecret          string
	jwtExpirationHours time.Duration
	now                func() time.Time
}

// NewAuthService hashes the admin password once at construction.
func NewAuthService(adminUsername, adminPassword, jwtSecret string, jwtExpHours time.Duration) (*AuthService, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{
		admin: domain.User{
			ID:       1,
			Username: adminUsername,
			Password: string(hash),
			Role:     RoleAdmin,
		},
		jwtSecret:          jwtSecret,
		jwtExpirationHours: jwtExpHours,
		now:                time.Now,
	}, nil
}

func (s *AuthService) Login(dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	if dto.Username != s.admin.Username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	issued := s.now()
	expires := issued.Add(s.jwtExpirationHours)
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(s.admin.ID),
		"exp":      expires.Unix(),
		"iat":      issued.Unix(),
		"role":     s.admin.Role,
		"username": s.admin.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:     signed,
		UserID:    s.admin.ID,
		Username:  s.admin.Username,
		Role:      s.admin.Role,
		ExpiresAt: expires.Unix(),
	}, nil
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, nil, fmt.Errorf("%w: malformed token", ErrTokenInvalid)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, nil, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, nil, fmt.Errorf("%w: token not valid yet", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, nil, ErrTokenInvalid
	}
	return token, claims, nil
}
