package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"netops/internal/repository"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenClaims is what a verified bearer token asserts: a station identity
// and the token salt it was issued under. A token whose salt no longer
// matches the station's current salt has been revoked.
type TokenClaims struct {
	StationID uint
	Salt      string
}

type AuthService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	NewTokenSalt() string
	IssueToken(stationID uint, salt string) (string, error)
	ParseToken(token string) (*TokenClaims, error)
	Login(ctx context.Context, station, password string) (string, error)
}

type authService struct {
	stations repository.StationRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(stations repository.StationRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		stations: stations,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewTokenSalt returns a fresh random salt. Writing it to the station
// revokes every token issued under the previous salt.
func (s *authService) NewTokenSalt() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is not recoverable
		panic(fmt.Sprintf("token salt: %v", err))
	}
	return hex.EncodeToString(buf)
}

func (s *authService) IssueToken(stationID uint, salt string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  float64(stationID),
		"salt": salt,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
		"jti":  uuid.NewString(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrInvalidCredentials)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidCredentials)
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, fmt.Errorf("%w: invalid subject claim", ErrInvalidCredentials)
	}
	salt, _ := claims["salt"].(string)
	return &TokenClaims{StationID: uint(sub), Salt: salt}, nil
}

// Login verifies the station's credentials and issues a bearer token bound
// to the station's current salt. It also bumps last_seen_at, like a
// successful ingestion does.
func (s *authService) Login(ctx context.Context, station, password string) (string, error) {
	st, err := s.stations.GetByName(ctx, station)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !s.VerifyPassword(st.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	token, err := s.IssueToken(st.ID, st.TokenSalt)
	if err != nil {
		return "", err
	}
	if err := s.stations.TouchLastSeen(ctx, st.ID, time.Now().UTC()); err != nil {
		return "", err
	}
	return token, nil
}
