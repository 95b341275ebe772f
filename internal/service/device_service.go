package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medlens/internal/config"
	"medlens/internal/domain"
)

const deviceAudience = "device"

// DeviceClaims are the JWT claims of a device token. The token addresses a
// device's state and carries no user identity.
type DeviceClaims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"device_id"`
}

// DeviceToken is returned when a device registers.
type DeviceToken struct {
	DeviceID  string    `json:"device_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeviceService issues and validates device tokens.
type DeviceService interface {
	Register(ctx context.Context) (*DeviceToken, error)
	ValidateToken(tokenString string) (*DeviceClaims, error)
}

type deviceService struct {
	cfg config.DeviceConfig
	now func() time.Time
}

// NewDeviceService creates a new DeviceService implementation.
func NewDeviceService(cfg config.DeviceConfig) DeviceService {
	return &deviceService{cfg: cfg, now: time.Now}
}

func (s *deviceService) Register(_ context.Context) (*DeviceToken, error) {
	now := s.now()
	deviceID := uuid.New().String()
	expiresAt := now.Add(s.cfg.TokenExpiry)

	claims := &DeviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{deviceAudience},
		},
		DeviceID: deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing device token: %w", err)
	}

	return &DeviceToken{DeviceID: deviceID, Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *deviceService) ValidateToken(tokenString string) (*DeviceClaims, error) {
	claims := &DeviceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithAudience(deviceAudience),
		jwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid || claims.DeviceID == "" || claims.DeviceID != claims.Subject {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
