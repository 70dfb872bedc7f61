package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	deviceIDPrefix  = "device-"
	unknownOperator = "unknown"
)

// DeviceService owns the identity of this scanner.
type DeviceService interface {
	// DeviceID returns the persisted device id, creating it on first use.
	DeviceID(ctx context.Context) (string, error)

	// NewSession builds the context threaded into admission and sync.
	// operator overrides the identity carried by the token.
	NewSession(ctx context.Context, token, operator string) (models.Session, error)
}

type deviceService struct {
	metadataRepo metadata.Repository
	newID        func() string
}

func NewDeviceService(metadataRepo metadata.Repository) DeviceService {
	return &deviceService{
		metadataRepo: metadataRepo,
		newID:        func() string { return deviceIDPrefix + uuid.NewString() },
	}
}

func (s *deviceService) DeviceID(ctx context.Context) (string, error) {
	id, ok, err := s.metadataRepo.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("load device id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = s.newID()
	if err := s.metadataRepo.Set(ctx, metadata.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

func (s *deviceService) NewSession(ctx context.Context, token, operator string) (models.Session, error) {
	deviceID, err := s.DeviceID(ctx)
	if err != nil {
		return models.Session{}, err
	}

	if operator == "" {
		operator = OperatorFromToken(token)
	}
	if operator == "" {
		operator = unknownOperator
	}

	return models.Session{DeviceID: deviceID, Operator: operator, Token: token}, nil
}

// OperatorFromToken returns the subject of a JWT without verifying it. The
// server verifies the token; the scanner only needs a display identity.
func OperatorFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
