package device

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/pkg/id"
	"github.com/recruit-notes/internal/pkg/validate"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Device, error)
	// Register stores a push token for the calling user. A device UUID seen
	// before is moved to the caller and its token replaced.
	Register(ctx context.Context, userID string, req domain.RegisterDeviceRequest) (*domain.Device, error)
}

type deviceStore interface {
	Put(ctx context.Context, d *domain.Device) error
	GetByUUID(ctx context.Context, uuid string) (*domain.Device, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	Reassign(ctx context.Context, deviceID, userID, token string) error
}

type service struct {
	repo deviceStore
}

func NewService(repo deviceStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Device, error) {
	devices, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []domain.Device{}
	}
	return devices, nil
}

func (s *service) Register(ctx context.Context, userID string, req domain.RegisterDeviceRequest) (*domain.Device, error) {
	req.UUID = strings.TrimSpace(req.UUID)
	req.Token = strings.TrimSpace(req.Token)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUUID(ctx, req.UUID)
	switch {
	case err == nil:
		if err := s.repo.Reassign(ctx, existing.DeviceID, userID, req.Token); err != nil {
			return nil, err
		}
		existing.UserID = userID
		existing.Token = req.Token
		existing.Enable = true
		existing.UpdatedAt = time.Now().UTC()
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	now := time.Now().UTC()
	d := &domain.Device{
		DeviceID:  id.New(),
		UUID:      req.UUID,
		UserID:    userID,
		Token:     req.Token,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
