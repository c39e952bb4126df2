package device

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/recruit-notes/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDeviceStore) GetByUUID(ctx context.Context, uuid string) (*domain.Device, error) {
	args := m.Called(ctx, uuid)
	if d := args.Get(0); d != nil {
		return d.(*domain.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceStore) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	devices, _ := args.Get(0).([]domain.Device)
	return devices, args.Error(1)
}

func (m *mockDeviceStore) Reassign(ctx context.Context, deviceID, userID, token string) error {
	return m.Called(ctx, deviceID, userID, token).Error(0)
}

func TestRegister_NewDevice(t *testing.T) {
	repo := &mockDeviceStore{}
	ctx := context.Background()
	repo.On("GetByUUID", ctx, "uuid-1").Return(nil, fmt.Errorf("device not found: %w", domain.ErrNotFound))
	repo.On("Put", ctx, mock.MatchedBy(func(d *domain.Device) bool {
		return d.UserID == "u1" && d.Token == "tok" && d.Enable
	})).Return(nil)

	d, err := NewService(repo).Register(ctx, "u1", domain.RegisterDeviceRequest{UUID: " uuid-1 ", Token: "tok"})
	require.NoError(t, err)
	assert.NotEmpty(t, d.DeviceID)
	assert.Equal(t, "uuid-1", d.UUID)
	repo.AssertExpectations(t)
}

func TestRegister_ExistingDeviceMovesToCaller(t *testing.T) {
	repo := &mockDeviceStore{}
	ctx := context.Background()
	repo.On("GetByUUID", ctx, "uuid-1").Return(&domain.Device{DeviceID: "d1", UUID: "uuid-1", UserID: "u0", Token: "old"}, nil)
	repo.On("Reassign", ctx, "d1", "u1", "new").Return(nil)

	d, err := NewService(repo).Register(ctx, "u1", domain.RegisterDeviceRequest{UUID: "uuid-1", Token: "new"})
	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, "new", d.Token)
	assert.True(t, d.Enable)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_LookupError(t *testing.T) {
	repo := &mockDeviceStore{}
	ctx := context.Background()
	repo.On("GetByUUID", ctx, "uuid-1").Return(nil, errors.New("timeout"))

	_, err := NewService(repo).Register(ctx, "u1", domain.RegisterDeviceRequest{UUID: "uuid-1", Token: "t"})
	assert.EqualError(t, err, "timeout")
}

func TestRegister_MissingToken(t *testing.T) {
	_, err := NewService(&mockDeviceStore{}).Register(context.Background(), "u1", domain.RegisterDeviceRequest{UUID: "uuid-1"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo := &mockDeviceStore{}
	repo.On("ListByUser", mock.Anything, "u1").Return(nil, nil)

	devices, err := NewService(repo).List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, devices)
}
