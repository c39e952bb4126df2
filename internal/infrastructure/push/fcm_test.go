package push

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/recruit-notes/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMulticaster struct{ mock.Mock }

func (m *mockMulticaster) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	args := m.Called(ctx, msg)
	resp, _ := args.Get(0).(*messaging.BatchResponse)
	return resp, args.Error(1)
}

type mockDevices struct{ mock.Mock }

func (m *mockDevices) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).([]domain.Device)
	return d, args.Error(1)
}

func (m *mockDevices) Disable(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

func TestFCM_SendsToAllTokens(t *testing.T) {
	devs := &mockDevices{}
	devs.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{
		{DeviceID: "d1", Token: "t1"}, {DeviceID: "d2", Token: "t2"},
	}, nil)
	mc := &mockMulticaster{}
	var sent *messaging.MulticastMessage
	mc.On("SendEachForMulticast", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*messaging.MulticastMessage) }).
		Return(&messaging.BatchResponse{SuccessCount: 2, Responses: []*messaging.SendResponse{{Success: true}, {Success: true}}}, nil)

	newFCM(mc, devs).SendToUser(context.Background(), "u1", "title", "body", map[string]string{"k": "v"})

	require.NotNil(t, sent)
	assert.Equal(t, []string{"t1", "t2"}, sent.Tokens)
	assert.Equal(t, "title", sent.Notification.Title)
	devs.AssertNotCalled(t, "Disable", mock.Anything, mock.Anything)
}

func TestFCM_NoDevicesSkipsSend(t *testing.T) {
	devs := &mockDevices{}
	devs.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{}, nil)
	mc := &mockMulticaster{}

	newFCM(mc, devs).SendToUser(context.Background(), "u1", "t", "b", nil)
	mc.AssertNotCalled(t, "SendEachForMulticast", mock.Anything, mock.Anything)
}

func TestFCM_SendErrorIsSwallowed(t *testing.T) {
	devs := &mockDevices{}
	devs.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{{DeviceID: "d1", Token: "t1"}}, nil)
	mc := &mockMulticaster{}
	mc.On("SendEachForMulticast", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	assert.NotPanics(t, func() {
		newFCM(mc, devs).SendToUser(context.Background(), "u1", "t", "b", nil)
	})
}

func TestFCM_FailedTokenNotUnregisteredKeepsDevice(t *testing.T) {
	devs := &mockDevices{}
	devs.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{{DeviceID: "d1", Token: "t1"}}, nil)
	mc := &mockMulticaster{}
	mc.On("SendEachForMulticast", mock.Anything, mock.Anything).Return(&messaging.BatchResponse{
		FailureCount: 1,
		Responses:    []*messaging.SendResponse{{Success: false, Error: errors.New("internal")}},
	}, nil)

	newFCM(mc, devs).SendToUser(context.Background(), "u1", "t", "b", nil)
	devs.AssertNotCalled(t, "Disable", mock.Anything, mock.Anything)
}
