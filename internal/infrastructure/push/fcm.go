// Package push delivers notifications to registered devices through Firebase
// Cloud Messaging.
package push

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/recruit-notes/internal/domain"
	"google.golang.org/api/option"
)

// Sender pushes a message to every enabled device of a user.
type Sender interface {
	SendToUser(ctx context.Context, userID, title, body string, data map[string]string)
}

type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type deviceStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	Disable(ctx context.Context, deviceID string) error
}

// FCM is a Sender backed by Firebase Cloud Messaging.
type FCM struct {
	client  multicaster
	devices deviceStore
}

// NewFCM initialises Firebase from a service account file.
func NewFCM(ctx context.Context, credentialsPath string, devices deviceStore) (*FCM, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCM{client: client, devices: devices}, nil
}

func newFCM(client multicaster, devices deviceStore) *FCM {
	return &FCM{client: client, devices: devices}
}

// SendToUser is best effort. Tokens FCM reports as unregistered are disabled
// so they are skipped next time.
func (p *FCM) SendToUser(ctx context.Context, userID, title, body string, data map[string]string) {
	devices, err := p.devices.ListByUser(ctx, userID)
	if err != nil {
		slog.Warn("push: list devices", "user_id", userID, "err", err)
		return
	}
	if len(devices) == 0 {
		return
	}
	tokens := make([]string, len(devices))
	for i, d := range devices {
		tokens[i] = d.Token
	}

	resp, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		slog.Warn("push: send", "user_id", userID, "err", err)
		return
	}
	if resp.FailureCount == 0 {
		return
	}
	for i, r := range resp.Responses {
		if r.Success || i >= len(devices) {
			continue
		}
		slog.Warn("push: device rejected", "user_id", userID, "device_id", devices[i].DeviceID, "err", r.Error)
		if messaging.IsUnregistered(r.Error) {
			if err := p.devices.Disable(ctx, devices[i].DeviceID); err != nil {
				slog.Warn("push: disable device", "device_id", devices[i].DeviceID, "err", err)
			}
		}
	}
}

// Noop drops every push; used when no Firebase credentials are configured.
type Noop struct{}

func (Noop) SendToUser(context.Context, string, string, string, map[string]string) {}
