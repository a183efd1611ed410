package fcm

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client is the subset of the FCM messaging client used here.
type Client interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Sender delivers test pushes.
type Sender struct {
	client Client
}

// NewSender wraps an existing client.
func NewSender(client Client) *Sender {
	return &Sender{client: client}
}

// Dial initializes a Firebase app from a service account file.
func Dial(ctx context.Context, credentialsFile, projectID string) (*Sender, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("firebase credentials file: %w", err)
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return NewSender(client), nil
}

// Send delivers t to token and returns the message id.
func (s *Sender) Send(ctx context.Context, token string, t TestPush) (string, error) {
	if token == "" {
		return "", fmt.Errorf("send test push: empty token")
	}
	id, err := s.client.Send(ctx, BuildMessage(token, t))
	if err != nil {
		return "", fmt.Errorf("send test push: %w", err)
	}
	return id, nil
}
