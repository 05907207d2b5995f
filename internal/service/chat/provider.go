package chat

import (
	"context"
	"errors"
)

// Conversation roles accepted from clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned when the server runs without a model API key.
var ErrNotConfigured = errors.New("chat provider not configured")

// Turn is one message of the conversation history.
type Turn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// Provider is the language model behind the relay.
type Provider interface {
	// Reply answers message given the prior turns, oldest first.
	Reply(ctx context.Context, history []Turn, message string) (string, error)
	Close() error
}

// Unconfigured answers every request with ErrNotConfigured.
type Unconfigured struct{}

// Reply implements Provider.
func (Unconfigured) Reply(context.Context, []Turn, string) (string, error) {
	return "", ErrNotConfigured
}

// Close implements Provider.
func (Unconfigured) Close() error { return nil }
