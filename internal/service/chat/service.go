// Package chat relays learner questions to the AI tutor.
package chat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	prommetrics "github.com/aimd54/hangul-path/internal/metrics"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// Relay limits.
const (
	MaxHistoryTurns  = 20
	MaxMessageLength = 2000 // runes
)

// Relay errors.
var (
	ErrInvalidRequest = errors.New("invalid chat request")
	ErrMessageTooLong = fmt.Errorf("%w: message too long", ErrInvalidRequest)
	ErrEmptyMessage   = fmt.Errorf("%w: message is empty", ErrInvalidRequest)
	ErrUpstream       = errors.New("chat provider failed")
)

// Request is the relay payload sent by the client.
type Request struct {
	Message             string `json:"message" binding:"required"`
	ConversationHistory []Turn `json:"conversationHistory" binding:"omitempty,dive"`
}

// Unlocker awards achievements.
type Unlocker interface {
	Unlock(ctx context.Context, userID, id string) (bool, error)
}

// Service validates requests and forwards them to the provider.
type Service struct {
	provider Provider
	unlocker Unlocker
	timeout  time.Duration
	policy   *bluemonday.Policy
	log      *logger.Logger
}

// NewService creates a new chat relay. unlocker may be nil.
func NewService(provider Provider, unlocker Unlocker, timeout time.Duration, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		unlocker: unlocker,
		timeout:  timeout,
		policy:   bluemonday.StrictPolicy(),
		log:      log,
	}
}

// Reply relays one learner message and returns the tutor's answer.
func (s *Service) Reply(ctx context.Context, userID string, req Request) (string, error) {
	message := s.clean(req.Message)
	if message == "" {
		prommetrics.RecordChatRequest("invalid")
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		prommetrics.RecordChatRequest("invalid")
		return "", ErrMessageTooLong
	}

	history := s.history(req.ConversationHistory)

	relayCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		relayCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.provider.Reply(relayCtx, history, message)
	prommetrics.ObserveChatUpstreamDuration(time.Since(start).Seconds())
	if err != nil {
		prommetrics.RecordChatRequest("upstream_error")
		s.log.Error().Err(err).Str("user_id", userID).Msg("Chat provider failed")
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		prommetrics.RecordChatRequest("upstream_error")
		return "", fmt.Errorf("%w: empty reply", ErrUpstream)
	}

	prommetrics.RecordChatRequest("success")

	if s.unlocker != nil {
		if _, err := s.unlocker.Unlock(ctx, userID, "first_chat"); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to unlock first chat achievement")
		}
	}

	return reply, nil
}

// history keeps the most recent well-formed turns, starting with a user turn.
func (s *Service) history(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns))
	for _, turn := range turns {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			continue
		}
		content := s.clean(turn.Content)
		if content == "" {
			continue
		}
		out = append(out, Turn{Role: turn.Role, Content: content})
	}
	if len(out) > MaxHistoryTurns {
		out = out[len(out)-MaxHistoryTurns:]
	}
	for len(out) > 0 && out[0].Role != RoleUser {
		out = out[1:]
	}
	return out
}

// clean strips markup and restores the plain characters the policy escaped.
func (s *Service) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
