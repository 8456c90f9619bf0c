package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/messagely/apiserver/internal/logging"
	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, message types.Message) (types.Message, error)
	Get(ctx context.Context, id int64) (types.MessageDetail, error)
	MarkRead(ctx context.Context, id int64) (time.Time, error)
	ListFrom(ctx context.Context, username string) ([]types.MessageWithCounterparty, error)
	ListTo(ctx context.Context, username string) ([]types.MessageWithCounterparty, error)
}

// MessageService encapsulates the message ledger use-cases: sending,
// expanded reads, read-marking, and per-user listings.
type MessageService struct {
	messages  MessageRepository
	users     UserRepository
	publisher EventPublisher
	log       logging.Logger
}

func NewMessageService(messages MessageRepository, users UserRepository, publisher EventPublisher, log logging.Logger) *MessageService {
	return &MessageService{
		messages:  messages,
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// Send creates a message from one user to another. Both usernames must
// resolve; a nonexistent recipient surfaces as ErrNotFound, never as a
// silently dropped message.
func (s *MessageService) Send(ctx context.Context, fromUsername, toUsername, body string) (types.Message, error) {
	fromUsername = strings.TrimSpace(fromUsername)
	toUsername = strings.TrimSpace(toUsername)

	if fromUsername == "" || toUsername == "" || body == "" {
		return types.Message{}, fmt.Errorf("%w: to_username and body are required", ErrValidation)
	}

	for _, username := range []string{fromUsername, toUsername} {
		if _, err := s.users.GetByUsername(ctx, username); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return types.Message{}, fmt.Errorf("%w: user %s", ErrNotFound, username)
			}
			return types.Message{}, fmt.Errorf("resolve user: %w", err)
		}
	}

	message, err := s.messages.Create(ctx, types.Message{
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
	})
	if err != nil {
		return types.Message{}, fmt.Errorf("create message: %w", err)
	}

	s.log.Info(ctx, "message sent", "id", message.ID, "from", fromUsername, "to", toUsername)
	s.publish(ctx, ChannelMessageSent, MessageSentEvent{
		ID:           message.ID,
		FromUsername: message.FromUsername,
		ToUsername:   message.ToUsername,
		SentAt:       message.SentAt.Format(time.RFC3339),
	})
	return message, nil
}

// Get returns the expanded message with resolved sender and recipient
// profiles. This is the form access decisions operate on.
func (s *MessageService) Get(ctx context.Context, id int64) (types.MessageDetail, error) {
	detail, err := s.messages.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.MessageDetail{}, fmt.Errorf("%w: message %d", ErrNotFound, id)
		}
		return types.MessageDetail{}, fmt.Errorf("get message: %w", err)
	}
	return detail, nil
}

// GetForUser returns the expanded message if requester is its sender or
// recipient, and ErrForbidden otherwise.
func (s *MessageService) GetForUser(ctx context.Context, id int64, requester string) (types.MessageDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return types.MessageDetail{}, err
	}
	if !AuthorizeRead(detail, requester) {
		return types.MessageDetail{}, fmt.Errorf("%w: message %d", ErrForbidden, id)
	}
	return detail, nil
}

// MarkReadForUser stamps read_at on a message on behalf of requester, who
// must be the recipient. The transition happens at most once: repeated
// calls return the original read_at unchanged.
func (s *MessageService) MarkReadForUser(ctx context.Context, id int64, requester string) (types.MessageDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return types.MessageDetail{}, err
	}
	if !AuthorizeMarkRead(detail, requester) {
		return types.MessageDetail{}, fmt.Errorf("%w: message %d", ErrForbidden, id)
	}

	alreadyRead := detail.ReadAt != nil

	readAt, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.MessageDetail{}, fmt.Errorf("%w: message %d", ErrNotFound, id)
		}
		return types.MessageDetail{}, fmt.Errorf("mark read: %w", err)
	}
	detail.ReadAt = &readAt

	if !alreadyRead {
		s.log.Info(ctx, "message read", "id", id, "by", requester)
		s.publish(ctx, ChannelMessageRead, MessageReadEvent{
			ID:           detail.ID,
			FromUsername: detail.FromUser.Username,
			ToUsername:   detail.ToUser.Username,
			ReadAt:       readAt.Format(time.RFC3339),
		})
	}
	return detail, nil
}

// ListFrom returns every message sent by the user, each with the recipient
// profile resolved.
func (s *MessageService) ListFrom(ctx context.Context, username string) ([]types.MessageWithCounterparty, error) {
	if err := s.resolveUser(ctx, username); err != nil {
		return nil, err
	}
	return s.messages.ListFrom(ctx, username)
}

// ListTo returns every message sent to the user, each with the sender
// profile resolved.
func (s *MessageService) ListTo(ctx context.Context, username string) ([]types.MessageWithCounterparty, error) {
	if err := s.resolveUser(ctx, username); err != nil {
		return nil, err
	}
	return s.messages.ListTo(ctx, username)
}

func (s *MessageService) resolveUser(ctx context.Context, username string) error {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return fmt.Errorf("resolve user: %w", err)
	}
	return nil
}

// publish sends a domain event. Publishing is best-effort: failures are
// logged and never fail the request.
func (s *MessageService) publish(ctx context.Context, channel string, event any) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error(ctx, "marshal event", "channel", channel, "error", err)
		return
	}
	if _, err := s.publisher.Publish(ctx, channel, data, nil); err != nil {
		s.log.Error(ctx, "publish event", "channel", channel, "error", err)
	}
}
