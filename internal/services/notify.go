package services

import "context"

// Event channels published by the message service.
const (
	ChannelMessageSent = "message.sent"
	ChannelMessageRead = "message.read"
)

// EventPublisher delivers domain events to a broker. Implemented by the
// mq package; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// MessageSentEvent is published when a message is created. It carries no
// body so that downstream consumers never see message content.
type MessageSentEvent struct {
	ID           int64  `json:"id"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	SentAt       string `json:"sent_at"`
}

// MessageReadEvent is published when a message transitions to read.
type MessageReadEvent struct {
	ID           int64  `json:"id"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	ReadAt       string `json:"read_at"`
}
