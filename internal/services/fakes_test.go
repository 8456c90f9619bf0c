package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User)}
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	user, ok := r.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.Username]; ok {
		return types.User{}, store.ErrDuplicate
	}
	now := time.Now()
	user.JoinedAt = now
	user.LastLoginAt = now
	r.users[user.Username] = user
	return user, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]types.UserSummary, error) {
	summaries := make([]types.UserSummary, 0, len(r.users))
	for _, user := range r.users {
		summaries = append(summaries, user.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Username < summaries[j].Username })
	return summaries, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, username string) error {
	user, ok := r.users[username]
	if !ok {
		return store.ErrNotFound
	}
	user.LastLoginAt = time.Now()
	r.users[username] = user
	return nil
}

// fakeMessageRepo is an in-memory MessageRepository. It resolves profile
// snippets against a fakeUserRepo, mirroring the SQL joins.
type fakeMessageRepo struct {
	users    *fakeUserRepo
	messages map[int64]types.Message
	nextID   int64
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{users: users, messages: make(map[int64]types.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, message types.Message) (types.Message, error) {
	r.nextID++
	message.ID = r.nextID
	message.SentAt = time.Now()
	message.ReadAt = nil
	r.messages[message.ID] = message
	return message, nil
}

func (r *fakeMessageRepo) Get(_ context.Context, id int64) (types.MessageDetail, error) {
	message, ok := r.messages[id]
	if !ok {
		return types.MessageDetail{}, store.ErrNotFound
	}
	return types.MessageDetail{
		ID:       message.ID,
		Body:     message.Body,
		SentAt:   message.SentAt,
		ReadAt:   message.ReadAt,
		FromUser: r.users.users[message.FromUsername].Summary(),
		ToUser:   r.users.users[message.ToUsername].Summary(),
	}, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id int64) (time.Time, error) {
	message, ok := r.messages[id]
	if !ok {
		return time.Time{}, store.ErrNotFound
	}
	if message.ReadAt != nil {
		return *message.ReadAt, nil
	}
	now := time.Now()
	message.ReadAt = &now
	r.messages[id] = message
	return now, nil
}

func (r *fakeMessageRepo) ListFrom(_ context.Context, username string) ([]types.MessageWithCounterparty, error) {
	items := make([]types.MessageWithCounterparty, 0)
	for _, message := range r.sorted() {
		if message.FromUsername != username {
			continue
		}
		to := r.users.users[message.ToUsername].Summary()
		items = append(items, types.MessageWithCounterparty{
			ID:     message.ID,
			Body:   message.Body,
			SentAt: message.SentAt,
			ReadAt: message.ReadAt,
			ToUser: &to,
		})
	}
	return items, nil
}

func (r *fakeMessageRepo) ListTo(_ context.Context, username string) ([]types.MessageWithCounterparty, error) {
	items := make([]types.MessageWithCounterparty, 0)
	for _, message := range r.sorted() {
		if message.ToUsername != username {
			continue
		}
		from := r.users.users[message.FromUsername].Summary()
		items = append(items, types.MessageWithCounterparty{
			ID:       message.ID,
			Body:     message.Body,
			SentAt:   message.SentAt,
			ReadAt:   message.ReadAt,
			FromUser: &from,
		})
	}
	return items, nil
}

func (r *fakeMessageRepo) sorted() []types.Message {
	messages := make([]types.Message, 0, len(r.messages))
	for _, message := range r.messages {
		messages = append(messages, message)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages
}

// fakePublisher records published events.
type fakePublisher struct {
	published []publishedEvent
}

type publishedEvent struct {
	channel string
	data    []byte
}

func (p *fakePublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	p.published = append(p.published, publishedEvent{channel: channel, data: data})
	return fmt.Sprintf("event-%d", len(p.published)), nil
}
