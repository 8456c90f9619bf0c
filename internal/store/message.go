package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/messagely/apiserver/types"
)

// MessageRepository handles persistence for messages.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message types.Message) (types.Message, error) {
	message.SentAt = time.Now()
	message.ReadAt = nil

	const query = `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		message.FromUsername,
		message.ToUsername,
		message.Body,
		message.SentAt,
	).Scan(&message.ID); err != nil {
		return types.Message{}, err
	}
	return message, nil
}

func (r *MessageRepository) Get(ctx context.Context, id int64) (types.MessageDetail, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			fu.username, fu.first_name, fu.last_name, fu.phone,
			tu.username, tu.first_name, tu.last_name, tu.phone
		FROM messages AS m
		JOIN users AS fu ON m.from_username = fu.username
		JOIN users AS tu ON m.to_username = tu.username
		WHERE m.id = $1`
	var detail types.MessageDetail
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.Body,
		&detail.SentAt,
		&detail.ReadAt,
		&detail.FromUser.Username,
		&detail.FromUser.FirstName,
		&detail.FromUser.LastName,
		&detail.FromUser.Phone,
		&detail.ToUser.Username,
		&detail.ToUser.FirstName,
		&detail.ToUser.LastName,
		&detail.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MessageDetail{}, ErrNotFound
		}
		return types.MessageDetail{}, err
	}
	return detail, nil
}

// MarkRead stamps read_at for an unread message and returns the effective
// read timestamp. The update is conditional on read_at being unset, so the
// first transition wins; later calls return the original timestamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id int64) (time.Time, error) {
	const update = `
		UPDATE messages
		SET read_at = $1
		WHERE id = $2 AND read_at IS NULL
		RETURNING read_at`
	var readAt time.Time
	err := r.db.QueryRowContext(ctx, update, time.Now(), id).Scan(&readAt)
	if err == nil {
		return readAt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, err
	}

	// Either the message does not exist or it is already read.
	const query = `SELECT read_at FROM messages WHERE id = $1`
	var existing sql.NullTime
	err = r.db.QueryRowContext(ctx, query, id).Scan(&existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	if !existing.Valid {
		// The conditional update found no unread row, yet the message exists
		// and is unread. read_at only ever transitions null to set, so this
		// indicates a serialization failure in the database.
		return time.Time{}, errors.New("mark read: inconsistent read_at state")
	}
	return existing.Time, nil
}

func (r *MessageRepository) ListFrom(ctx context.Context, username string) ([]types.MessageWithCounterparty, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			tu.username, tu.first_name, tu.last_name, tu.phone
		FROM messages AS m
		JOIN users AS tu ON m.to_username = tu.username
		WHERE m.from_username = $1
		ORDER BY m.id`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.MessageWithCounterparty, 0)
	for rows.Next() {
		var m types.MessageWithCounterparty
		var to types.UserSummary
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&m.ReadAt,
			&to.Username,
			&to.FirstName,
			&to.LastName,
			&to.Phone,
		); err != nil {
			return nil, err
		}
		m.ToUser = &to
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) ListTo(ctx context.Context, username string) ([]types.MessageWithCounterparty, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
			fu.username, fu.first_name, fu.last_name, fu.phone
		FROM messages AS m
		JOIN users AS fu ON m.from_username = fu.username
		WHERE m.to_username = $1
		ORDER BY m.id`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.MessageWithCounterparty, 0)
	for rows.Next() {
		var m types.MessageWithCounterparty
		var from types.UserSummary
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&m.ReadAt,
			&from.Username,
			&from.FirstName,
			&from.LastName,
			&from.Phone,
		); err != nil {
			return nil, err
		}
		m.FromUser = &from
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
