package db

import (
	"context"
	"time"
)

type MessageDAO interface {
	CreateMessage(ctx context.Context, message Message) error
	ListMessages(ctx context.Context, limit int) ([]Message, error)
}

type Message struct {
	ID        *int64    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *dao) CreateMessage(ctx context.Context, message Message) error {
	const query = `INSERT INTO message (title, content, type, created_at) VALUES (:title, :content, :type, :created_at)`

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	_, err := d.db.NamedExecContext(ctx, query, message)
	return err
}

// ListMessages returns the most recent messages first.
func (d *dao) ListMessages(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, title, content, type, created_at FROM message ORDER BY id DESC LIMIT $1`

	var messages []Message
	if err := d.db.SelectContext(ctx, &messages, query, limit); err != nil {
		return nil, err
	}
	return messages, nil
}
