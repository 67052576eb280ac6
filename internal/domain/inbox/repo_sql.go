package inbox

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type messageRepoSQL struct{ db *db.DB }

func NewMessageRepoSQL(database *db.DB) MessageRepository {
	return &messageRepoSQL{db: database}
}

func (r *messageRepoSQL) conn(ctx context.Context) db.Querier {
	return db.Pick(ctx, r.db)
}

const msgCols = `id, sender_id, recipient_id, content, created_at, updated_at`

func (r *messageRepoSQL) scanMessage(row db.RowScanner) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}

func (r *messageRepoSQL) Create(ctx context.Context, m *Message) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO messages (sender_id, recipient_id, content, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		m.SenderID, m.RecipientID, m.Content, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
	return db.Translate(err)
}

func (r *messageRepoSQL) GetByID(ctx context.Context, id int64) (*Message, error) {
	m, err := r.scanMessage(r.conn(ctx).QueryRowContext(ctx, `SELECT `+msgCols+` FROM messages WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("message", id)
	}
	if err != nil {
		return nil, db.Translate(err)
	}
	return m, nil
}

func (r *messageRepoSQL) List(ctx context.Context) ([]*Message, error) {
	return r.query(ctx, `SELECT `+msgCols+` FROM messages ORDER BY id`)
}

func (r *messageRepoSQL) ListBySender(ctx context.Context, senderID int64) ([]*Message, error) {
	return r.query(ctx, `SELECT `+msgCols+` FROM messages WHERE sender_id = $1 ORDER BY id`, senderID)
}

func (r *messageRepoSQL) ListByRecipient(ctx context.Context, recipientID int64) ([]*Message, error) {
	return r.query(ctx, `SELECT `+msgCols+` FROM messages WHERE recipient_id = $1 ORDER BY id`, recipientID)
}

func (r *messageRepoSQL) query(ctx context.Context, query string, args ...any) ([]*Message, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Translate(err)
	}
	defer rows.Close()

	items := []*Message{}
	for rows.Next() {
		m, err := r.scanMessage(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		items = append(items, m)
	}
	return items, db.Translate(rows.Err())
}
