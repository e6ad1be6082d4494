package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/messagely-go/internal/model"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrUnknownParticipant = errors.New("message references an unknown user")
)

// MessageRepository handles message persistence operations.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message whose ID and SentAt are already set.
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		VALUES (?, ?, ?, ?, ?, NULL)`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.FromUsername, msg.ToUsername, msg.Body, msg.SentAt)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrUnknownParticipant
		}
		return fmt.Errorf("db error: %w", err)
	}

	msg.ReadAt = nil
	return nil
}

const messageDetailQuery = `SELECT m.id, m.body, m.sent_at, m.read_at,
		f.username, f.first_name, f.last_name, f.phone,
		t.username, t.first_name, t.last_name, t.phone
	FROM messages AS m
		JOIN users AS f ON f.username = m.from_username
		JOIN users AS t ON t.username = m.to_username
	WHERE m.id = ?`

// GetByID retrieves a message with both participants' contact data.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.MessageDetail, error) {
	m := &model.MessageDetail{}
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, messageDetailQuery, id).Scan(
		&m.ID, &m.Body, &m.SentAt, &readAt,
		&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	m.ReadAt = nullTimePtr(readAt)

	return m, nil
}

// MarkRead stamps read_at with at unless it is already set, and returns the
// stored value. Repeated calls keep the first timestamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) (*model.ReadReceipt, error) {
	receipt := &model.ReadReceipt{}

	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE messages SET read_at = COALESCE(read_at, ?) WHERE id = ?`, at, id,
		); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		err := tx.QueryRowContext(ctx,
			`SELECT id, read_at FROM messages WHERE id = ?`, id,
		).Scan(&receipt.ID, &receipt.ReadAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMessageNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// ListFrom returns messages sent by username, each with the recipient's contact data.
func (r *MessageRepository) ListFrom(ctx context.Context, username string) ([]model.SentMessage, error) {
	query := `SELECT m.id, m.body, m.sent_at, m.read_at,
			t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
			JOIN users AS t ON t.username = m.to_username
		WHERE m.from_username = ?
		ORDER BY m.sent_at, m.id`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	messages := []model.SentMessage{}
	for rows.Next() {
		var m model.SentMessage
		var readAt sql.NullTime
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.ReadAt = nullTimePtr(readAt)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// ListTo returns messages received by username, each with the sender's contact data.
func (r *MessageRepository) ListTo(ctx context.Context, username string) ([]model.ReceivedMessage, error) {
	query := `SELECT m.id, m.body, m.sent_at, m.read_at,
			f.username, f.first_name, f.last_name, f.phone
		FROM messages AS m
			JOIN users AS f ON f.username = m.from_username
		WHERE m.to_username = ?
		ORDER BY m.sent_at, m.id`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	messages := []model.ReceivedMessage{}
	for rows.Next() {
		var m model.ReceivedMessage
		var readAt sql.NullTime
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.ReadAt = nullTimePtr(readAt)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
