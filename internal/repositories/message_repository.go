package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"docuchat-service/internal/models"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrMessageRetracted = errors.New("message was deleted for everyone")
)

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error)
	ListVisibleMessages(ctx context.Context, roomID int, viewerID int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	EditMessage(ctx context.Context, messageID int, content string) (models.Message, error)
	RetractMessage(ctx context.Context, messageID int) (models.Message, error)
	HideMessageForUser(ctx context.Context, messageID int, userID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, room_id, sender_id, content, is_edited, edited_at, deleted_for_all, created_at`

// CreateMessage appends a message to a room with a server-assigned
// creation timestamp.
func (r *MessageRepo) CreateMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (room_id, sender_id, content) VALUES ($1, $2, $3) RETURNING `+messageColumns,
		roomID, senderID, content).StructScan(&msg)
	return msg, err
}

// ListVisibleMessages returns the room's messages as seen by the viewer:
// anything the viewer hid for themselves is excluded, while messages
// deleted for everyone stay listed with their placeholder content.
// Ordered oldest first, with the message id breaking timestamp ties.
func (r *MessageRepo) ListVisibleMessages(ctx context.Context, roomID int, viewerID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m
        WHERE m.room_id=$1
        AND NOT EXISTS (
            SELECT 1 FROM message_visibility v WHERE v.message_id = m.id AND v.user_id = $2
        )
        ORDER BY m.created_at ASC, m.id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, roomID, viewerID)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// EditMessage replaces the content of a message that has not been deleted
// for everyone. The deleted_for_all guard in the UPDATE makes the edit a
// compare-and-set, so an edit racing a retraction loses cleanly and
// reports ErrMessageRetracted.
func (r *MessageRepo) EditMessage(ctx context.Context, messageID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`UPDATE messages SET content=$2, is_edited=TRUE, edited_at=NOW()
         WHERE id=$1 AND deleted_for_all=FALSE RETURNING `+messageColumns,
		messageID, content).StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		existing, getErr := r.GetMessage(ctx, messageID)
		if getErr != nil {
			return models.Message{}, getErr
		}
		if existing.DeletedForAll {
			return models.Message{}, ErrMessageRetracted
		}
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// RetractMessage deletes a message for everyone, replacing its content
// with the fixed placeholder. Retracting an already-retracted message is
// a no-op success returning the current record.
func (r *MessageRepo) RetractMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`UPDATE messages SET deleted_for_all=TRUE, content=$2
         WHERE id=$1 AND deleted_for_all=FALSE RETURNING `+messageColumns,
		messageID, models.RetractedPlaceholder).StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return r.GetMessage(ctx, messageID)
	}
	return msg, err
}

// HideMessageForUser adds the user to the message's hidden-for set.
// Idempotent; the set only grows.
func (r *MessageRepo) HideMessageForUser(ctx context.Context, messageID int, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO message_visibility (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		messageID, userID)
	return err
}
