package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/apperrors"
	"messaging-service/internal/models"
)

const messageColumns = `id, sender_id, receiver_id, message_text, media_url, status, is_read, read_at, created_at, updated_at`

// MessageRepository defines interactions with the flat message store.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, receiverID int, text string, mediaURL *string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListMessages(ctx context.Context) ([]models.Message, error)
	ConversationHeads(ctx context.Context, userID int) ([]models.Message, error)
	LatestMessageBetween(ctx context.Context, userID, partnerID int) (models.Message, error)
	UnreadCounts(ctx context.Context, userID int) (map[int]int, error)
	UnreadCountFrom(ctx context.Context, userID, partnerID int) (int, error)
	ThreadBetween(ctx context.Context, userID, partnerID, limit int) ([]models.Message, error)
	MarkThreadRead(ctx context.Context, userID, partnerID int) (int64, error)
	UpdateStatus(ctx context.Context, messageID int, status models.MessageStatus, markRead bool) (models.Message, error)
	UpdateText(ctx context.Context, messageID int, text string) (models.Message, error)
	SoftDelete(ctx context.Context, messageID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message with status sent and is_read false.
func (r *MessageRepo) CreateMessage(ctx context.Context, senderID, receiverID int, text string, mediaURL *string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO messages (sender_id, receiver_id, message_text, media_url, status, is_read)
         VALUES ($1, $2, $3, $4, 'sent', FALSE)
         RETURNING `+messageColumns,
		senderID, receiverID, text, mediaURL)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, err
}

// ListMessages returns all non-deleted messages, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE status <> 'deleted' ORDER BY created_at ASC, id ASC`)
	return msgs, err
}

// ConversationHeads returns the newest message per distinct partner pair the
// user participates in, ordered by recency. The pair key normalizes sender
// and receiver with GREATEST/LEAST so direction never splits a conversation;
// ties on created_at resolve to the highest id.
func (r *MessageRepo) ConversationHeads(ctx context.Context, userID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM (
            SELECT DISTINCT ON (GREATEST(sender_id, receiver_id), LEAST(sender_id, receiver_id)) ` + messageColumns + `
            FROM messages
            WHERE sender_id=$1 OR receiver_id=$1
            ORDER BY GREATEST(sender_id, receiver_id), LEAST(sender_id, receiver_id), created_at DESC, id DESC
        ) heads
        ORDER BY created_at DESC, id DESC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID)
	return msgs, err
}

// LatestMessageBetween returns the newest message exchanged between exactly
// the two users, or ErrMessageNotFound when none exists.
func (r *MessageRepo) LatestMessageBetween(ctx context.Context, userID, partnerID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages
         WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
         ORDER BY created_at DESC, id DESC
         LIMIT 1`,
		userID, partnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, err
}

// UnreadCounts returns the user's unread counts grouped by sender, one query
// for the whole conversation list.
func (r *MessageRepo) UnreadCounts(ctx context.Context, userID int) (map[int]int, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT sender_id, COUNT(*) FROM messages
         WHERE receiver_id=$1 AND is_read = FALSE
         GROUP BY sender_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var senderID, count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, err
		}
		counts[senderID] = count
	}
	return counts, rows.Err()
}

// UnreadCountFrom counts unread messages from one partner to the user.
func (r *MessageRepo) UnreadCountFrom(ctx context.Context, userID, partnerID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND sender_id=$2 AND is_read = FALSE`,
		userID, partnerID)
	return count, err
}

// ThreadBetween returns the newest limit messages between the two users,
// presented oldest first.
func (r *MessageRepo) ThreadBetween(ctx context.Context, userID, partnerID, limit int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM (
            SELECT ` + messageColumns + ` FROM messages
            WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
            ORDER BY created_at DESC, id DESC
            LIMIT $3
        ) recent
        ORDER BY created_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, partnerID, limit)
	return msgs, err
}

// MarkThreadRead transitions every unread message from partner to user to
// read. Deleted is terminal, so tombstoned rows are left alone. Idempotent:
// concurrent calls converge on is_read = TRUE.
func (r *MessageRepo) MarkThreadRead(ctx context.Context, userID, partnerID int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages
         SET is_read = TRUE, status = 'read', read_at = NOW(), updated_at = NOW()
         WHERE receiver_id=$1 AND sender_id=$2 AND is_read = FALSE AND status <> 'deleted'`,
		userID, partnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateStatus sets a message's status; markRead also flips is_read and
// stamps read_at.
func (r *MessageRepo) UpdateStatus(ctx context.Context, messageID int, status models.MessageStatus, markRead bool) (models.Message, error) {
	var (
		msg models.Message
		err error
	)
	if markRead {
		err = r.db.GetContext(ctx, &msg,
			`UPDATE messages SET status=$2, is_read = TRUE, read_at = NOW(), updated_at = NOW()
             WHERE id=$1 RETURNING `+messageColumns,
			messageID, status)
	} else {
		err = r.db.GetContext(ctx, &msg,
			`UPDATE messages SET status=$2, updated_at = NOW()
             WHERE id=$1 RETURNING `+messageColumns,
			messageID, status)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, err
}

// UpdateText replaces the message body (sender edits).
func (r *MessageRepo) UpdateText(ctx context.Context, messageID int, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`UPDATE messages SET message_text=$2, updated_at = NOW() WHERE id=$1 RETURNING `+messageColumns,
		messageID, text)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, apperrors.ErrMessageNotFound
	}
	return msg, err
}

// SoftDelete marks a message deleted; the row is retained.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET status='deleted', updated_at = NOW() WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}
