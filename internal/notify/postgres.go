// internal/notify/postgres.go
package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/models"

	"github.com/google/uuid"
)

// PostgresStore implements ConversationStore on top of PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindConversation(ctx context.Context, partyA, partyB, propertyID string) (models.Conversation, error) {
	a, b := NormalizePair(partyA, partyB)

	row := s.db.QueryRowContext(ctx, `
		SELECT id, party_a, party_b, property_id, last_message, last_message_at,
			unread_a, unread_b, created_at
		FROM conversations
		WHERE party_a = $1 AND party_b = $2 AND COALESCE(property_id, '') = $3`,
		a, b, propertyID)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, wferrors.NewNotFoundError("conversation", a+"/"+b)
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, partyA, partyB, propertyID string) (models.Conversation, error) {
	a, b := NormalizePair(partyA, partyB)
	now := time.Now().UTC()

	conv := models.Conversation{
		ID:         uuid.New().String(),
		PartyA:     a,
		PartyB:     b,
		PropertyID: propertyID,
		CreatedAt:  now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, party_a, party_b, property_id, unread_a, unread_b, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), 0, 0, $5)`,
		conv.ID, a, b, propertyID, now,
	)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, conversationID, senderID, body string) (models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Message{}, fmt.Errorf("begin append message: %w", err)
	}
	defer tx.Rollback()

	msg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		SentAt:         time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.SentAt,
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}

	// Unread counters bump for every party except the sender.
	res, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message = $1,
			last_message_at = $2,
			unread_a = unread_a + CASE WHEN party_a = $3 THEN 0 ELSE 1 END,
			unread_b = unread_b + CASE WHEN party_b = $3 THEN 0 ELSE 1 END
		WHERE id = $4`,
		msg.Body, msg.SentAt, senderID, conversationID,
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("update conversation metadata: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Message{}, fmt.Errorf("update conversation metadata: %w", err)
	}
	if affected == 0 {
		return models.Message{}, wferrors.NewNotFoundError("conversation", conversationID)
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, fmt.Errorf("commit append message: %w", err)
	}
	return msg, nil
}

func scanConversation(row *sql.Row) (models.Conversation, error) {
	var conv models.Conversation
	var propertyID, lastMessage sql.NullString
	var lastMessageAt sql.NullTime
	err := row.Scan(
		&conv.ID, &conv.PartyA, &conv.PartyB, &propertyID, &lastMessage,
		&lastMessageAt, &conv.UnreadA, &conv.UnreadB, &conv.CreatedAt,
	)
	if err != nil {
		return models.Conversation{}, err
	}
	conv.PropertyID = propertyID.String
	conv.LastMessage = lastMessage.String
	conv.LastMessageAt = lastMessageAt.Time
	return conv, nil
}
