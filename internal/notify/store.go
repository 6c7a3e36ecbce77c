// Package notify delivers in-app messages between workflow parties. A
// conversation channel is keyed by the unordered party pair plus optional
// property context; messages are appended, never mutated.
package notify

import (
	"context"

	"rentflow/internal/models"
)

// ConversationStore is the messaging persistence surface.
type ConversationStore interface {
	// FindConversation looks up the channel for a normalized party pair.
	// Returns a not-found error when no channel exists yet.
	FindConversation(ctx context.Context, partyA, partyB, propertyID string) (models.Conversation, error)
	CreateConversation(ctx context.Context, partyA, partyB, propertyID string) (models.Conversation, error)
	// AppendMessage appends to the channel and updates last-message
	// metadata plus unread counters for every party except the sender.
	AppendMessage(ctx context.Context, conversationID, senderID, body string) (models.Message, error)
}

// NormalizePair orders a party pair so (a,b) and (b,a) address the same
// conversation.
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
