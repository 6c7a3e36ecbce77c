// internal/models/conversation.go
package models

import "time"

// Conversation is a channel between two parties, uniquely identified by the
// unordered pair (PartyA, PartyB) plus optional property context. Parties
// are stored normalized so (a,b) and (b,a) resolve to the same channel.
type Conversation struct {
	ID            string    `json:"id"`
	PartyA        string    `json:"partyA"`
	PartyB        string    `json:"partyB"`
	PropertyID    string    `json:"propertyId,omitempty"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt,omitempty"`
	UnreadA       int       `json:"unreadA"`
	UnreadB       int       `json:"unreadB"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Message is appended to a conversation, never mutated.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sentAt"`
}
