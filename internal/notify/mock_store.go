// internal/notify/mock_store.go
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/models"
)

// MockStore implements ConversationStore with in-memory storage for tests.
type MockStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	messages      []models.Message
	nextID        int

	// FailFor simulates delivery failure for messages sent to a
	// conversation whose id is in the set. Test hook.
	FailFor map[string]bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		conversations: make(map[string]*models.Conversation),
		FailFor:       make(map[string]bool),
	}
}

func (m *MockStore) key(a, b, propertyID string) string {
	a, b = NormalizePair(a, b)
	return a + "|" + b + "|" + propertyID
}

func (m *MockStore) FindConversation(_ context.Context, partyA, partyB, propertyID string) (models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conv, ok := m.conversations[m.key(partyA, partyB, propertyID)]; ok {
		return *conv, nil
	}
	return models.Conversation{}, wferrors.NewNotFoundError("conversation", partyA+"/"+partyB)
}

func (m *MockStore) CreateConversation(_ context.Context, partyA, partyB, propertyID string) (models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, b := NormalizePair(partyA, partyB)
	m.nextID++
	conv := models.Conversation{
		ID:         fmt.Sprintf("conv-%d", m.nextID),
		PartyA:     a,
		PartyB:     b,
		PropertyID: propertyID,
		CreatedAt:  time.Now().UTC(),
	}
	m.conversations[m.key(a, b, propertyID)] = &conv
	return conv, nil
}

func (m *MockStore) AppendMessage(_ context.Context, conversationID, senderID, body string) (models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailFor[conversationID] {
		return models.Message{}, fmt.Errorf("simulated delivery failure for %s", conversationID)
	}

	var conv *models.Conversation
	for _, c := range m.conversations {
		if c.ID == conversationID {
			conv = c
			break
		}
	}
	if conv == nil {
		return models.Message{}, wferrors.NewNotFoundError("conversation", conversationID)
	}

	msg := models.Message{
		ID:             fmt.Sprintf("msg-%d", len(m.messages)+1),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		SentAt:         time.Now().UTC(),
	}
	m.messages = append(m.messages, msg)

	conv.LastMessage = body
	conv.LastMessageAt = msg.SentAt
	if conv.PartyA != senderID {
		conv.UnreadA++
	}
	if conv.PartyB != senderID {
		conv.UnreadB++
	}
	return msg, nil
}

// Messages returns a copy of all appended messages. Test helper.
func (m *MockStore) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// ConversationCount returns the number of channels. Test helper.
func (m *MockStore) ConversationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}
