// internal/notify/dispatcher.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 24 * time.Hour

// Dispatcher ensures a conversation channel exists between two parties and
// sends messages into it. A redis read-through cache fronts the pair
// lookup; cache errors are non-fatal and fall back to the store.
type Dispatcher struct {
	store  ConversationStore
	cache  *redis.Client
	echo   *Echo
	logger logger.Logger
}

func NewDispatcher(store ConversationStore, cache *redis.Client, echo *Echo, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		cache:  cache,
		echo:   echo,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// EnsureConversation returns the channel id for the unordered party pair,
// creating the channel if none exists. Sequential calls are idempotent;
// the read-then-create sequence is not protected against concurrent calls
// for the same pair.
func (d *Dispatcher) EnsureConversation(ctx context.Context, partyA, partyB, propertyID string) (string, error) {
	a, b := NormalizePair(partyA, partyB)
	cacheKey := fmt.Sprintf("conv:%s:%s:%s", a, b, propertyID)

	if d.cache != nil {
		if id, err := d.cache.Get(ctx, cacheKey).Result(); err == nil && id != "" {
			return id, nil
		}
	}

	conv, err := d.store.FindConversation(ctx, a, b, propertyID)
	if err != nil {
		if !errors.Is(err, wferrors.ErrNotFound) {
			return "", err
		}
		conv, err = d.store.CreateConversation(ctx, a, b, propertyID)
		if err != nil {
			return "", err
		}
		d.logger.Info("conversation created", map[string]interface{}{
			"conversationId": conv.ID,
			"propertyId":     propertyID,
		})
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, cacheKey, conv.ID, cacheTTL).Err(); err != nil {
			d.logger.Warn("conversation cache write failed", map[string]interface{}{
				"error": err,
			})
		}
	}
	return conv.ID, nil
}

// Notice is a single decision message addressed to one recipient.
type Notice struct {
	ConversationID string
	SenderID       string
	RecipientID    string
	Subject        string
	Body           string
	Priority       string
}

// SendMessage appends a plain in-app message with no out-of-band copy.
func (d *Dispatcher) SendMessage(ctx context.Context, conversationID, senderID, text string) error {
	return d.Send(ctx, Notice{ConversationID: conversationID, SenderID: senderID, Body: text})
}

// Send appends the notice to its channel and updates channel metadata.
// When the out-of-band echo is configured, a copy goes out by email/SMS on
// a best-effort basis.
func (d *Dispatcher) Send(ctx context.Context, n Notice) error {
	if _, err := d.store.AppendMessage(ctx, n.ConversationID, n.SenderID, n.Body); err != nil {
		metrics.NotificationsFailed.WithLabelValues("message").Inc()
		return err
	}
	metrics.NotificationsSent.WithLabelValues("message").Inc()

	if d.echo != nil {
		if err := d.echo.Send(ctx, n.RecipientID, n.Subject, n.Body, n.Priority); err != nil {
			// Echo failures never fail the in-app delivery.
			metrics.NotificationsFailed.WithLabelValues("echo").Inc()
			d.logger.Warn("notification echo failed", map[string]interface{}{
				"error":       err,
				"recipientId": n.RecipientID,
			})
		}
	}
	return nil
}
