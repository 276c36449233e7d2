package nats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/google/uuid"
)

const levelError = "error"

// Publisher is the subset of *nats.Conn the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Notification is the payload storefront clients receive and render as a toast.
type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type notifier struct {
	conn      Publisher
	subject   string
	sessionID string
	log       logger.Logger
}

// NewNotifier publishes each notification as JSON on subject. Failures are logged and
// swallowed; notifications are fire-and-forget.
func NewNotifier(conn Publisher, subject, sessionID string, log logger.Logger) repository.Notifier {
	return &notifier{
		conn:      conn,
		subject:   subject,
		sessionID: sessionID,
		log:       log,
	}
}

func (n *notifier) Error(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		n.log.Warnf("Dropping cart notification %q for session %q: %v", message, n.sessionID, err)
		return
	}

	data, err := json.Marshal(Notification{
		ID:        uuid.NewString(),
		SessionID: n.sessionID,
		Level:     levelError,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		n.log.Errorf("Failed to encode cart notification %q: %v", message, err)
		return
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		n.log.Warnf("Failed to publish cart notification %q to %s for session %q: %v", message, n.subject, n.sessionID, err)
	}
}
