package notifier

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

type logNotifier struct {
	log logger.Logger
}

// NewLogNotifier writes notifications to the service log. It backs deployments without NATS.
func NewLogNotifier(log logger.Logger) repository.Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Error(ctx context.Context, message string) {
	n.log.Warnf("cart notification: %s", message)
}

type multiNotifier []repository.Notifier

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...repository.Notifier) repository.Notifier {
	out := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multiNotifier) Error(ctx context.Context, message string) {
	for _, n := range m {
		n.Error(ctx, message)
	}
}

// Recorder keeps every message it receives. Not safe for concurrent use.
type Recorder struct {
	Messages []string
}

func (r *Recorder) Error(ctx context.Context, message string) {
	r.Messages = append(r.Messages, message)
}
