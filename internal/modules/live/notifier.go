package live

import (
	"github.com/classhall/core/internal/modules/classroom/snapshot"
	"go.uber.org/zap"
)

// Notifier is the push-event sink handed to the domain services. Every
// mutation publishes its discrete events followed by one fresh snapshot, so
// clients converge even when individual events are dropped or reordered.
type Notifier struct {
	hub    *Hub
	snap   *snapshot.Service
	logger *zap.Logger
}

func NewNotifier(hub *Hub, snap *snapshot.Service, logger *zap.Logger) *Notifier {
	return &Notifier{hub: hub, snap: snap, logger: logger}
}

// Emit publishes the given events for the session, then a snapshot event.
// Broadcast failures never surface to the mutation path.
func (n *Notifier) Emit(sessionID string, events ...Event) {
	for _, ev := range events {
		n.hub.Publish(sessionID, ev.Name, ev.Payload)
	}

	snap, err := n.snap.Build(sessionID)
	if err != nil {
		if n.logger != nil {
			n.logger.Warn("snapshot rebuild after mutation failed",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		return
	}
	n.hub.Publish(sessionID, EventSnapshot, snap)
}

// Kick force-closes the user's live connections on the session.
func (n *Notifier) Kick(sessionID, userID string) {
	n.hub.Kick(sessionID, userID)
}
