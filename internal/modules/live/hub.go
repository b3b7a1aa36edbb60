package live

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgredis "github.com/classhall/core/internal/pkg/redis"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Hub maintains the per-session subscriber sets and fans out events. Local
// delivery is synchronous under a read lock; cross-instance delivery rides
// Redis pub/sub. rc may be nil (single instance, tests), in which case the
// hub runs purely in memory.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Subscriber]struct{}

	broadcast chan Message

	instanceID string
	rc         *pkgredis.Client
	logger     *zap.Logger
}

func NewHub(rc *pkgredis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Subscriber]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		instanceID: uuid.New().String(),
		rc:         rc,
		logger:     logger,
	}
}

// Run drains the broadcast channel and mirrors messages through Redis until
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rc != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case msg := <-h.broadcast:
			h.deliver(msg)
			if h.rc == nil {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := h.rc.Publish(ctx, redisChannel, string(data)); err != nil && h.logger != nil {
				h.logger.Warn("live publish failed", zap.Error(err))
			}
		}
	}
}

// Subscribe registers a sink for the session and returns it. The caller must
// Unsubscribe on every exit path.
func (h *Hub) Subscribe(sessionID, userID string) *Subscriber {
	sub := &Subscriber{
		SessionID: sessionID,
		UserID:    userID,
		C:         make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	set, ok := h.sessions[sessionID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.sessions[sessionID] = set
	}
	set[sub] = struct{}{}
	current := len(set)
	h.mu.Unlock()

	go h.recordViewerStats(sessionID, current)
	return sub
}

// Unsubscribe removes the sink and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	if set, ok := h.sessions[sub.SessionID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.sessions, sub.SessionID)
		}
	}
	sub.close()
	h.mu.Unlock()
}

// Publish sends a named event to every current subscriber of the session.
// Fire-and-forget: delivery failures are invisible to the caller.
func (h *Hub) Publish(sessionID, event string, payload interface{}) {
	msg := Message{SessionID: sessionID, Event: event, Payload: payload, Origin: h.instanceID}
	select {
	case h.broadcast <- msg:
	default:
		if h.logger != nil {
			h.logger.Warn("live broadcast queue full, dropping event",
				zap.String("session_id", sessionID), zap.String("event", event))
		}
	}
}

// Kick closes every sink the user holds on the session, forcing their
// stream handlers to exit. Used when a participant is banned mid-stream.
func (h *Hub) Kick(sessionID, userID string) {
	h.mu.Lock()
	for sub := range h.sessions[sessionID] {
		if sub.UserID == userID {
			delete(h.sessions[sessionID], sub)
			sub.close()
		}
	}
	if set, ok := h.sessions[sessionID]; ok && len(set) == 0 {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of live subscribers for one session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Counts returns subscriber counts per session plus the total.
func (h *Hub) Counts() (perSession map[string]int, total int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	perSession = make(map[string]int, len(h.sessions))
	for id, set := range h.sessions {
		perSession[id] = len(set)
		total += len(set)
	}
	return perSession, total
}

func (h *Hub) deliver(msg Message) {
	ev := Event{Name: msg.Event, Payload: msg.Payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.sessions[msg.SessionID] {
		select {
		case sub.C <- ev:
		default:
			// Slow subscriber: drop, the next snapshot resyncs it.
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.sessions {
		for sub := range set {
			sub.close()
		}
	}
	h.sessions = make(map[string]map[*Subscriber]struct{})
}

// subscribeRedis listens for broadcasts from other server instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == h.instanceID {
				continue
			}
			h.deliver(msg)
		}
	}
}

// recordViewerStats keeps a per-day peak concurrent viewer count and a join
// counter per session in Redis.
func (h *Hub) recordViewerStats(sessionID string, current int) {
	if h.rc == nil || current < 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	field := shortDateKey(time.Now()) + ":" + sessionID

	peak := 0
	raw, err := h.rc.Raw().HGet(ctx, redisKeyPeakViewers, field).Result()
	switch {
	case err == nil:
		if parsed, parseErr := strconv.Atoi(strings.TrimSpace(raw)); parseErr == nil {
			peak = parsed
		}
	case err == redis.Nil:
		// no-op
	default:
		if h.logger != nil {
			h.logger.Warn("live get peak viewers failed", zap.Error(err))
		}
	}

	if current > peak {
		if err := h.rc.Raw().HSet(ctx, redisKeyPeakViewers, field, current).Err(); err != nil && h.logger != nil {
			h.logger.Warn("live set peak viewers failed", zap.Error(err))
		}
	}

	if err := h.rc.Raw().HIncrBy(ctx, redisKeyJoinsTotal, field, 1).Err(); err != nil && h.logger != nil {
		h.logger.Warn("live incr joins failed", zap.Error(err))
	}
}

func shortDateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
