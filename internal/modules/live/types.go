package live

import "sync"

// Event names pushed over the per-session stream.
const (
	EventConnected       = "connected"
	EventSnapshot        = "snapshot"
	EventHeartbeat       = "heartbeat"
	EventHandRaised      = "hand_raised"
	EventHandCancelled   = "hand_cancelled"
	EventHandPicked      = "hand_picked"
	EventHandDismissed   = "hand_dismissed"
	EventTimerStarted    = "timer_started"
	EventTimerStopped    = "timer_stopped"
	EventVoteStarted     = "vote_started"
	EventVoteUpdated     = "vote_updated"
	EventVoteResult      = "vote_result"
	EventSettingsUpdated = "settings_updated"
	EventUserKicked      = "user_kicked"
	EventSessionUpdated  = "session_updated"
)

const (
	redisChannel = "classhall:live:events"

	redisKeyPeakViewers = "classhall:live:peak_viewers"
	redisKeyJoinsTotal  = "classhall:live:joins"

	subscriberBuffer = 16
	broadcastBuffer  = 256
)

// Event is one named push delivered to a subscriber sink.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Message is the envelope used by hub broadcasts and Redis fan-out. Origin
// identifies the publishing instance so it can skip its own echo.
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Origin    string      `json:"origin,omitempty"`
}

// Subscriber is one live connection's sink. The hub writes into C without
// ever blocking; a subscriber that cannot keep up misses events and is
// healed by the next snapshot.
type Subscriber struct {
	SessionID string
	UserID    string
	C         chan Event

	closeOnce sync.Once
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() { close(s.C) })
}
