package achievements

import (
	"sync"
	"time"

	prommetrics "github.com/aimd54/hangul-path/internal/metrics"
)

// SessionIdleTTL is how long an idle notifier is kept after its last use.
const SessionIdleTTL = 30 * time.Minute

type session struct {
	notifier *Notifier
	lastSeen time.Time
}

// Registry holds one notifier per user session.
// Idle sessions are swept lazily from Get.
type Registry struct {
	mu        sync.Mutex
	delay     time.Duration
	sessions  map[string]*session
	now       func() time.Time
	lastSweep time.Time
}

// NewRegistry creates a registry whose notifiers use the given promotion delay.
func NewRegistry(delay time.Duration) *Registry {
	return &Registry{
		delay:     delay,
		sessions:  make(map[string]*session),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Get returns the user's notifier, creating it on first use.
func (r *Registry) Get(userID string) *Notifier {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= SessionIdleTTL {
		r.sweep(now)
	}

	s, ok := r.sessions[userID]
	if !ok {
		n := NewNotifier(r.delay)
		n.onDepth = prommetrics.AddAchievementQueueDepth
		s = &session{notifier: n}
		r.sessions[userID] = s
	}
	s.lastSeen = now
	return s.notifier
}

// sweep drops sessions unused for SessionIdleTTL that have nothing left to show.
func (r *Registry) sweep(now time.Time) {
	r.lastSweep = now
	for userID, s := range r.sessions {
		if now.Sub(s.lastSeen) >= SessionIdleTTL && s.notifier.idle() {
			delete(r.sessions, userID)
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Close stops every pending promotion.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		s.notifier.Close()
	}
}
