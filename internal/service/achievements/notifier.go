package achievements

import (
	"sync"
	"time"

	"github.com/aimd54/hangul-path/internal/models"
)

// DefaultPromotionDelay is the pause between dismissing a pop-up and showing the next one.
const DefaultPromotionDelay = 600 * time.Millisecond

// afterFunc schedules f and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Notifier serializes achievement pop-ups so only one is visible at a time.
// Pending ids are promoted in FIFO order.
type Notifier struct {
	mu sync.Mutex

	delay     time.Duration
	afterFunc afterFunc
	onDepth   func(delta int)

	current   string
	queue     []string
	shown     map[string]struct{}
	promoting func() bool
}

// NewNotifier creates an empty notifier.
func NewNotifier(delay time.Duration) *Notifier {
	if delay < 0 {
		delay = 0
	}
	return &Notifier{
		delay:     delay,
		afterFunc: realAfterFunc,
		onDepth:   func(int) {},
		shown:     make(map[string]struct{}),
	}
}

// Show displays id, or queues it when another achievement is displayed.
// Ids missing from the catalog are ignored. Repeats are queued again.
// FIFO order holds among queued ids only: with the slot free during a
// promotion delay, id is shown ahead of the queue.
func (n *Notifier) Show(id string) {
	if _, ok := Lookup(id); !ok {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.shown[id] = struct{}{}
	if n.current == "" {
		n.current = id
		return
	}
	n.queue = append(n.queue, id)
	n.onDepth(1)
}

// Clear dismisses the current achievement and schedules promotion of the queue head.
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.current = ""
	if len(n.queue) == 0 || n.promoting != nil {
		return
	}
	n.promoting = n.afterFunc(n.delay, n.promote)
}

func (n *Notifier) promote() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.promoting = nil
	// A Show during the delay already took the slot.
	if n.current != "" || len(n.queue) == 0 {
		return
	}
	n.current = n.queue[0]
	n.queue[0] = ""
	n.queue = n.queue[1:]
	n.onDepth(-1)
}

// IsUnlocked reports whether id was shown during this session.
func (n *Notifier) IsUnlocked(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, ok := n.shown[id]
	return ok
}

// Current returns the displayed achievement, if any.
func (n *Notifier) Current() (models.Achievement, bool) {
	n.mu.Lock()
	id := n.current
	n.mu.Unlock()

	if id == "" {
		return models.Achievement{}, false
	}
	return Lookup(id)
}

// Pending returns the queued ids in display order.
func (n *Notifier) Pending() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, len(n.queue))
	copy(out, n.queue)
	return out
}

// idle reports whether nothing is displayed, queued or scheduled.
func (n *Notifier) idle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.current == "" && len(n.queue) == 0 && n.promoting == nil
}

// Close cancels a scheduled promotion.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.promoting != nil {
		n.promoting()
		n.promoting = nil
	}
}
