package order

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
)

// Event is a user-facing notification; rendering it is up to the client.
type Event struct {
	Kind    Kind      `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func NewEvent(kind Kind, msg string) Event {
	return Event{Kind: kind, Message: msg, At: time.Now().UTC()}
}

type Notifier interface {
	Notify(Event)
}

type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// Notifiers fans an event out to each notifier in turn.
type Notifiers []Notifier

func (ns Notifiers) Notify(e Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(e)
		}
	}
}

type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(e Event) {
	if n.Log == nil {
		return
	}
	n.Log.Debug("notification", zap.String("type", string(e.Kind)), zap.String("message", e.Message))
}

const DefaultFeedSize = 20

// Feed buffers the most recent events until a client drains them.
type Feed struct {
	mu     sync.Mutex
	max    int
	events []Event
}

func NewFeed(max int) *Feed {
	if max <= 0 {
		max = DefaultFeedSize
	}
	return &Feed{max: max}
}

func (f *Feed) Notify(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.events) == f.max {
		f.events = append(f.events[:0], f.events[1:]...)
	}
	f.events = append(f.events, e)
}

// Drain returns buffered events oldest first and empties the feed.
func (f *Feed) Drain() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.events
	f.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}
