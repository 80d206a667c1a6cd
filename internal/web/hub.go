package web

import (
	"sync"

	"activities-cli/internal/model"
)

type eventKind int

const (
	// eventResync asks streams to re-fetch; an empty client means every stream.
	eventResync eventKind = iota
	// eventFeedback shows a mutation outcome on one client's stream.
	eventFeedback
)

type hubEvent struct {
	kind     eventKind
	client   string
	feedback model.Feedback
}

// resourceHub fans events out to every open activities stream.
type resourceHub struct {
	mu   sync.Mutex
	subs map[chan hubEvent]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan hubEvent]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan hubEvent, cancel func()) {
	ch = make(chan hubEvent, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

// broadcast never blocks; a subscriber with a full buffer misses the event.
func (h *resourceHub) broadcast(ev hubEvent) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *resourceHub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
