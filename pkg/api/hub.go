package api

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
)

// DefaultSubscriberBuffer is the number of frames queued per subscriber.
const DefaultSubscriberBuffer = 64

// Subscriber is one stream client.
type Subscriber struct {
	ID      string
	send    chan []byte
	dropped atomic.Uint64
}

// Messages returns the frames queued for the subscriber. The channel is
// closed when the subscriber is removed or the hub shuts down.
func (s *Subscriber) Messages() <-chan []byte { return s.send }

// Dropped returns the number of frames discarded because the client was slow.
func (s *Subscriber) Dropped() uint64 { return s.dropped.Load() }

// Hub fans published rows out to stream subscribers. Publishing never blocks
// on a subscriber.
type Hub struct {
	mu      sync.Mutex
	subs    map[string]*Subscriber
	buffer  int
	lastSeq uint64
	closed  bool
	logger  *logging.ColoredLogger
}

// NewHub creates a hub whose subscribers buffer up to buffer frames.
func NewHub(buffer int, logger *logging.ColoredLogger) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		subs:   make(map[string]*Subscriber),
		buffer: buffer,
		logger: logger,
	}
}

// Prime sets the sequence number after which rows count as new.
func (h *Hub) Prime(seq uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if seq > h.lastSeq {
		h.lastSeq = seq
	}
}

// LastSeq returns the newest sequence number pushed so far.
func (h *Hub) LastSeq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastSeq
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:   uuid.New().String(),
		send: make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.send)
		return sub
	}
	h.subs[sub.ID] = sub
	h.logger.ComponentDebug(logging.ComponentAPI, "subscriber added",
		zap.String("id", sub.ID), zap.Int("subscribers", len(h.subs)))
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.send)
	h.logger.ComponentDebug(logging.ComponentAPI, "subscriber removed",
		zap.String("id", id), zap.Uint64("dropped", sub.Dropped()))
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish pushes the rows of st newer than anything pushed before. It is
// meant to be registered with Consumer.OnPublish and returns the number of
// rows sent.
func (h *Hub) Publish(st *pipeline.State) int {
	if st == nil || st.View == nil {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}

	rows := st.View.Since(h.lastSeq)
	if len(rows) == 0 {
		return 0
	}
	h.lastSeq = rows[len(rows)-1].Entry.Seq
	if len(h.subs) == 0 {
		return len(rows)
	}

	stats := st.Stats
	frame, err := json.Marshal(StreamMessage{
		Type:    MessageEntries,
		LastSeq: h.lastSeq,
		Rows:    toRows(rows),
		Stats:   &stats,
	})
	if err != nil {
		h.logger.ComponentError(logging.ComponentAPI, "failed to encode stream frame", zap.Error(err))
		return 0
	}

	for _, sub := range h.subs {
		select {
		case sub.send <- frame:
		default:
			sub.dropped.Add(1)
			h.logger.ComponentWarn(logging.ComponentAPI, "subscriber slow, dropping frame",
				zap.String("id", sub.ID))
		}
	}
	return len(rows)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.send)
		delete(h.subs, id)
	}
}
