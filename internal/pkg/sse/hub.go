// Package sse fans server-sent events out to the open streams of each user.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

const streamBuffer = 16

// DefaultMaxStreams caps the concurrent streams of one user when NewHub gets zero.
const DefaultMaxStreams = 5

var ErrTooManyStreams = errors.New("too many open notification streams")

type Event struct {
	// ID becomes the SSE id field so clients can resume with Last-Event-ID.
	ID    string
	Event string
	Data  any
}

type stream chan Event

// Hub delivers events without blocking publishers: a stream whose buffer
// is full misses the event.
type Hub struct {
	mu         sync.RWMutex
	streams    map[string]map[stream]struct{}
	maxStreams int
}

func NewHub(maxStreams int) *Hub {
	if maxStreams <= 0 {
		maxStreams = DefaultMaxStreams
	}
	return &Hub{
		streams:    make(map[string]map[stream]struct{}),
		maxStreams: maxStreams,
	}
}

// Subscribe opens a stream for userID. The returned close func is idempotent.
func (h *Hub) Subscribe(userID string) (<-chan Event, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	open := h.streams[userID]
	if len(open) >= h.maxStreams {
		return nil, nil, ErrTooManyStreams
	}
	if open == nil {
		open = make(map[stream]struct{})
		h.streams[userID] = open
	}
	s := make(stream, streamBuffer)
	open[s] = struct{}{}

	var once sync.Once
	return s, func() { once.Do(func() { h.remove(userID, s) }) }, nil
}

func (h *Hub) remove(userID string, s stream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams[userID], s)
	if len(h.streams[userID]) == 0 {
		delete(h.streams, userID)
	}
	close(s)
}

// Publish returns the number of streams that accepted ev.
func (h *Hub) Publish(userID string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.streams[userID] {
		select {
		case s <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) streamCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[userID])
}

// WriteEvent writes ev as one text/event-stream frame with JSON data.
func WriteEvent(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if ev.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, payload)
	return err
}
