package sse

import (
	"context"
	"sync"

	"tessera/internal/models"
)

// SeatEventEmitter fans seat status transitions out to SSE subscribers,
// keyed by event ID. It implements seating.EventPublisher so the hold
// store can feed it alongside Kafka.
type SeatEventEmitter struct {
	clients     map[string][]chan models.SeatStatusChangeEvent
	clientMutex sync.RWMutex
}

func NewSeatEventEmitter() *SeatEventEmitter {
	return &SeatEventEmitter{
		clients: make(map[string][]chan models.SeatStatusChangeEvent),
	}
}

// Subscribe adds a client for one event's seat transitions. The channel is
// removed when the context is done.
func (e *SeatEventEmitter) Subscribe(ctx context.Context, eventID string) chan models.SeatStatusChangeEvent {
	clientChan := make(chan models.SeatStatusChangeEvent, 10)

	e.clientMutex.Lock()
	e.clients[eventID] = append(e.clients[eventID], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(eventID, clientChan)
	}()

	return clientChan
}

// PublishSeatStatus broadcasts a transition to all subscribers of the
// event. Slow clients are skipped rather than blocking the store. The
// sends happen under the read lock: removeClient closes channels under
// the write lock, so a send can never land on a closed channel.
func (e *SeatEventEmitter) PublishSeatStatus(event models.SeatStatusChangeEvent) error {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, clientChan := range e.clients[event.EventID] {
		select {
		case clientChan <- event:
		default:
			// Channel buffer full, skip this client for now
		}
	}
	return nil
}

func (e *SeatEventEmitter) removeClient(eventID string, clientChan chan models.SeatStatusChangeEvent) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[eventID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
}

// SubscriberCount reports how many clients follow an event.
func (e *SeatEventEmitter) SubscriberCount(eventID string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[eventID])
}
