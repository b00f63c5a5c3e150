package seating

import (
	"fmt"
	"sync"
	"time"

	"tessera/internal/logger"
	"tessera/internal/models"
)

// Registry keeps one Store per event instance. Events are created by the
// admin generate endpoint (or at startup from config) and never removed.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store

	ttl        time.Duration
	mirror     HoldMirror
	publishers []EventPublisher
	log        *logger.Logger
}

func NewRegistry(ttl time.Duration, mirror HoldMirror, log *logger.Logger, publishers ...EventPublisher) *Registry {
	return &Registry{
		stores:     make(map[string]*Store),
		ttl:        ttl,
		mirror:     mirror,
		publishers: publishers,
		log:        log,
	}
}

// CreateEvent generates a seat map from the venue spec and registers a
// store for it. The grid shape is fixed once generated.
func (r *Registry) CreateEvent(eventID string, spec models.VenueSpec) (*Store, error) {
	seatmap, err := NewSeatMap(eventID, spec)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[eventID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrEventExists, eventID)
	}
	store := NewStore(seatmap, r.ttl, r.mirror, r.log, r.publishers...)
	r.stores[eventID] = store
	r.log.Info("REGISTRY", fmt.Sprintf("event %s created: %d rows x %d seats", eventID, spec.Rows, spec.SeatsPerRow))
	return store, nil
}

// Event returns the store for an event.
func (r *Registry) Event(eventID string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return store, nil
}

// Stores snapshots every registered store, for the sweeper.
func (r *Registry) Stores() []*Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Store, 0, len(r.stores))
	for _, store := range r.stores {
		out = append(out, store)
	}
	return out
}

// FindHold locates the store owning an active hold. Hold IDs are UUIDs,
// so a linear scan across events is unambiguous.
func (r *Registry) FindHold(holdID string) (*Store, *models.Hold, error) {
	for _, store := range r.Stores() {
		if hold, err := store.GetHold(holdID); err == nil {
			return store, hold, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
}
