package seating

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tessera/internal/logger"
	"tessera/internal/models"

	"github.com/google/uuid"
)

// HoldMirror projects hold state into a shared cache (Redis) so sibling
// services can render availability. Best effort: the in-memory store stays
// authoritative and mirror failures are only logged.
type HoldMirror interface {
	MirrorHold(eventID string, seats []string, holdID string, ttl time.Duration) error
	ClearHold(eventID string, seats []string, holdID string) error
}

// EventPublisher receives seat status transitions after they are applied.
type EventPublisher interface {
	PublishSeatStatus(event models.SeatStatusChangeEvent) error
}

// Store owns all seat status mutation for one event. A single mutex
// serializes TryHold, Release and Commit, which gives overlapping requests
// an all-or-nothing, linearizable outcome: whichever operation observes a
// hold first consumes it, the rest see ErrHoldNotFound or a Conflict.
// None of the mutating methods touch external I/O while holding the lock.
type Store struct {
	mu      sync.Mutex
	seatmap *SeatMap
	holds   map[string]*models.Hold
	ttl     time.Duration
	now     func() time.Time

	mirror     HoldMirror
	publishers []EventPublisher
	log        *logger.Logger
}

func NewStore(seatmap *SeatMap, ttl time.Duration, mirror HoldMirror, log *logger.Logger, publishers ...EventPublisher) *Store {
	return &Store{
		seatmap:    seatmap,
		holds:      make(map[string]*models.Hold),
		ttl:        ttl,
		now:        time.Now,
		mirror:     mirror,
		publishers: publishers,
		log:        log,
	}
}

func (s *Store) EventID() string {
	return s.seatmap.EventID()
}

// Seats returns a snapshot of every seat, serialized with writers.
func (s *Store) Seats() []models.SeatInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seatmap.Seats()
}

// Status reports one seat's current state.
func (s *Store) Status(id models.SeatID) (models.SeatState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seatmap.Status(id)
}

// BestBlock runs the block finder against a consistent view of the map.
func (s *Store) BestBlock(qty int) *Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FindBestBlock(s.seatmap, qty)
}

// TryHold claims every requested seat or none of them. On success all
// seats transition to HELD under a new hold with TTL-based expiry. If any
// seat is not AVAILABLE the whole request fails with a ConflictError
// naming every blocked seat, and nothing changes.
func (s *Store) TryHold(seats []models.SeatID, ownerID string) (*models.Hold, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}
	seen := make(map[string]bool, len(seats))
	for _, id := range seats {
		if seen[id.Label()] {
			return nil, fmt.Errorf("duplicate seat in request: %s", id.Label())
		}
		seen[id.Label()] = true
	}

	s.mu.Lock()

	var blocked []string
	for _, id := range seats {
		seat := s.seatmap.seat(id)
		if seat == nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, id.Label())
		}
		if seat.status != models.SeatAvailable {
			blocked = append(blocked, id.Label())
		}
	}
	if len(blocked) > 0 {
		s.mu.Unlock()
		return nil, &ConflictError{BlockedSeats: blocked}
	}

	now := s.now()
	hold := &models.Hold{
		HoldID:    uuid.NewString(),
		EventID:   s.seatmap.EventID(),
		OwnerID:   ownerID,
		Seats:     append([]models.SeatID(nil), seats...),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	for _, id := range seats {
		s.seatmap.seat(id).status = models.SeatHeld
	}
	s.holds[hold.HoldID] = hold
	s.mu.Unlock()

	labels := models.SeatLabels(hold.Seats)
	s.log.LogHold("CREATE", hold.HoldID, fmt.Sprintf("owner=%s seats=%s ttl=%s", ownerID, strings.Join(labels, ","), s.ttl))
	s.afterTransition(models.SeatHeld, labels, hold.HoldID)
	if s.mirror != nil {
		if err := s.mirror.MirrorHold(hold.EventID, labels, hold.HoldID, s.ttl); err != nil {
			s.log.Warn("MIRROR", fmt.Sprintf("failed to mirror hold %s: %v", hold.HoldID, err))
		}
	}

	copied := *hold
	return &copied, nil
}

// Release returns every seat in the hold to AVAILABLE and removes the hold.
// Idempotent: releasing an unknown or already-released hold is a no-op,
// because client-driven release races against sweeper-driven expiry.
func (s *Store) Release(holdID string) {
	s.mu.Lock()
	hold, ok := s.holds[holdID]
	if !ok {
		s.mu.Unlock()
		return
	}
	violations := s.reclaimLocked(hold)
	delete(s.holds, holdID)
	s.mu.Unlock()

	s.finishRelease(hold, violations, "RELEASE")
}

// ReleaseExpired releases every hold past its deadline through the same
// reclamation path as explicit release, and returns the released hold IDs.
// The sweeper is the only caller in production; Commit expires defensively
// on its own.
func (s *Store) ReleaseExpired() []string {
	s.mu.Lock()
	now := s.now()
	var expired []*models.Hold
	for _, hold := range s.holds {
		if now.After(hold.ExpiresAt) {
			expired = append(expired, hold)
		}
	}
	released := make([]string, 0, len(expired))
	violationsByHold := make(map[string][]string, len(expired))
	for _, hold := range expired {
		violationsByHold[hold.HoldID] = s.reclaimLocked(hold)
		delete(s.holds, hold.HoldID)
		released = append(released, hold.HoldID)
	}
	s.mu.Unlock()

	for _, hold := range expired {
		s.finishRelease(hold, violationsByHold[hold.HoldID], "EXPIRE")
	}
	return released
}

// Commit converts the hold into a sale: every seat transitions to SOLD and
// the hold is consumed. Fails with ErrHoldNotFound when the hold is gone -
// already expired, released, or committed - which is how the commit-vs-
// expiry race resolves: existence of the hold record under the store mutex
// decides the winner. A hold past its deadline that the sweeper has not
// reached yet is expired here and also reported as not found.
func (s *Store) Commit(holdID string, info models.SaleInfo) (*models.Sale, error) {
	s.mu.Lock()
	hold, ok := s.holds[holdID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}

	now := s.now()
	if now.After(hold.ExpiresAt) {
		violations := s.reclaimLocked(hold)
		delete(s.holds, holdID)
		s.mu.Unlock()
		s.finishRelease(hold, violations, "EXPIRE")
		return nil, fmt.Errorf("%w: %s expired at %s", ErrHoldNotFound, holdID, hold.ExpiresAt.UTC().Format(time.RFC3339))
	}

	var total int64
	infos := make([]models.SeatInfo, 0, len(hold.Seats))
	for _, id := range hold.Seats {
		seat := s.seatmap.seat(id)
		if seat == nil || seat.status != models.SeatHeld {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: seat %s not HELD under hold %s", ErrInvariantViolation, id.Label(), holdID)
		}
		total += seat.PriceCents
		infos = append(infos, models.SeatInfo{
			Row:        seat.ID.Row,
			Number:     seat.ID.Number,
			Status:     models.SeatSold,
			Tier:       seat.Tier,
			PriceCents: seat.PriceCents,
		})
	}
	for _, id := range hold.Seats {
		s.seatmap.seat(id).status = models.SeatSold
	}
	delete(s.holds, holdID)

	sale := &models.Sale{
		SaleID:      uuid.NewString(),
		EventID:     hold.EventID,
		UserID:      info.UserID,
		AmountCents: total,
		PaymentRef:  info.PaymentRef,
		CreatedAt:   now,
		Seats:       infos,
	}
	s.mu.Unlock()

	labels := models.SeatLabels(hold.Seats)
	s.log.LogHold("COMMIT", holdID, fmt.Sprintf("sale=%s seats=%s amount=%d", sale.SaleID, strings.Join(labels, ","), total))
	s.afterTransition(models.SeatSold, labels, holdID)
	if s.mirror != nil {
		if err := s.mirror.ClearHold(hold.EventID, labels, holdID); err != nil {
			s.log.Warn("MIRROR", fmt.Sprintf("failed to clear hold %s: %v", holdID, err))
		}
	}

	return sale, nil
}

// IsExpired reports whether the hold's stored deadline has passed. A hold
// that no longer exists counts as expired.
func (s *Store) IsExpired(holdID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[holdID]
	if !ok {
		return true
	}
	return s.now().After(hold.ExpiresAt)
}

// GetHold returns a copy of an active hold.
func (s *Store) GetHold(holdID string) (*models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[holdID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	copied := *hold
	copied.Seats = append([]models.SeatID(nil), hold.Seats...)
	return &copied, nil
}

// QuoteHold recomputes the total price of a hold's seats from the
// authoritative map. Client-reported amounts are never trusted.
func (s *Store) QuoteHold(holdID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[holdID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrHoldNotFound, holdID)
	}
	var total int64
	for _, id := range hold.Seats {
		seat := s.seatmap.seat(id)
		if seat == nil {
			return 0, fmt.Errorf("%w: seat %s under hold %s", ErrInvariantViolation, id.Label(), holdID)
		}
		total += seat.PriceCents
	}
	return total, nil
}

// reclaimLocked returns a hold's seats to AVAILABLE. Caller holds s.mu.
// Seats found in any state other than HELD are reported, not repaired.
func (s *Store) reclaimLocked(hold *models.Hold) []string {
	var violations []string
	for _, id := range hold.Seats {
		seat := s.seatmap.seat(id)
		if seat == nil || seat.status != models.SeatHeld {
			violations = append(violations, id.Label())
			continue
		}
		seat.status = models.SeatAvailable
	}
	return violations
}

func (s *Store) finishRelease(hold *models.Hold, violations []string, action string) {
	labels := models.SeatLabels(hold.Seats)
	violated := make(map[string]bool, len(violations))
	for _, label := range violations {
		violated[label] = true
		s.log.Error("INVARIANT", fmt.Sprintf("%v: seat %s not HELD while releasing hold %s", ErrInvariantViolation, label, hold.HoldID))
	}

	// Only seats actually returned to AVAILABLE are announced as such; a
	// seat left in another state (e.g. SOLD) must not be advertised free.
	released := labels
	if len(violated) > 0 {
		released = released[:0:0]
		for _, label := range labels {
			if !violated[label] {
				released = append(released, label)
			}
		}
	}

	s.log.LogHold(action, hold.HoldID, fmt.Sprintf("seats=%s", strings.Join(labels, ",")))
	if len(released) > 0 {
		s.afterTransition(models.SeatAvailable, released, hold.HoldID)
	}
	if s.mirror != nil {
		if err := s.mirror.ClearHold(hold.EventID, labels, hold.HoldID); err != nil {
			s.log.Warn("MIRROR", fmt.Sprintf("failed to clear hold %s: %v", hold.HoldID, err))
		}
	}
}

func (s *Store) afterTransition(status models.SeatState, labels []string, holdID string) {
	if len(s.publishers) == 0 {
		return
	}
	event := models.SeatStatusChangeEvent{
		EventID:   s.seatmap.EventID(),
		Seats:     labels,
		Status:    status,
		HoldID:    holdID,
		Timestamp: s.now(),
	}
	for _, p := range s.publishers {
		if err := p.PublishSeatStatus(event); err != nil {
			s.log.Warn("EVENTS", fmt.Sprintf("failed to publish seat status: %v", err))
		}
	}
}
