package negotiation

import (
	"sync"
	"time"

	"lending-engine/internal/domain/loan"
	"lending-engine/pkg/id"
)

type pairKey struct{ borrower, lender string }

type slot struct {
	session   Session
	used      bool
	accepting bool
}

// Store keeps sessions in a slot arena. Freed slots are reused, and two
// indexes point into it: by request id and by (borrower, lender).
// A zero ttl disables expiry.
type Store struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	slots  []slot
	free   []int
	byID   map[string]int
	byPair map[pairKey]int
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		byID:   make(map[string]int),
		byPair: make(map[pairKey]int),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Open starts a pending_terms session for the pair.
func (s *Store) Open(borrowerID, lenderID string, amount int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := pairKey{borrowerID, lenderID}
	if i, ok := s.byPair[key]; ok {
		if !s.evictIfExpired(i, now) {
			return Session{}, loan.ErrSessionExists
		}
	}

	sess := Session{
		RequestID:  id.NewRequestID(),
		BorrowerID: borrowerID,
		LenderID:   lenderID,
		Amount:     amount,
		Status:     StatusPendingTerms,
		CreatedAt:  now,
	}
	if s.ttl > 0 {
		sess.ExpiresAt = now.Add(s.ttl)
	}

	i := s.alloc()
	s.slots[i] = slot{session: sess, used: true}
	s.byID[sess.RequestID] = i
	s.byPair[key] = i
	return sess, nil
}

func (s *Store) Get(requestID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(requestID)
	if err != nil {
		return Session{}, err
	}
	return s.slots[i].session, nil
}

func (s *Store) FindByPair(borrowerID, lenderID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byPair[pairKey{borrowerID, lenderID}]
	if !ok || s.evictIfExpired(i, s.now()) {
		return Session{}, false
	}
	return s.slots[i].session, true
}

// Update applies fn to a copy of the session and stores it when fn
// succeeds. The session lifetime restarts from now.
func (s *Store) Update(requestID string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(requestID)
	if err != nil {
		return Session{}, err
	}
	if s.slots[i].accepting {
		return Session{}, loan.ErrAcceptInProgress
	}

	next := s.slots[i].session
	if err := fn(&next); err != nil {
		return Session{}, err
	}
	if s.ttl > 0 {
		next.ExpiresAt = s.now().Add(s.ttl)
	}
	s.slots[i].session = next
	return next, nil
}

// BeginAccept sets the in-progress marker for requestID. Only the
// session's borrower may accept, and only once terms are attached.
// A second call while the marker is held fails with ErrAcceptInProgress.
func (s *Store) BeginAccept(requestID, borrowerID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(requestID)
	if err != nil {
		return Session{}, err
	}
	sl := &s.slots[i]
	if sl.accepting {
		return Session{}, loan.ErrAcceptInProgress
	}
	if sl.session.BorrowerID != borrowerID {
		return Session{}, loan.ErrNotBorrower
	}
	if sl.session.Status != StatusPendingAcceptance {
		return Session{}, loan.ErrSessionState
	}
	sl.accepting = true
	return sl.session, nil
}

// Take removes the session when check passes. It refuses while an
// acceptance is running.
func (s *Store) Take(requestID string, check func(Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(requestID)
	if err != nil {
		return Session{}, err
	}
	if s.slots[i].accepting {
		return Session{}, loan.ErrAcceptInProgress
	}
	sess := s.slots[i].session
	if check != nil {
		if err := check(sess); err != nil {
			return Session{}, err
		}
	}
	s.release(i)
	return sess, nil
}

// Remove drops the session together with its in-progress marker.
func (s *Store) Remove(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[requestID]
	if !ok {
		return false
	}
	s.release(i)
	return true
}

// Sweep evicts expired sessions and returns how many were dropped.
// Sessions being accepted are left alone.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for i := range s.slots {
		if s.slots[i].used && s.evictIfExpired(i, now) {
			n++
		}
	}
	return n
}

// ListForUser returns live sessions where userID is either party.
func (s *Store) ListForUser(userID string) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []Session
	for i := range s.slots {
		sl := s.slots[i]
		if !sl.used || sl.session.expired(now) {
			continue
		}
		if sl.session.BorrowerID == userID || sl.session.LenderID == userID {
			out = append(out, sl.session)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// lookup resolves requestID to a live slot. Caller holds mu.
func (s *Store) lookup(requestID string) (int, error) {
	i, ok := s.byID[requestID]
	if !ok || s.evictIfExpired(i, s.now()) {
		return 0, loan.ErrSessionGone
	}
	return i, nil
}

func (s *Store) evictIfExpired(i int, now time.Time) bool {
	sl := s.slots[i]
	if sl.accepting || !sl.session.expired(now) {
		return false
	}
	s.release(i)
	return true
}

func (s *Store) alloc() int {
	if n := len(s.free); n > 0 {
		i := s.free[n-1]
		s.free = s.free[:n-1]
		return i
	}
	s.slots = append(s.slots, slot{})
	return len(s.slots) - 1
}

func (s *Store) release(i int) {
	sess := s.slots[i].session
	delete(s.byID, sess.RequestID)
	key := pairKey{sess.BorrowerID, sess.LenderID}
	if j, ok := s.byPair[key]; ok && j == i {
		delete(s.byPair, key)
	}
	s.slots[i] = slot{}
	s.free = append(s.free, i)
}
