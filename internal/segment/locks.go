package segment

import (
	"sync"

	"github.com/google/uuid"
)

type pairKey struct {
	segmentID uuid.UUID
	userID    uuid.UUID
}

// pairLocks serializes effort recording per (segment, user) so two sessions
// ending at once cannot both read the same "prior best" and both flag a PR.
// Entries are reference counted and dropped once the last holder unlocks.
type pairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[pairKey]*pairLock)}
}

func (p *pairLocks) lock(segmentID, userID uuid.UUID) (unlock func()) {
	key := pairKey{segmentID, userID}

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}
