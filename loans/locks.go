package loans

import (
	"strconv"
	"sync"
)

// keyedLocks hands out one mutex per key so check-and-mutate sequences on the
// same book or patron cannot interleave. Mutexes are never released from the
// map; the key space is bounded by the catalog and patron population.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func bookKey(bookID int64) string {
	return "book:" + strconv.FormatInt(bookID, 10)
}

func patronKey(patronID string) string {
	return "patron:" + patronID
}
