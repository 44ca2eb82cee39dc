package lock

import "sync"

// KeyedMutex serializes callers that share a key while leaving unrelated keys
// independent. Used to close check-then-act races on per-owner scheduling
// state (overlap checks, capacity admission) within a single process.
//
// Entries are never evicted; the key space here is bounded by the number of
// courses and sessions, which is small compared to visitor-style maps.
type KeyedMutex struct {
	mus sync.Map // key -> *sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock function.
//
//	unlock := locks.Lock(courseID)
//	defer unlock()
func (k *KeyedMutex) Lock(key int) func() {
	v, _ := k.mus.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
