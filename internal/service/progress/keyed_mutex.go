package progress

import "sync"

// keyedMutex provides mutual exclusion per string key, so operations on
// different keys proceed in parallel while operations on the same key are
// serialized. Locks are created lazily and kept for the life of the process;
// the key space here (active user/word pairs) is small enough that eviction
// is not worth the complexity.
type keyedMutex struct {
	locks sync.Map // string -> *sync.Mutex
}

// Lock acquires the mutex for the given key, creating it on first use.
// It returns the unlock function for the acquired mutex.
func (k *keyedMutex) Lock(key string) func() {
	entry, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := entry.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
