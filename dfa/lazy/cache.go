package lazy

import "sync"

// Cache holds the lazily-computed states of one DFA search generation.
// Bounded by maxStates; once full, ClearKeepMemory evicts every state
// (start states included, rebuilt on demand) and the search continues building fresh
// — exactly the teacher's "clear-and-continue" policy (dfa/lazy/cache.go),
// reused here verbatim since it owes nothing to word-boundary specifics.
type Cache struct {
	mu        sync.RWMutex
	states    map[StateKey]*State
	byID      map[StateID]*State
	maxStates uint32
	nextID    StateID

	clearCount int
	hits, misses uint64
}

// NewCache returns an empty cache with room for maxStates states.
func NewCache(maxStates uint32) *Cache {
	if maxStates == 0 {
		maxStates = 1024
	}
	return &Cache{
		states:    make(map[StateKey]*State),
		byID:      make(map[StateID]*State),
		maxStates: maxStates,
	}
}

// Get looks up a state by key without inserting.
func (c *Cache) Get(key StateKey) (*State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.states[key]
	return s, ok
}

// ErrCacheFull is returned by Insert when the cache has no room left.
type ErrCacheFull struct{}

func (e *ErrCacheFull) Error() string { return "lazy DFA cache is full" }

// Insert adds a newly-built state, failing with ErrCacheFull if the cache
// is at capacity.
func (c *Cache) Insert(key StateKey, build func(id StateID) *State) (*State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[key]; ok {
		c.hits++
		return s, nil
	}
	if uint32(len(c.states)) >= c.maxStates {
		return nil, &ErrCacheFull{}
	}
	c.misses++
	id := c.nextID
	c.nextID++
	s := build(id)
	c.states[key] = s
	c.byID[id] = s
	return s, nil
}

// ByID returns the state with the given ID, if resident.
func (c *Cache) ByID(id StateID) *State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// Size reports how many states are currently cached.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

// IsFull reports whether the cache is at capacity.
func (c *Cache) IsFull() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint32(len(c.states)) >= c.maxStates
}

// Stats returns cumulative hit/miss counters (not reset by Clear).
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Clear fully resets the cache, including hit/miss stats.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = make(map[StateKey]*State)
	c.byID = make(map[StateID]*State)
	c.nextID = 0
	c.hits, c.misses = 0, 0
	c.clearCount = 0
}

// ClearKeepMemory evicts every cached state but preserves hit/miss
// statistics and bumps clearCount, so a search can tell how many times it
// has had to restart building states from scratch this run.
func (c *Cache) ClearKeepMemory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.states {
		delete(c.states, k)
	}
	for k := range c.byID {
		delete(c.byID, k)
	}
	c.nextID = 0
	c.clearCount++
}

// ClearCount returns how many times ClearKeepMemory has fired since the
// last ResetClearCount.
func (c *Cache) ClearCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clearCount
}

// ResetClearCount gives a search a fresh clear budget before it starts.
func (c *Cache) ResetClearCount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearCount = 0
}
