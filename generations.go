package main

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type panelGroup int

const (
	panelNavigation panelGroup = iota
	panelResponse
	panelGroups
)

type panelGenerations struct {
	mu      sync.Mutex
	current [panelGroups]uint64
}

// generationTracker hands out per-session, per-panel generation numbers so a
// slow response never overwrites a panel a newer request already owns.
type generationTracker struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *panelGenerations]
}

func newGenerationTracker(size int, ttl time.Duration) *generationTracker {
	return &generationTracker{
		sessions: expirable.NewLRU[string, *panelGenerations](size, nil, ttl),
	}
}

func (t *generationTracker) forSession(sessionID string) *panelGenerations {
	t.mu.Lock()
	defer t.mu.Unlock()
	gens, ok := t.sessions.Get(sessionID)
	if !ok {
		gens = &panelGenerations{}
	}
	// Add refreshes the entry's expiry.
	t.sessions.Add(sessionID, gens)
	return gens
}

// Begin starts a new generation for the panel group and returns its token.
func (t *generationTracker) Begin(sessionID string, group panelGroup) uint64 {
	gens := t.forSession(sessionID)
	gens.mu.Lock()
	defer gens.mu.Unlock()
	gens.current[group]++
	return gens.current[group]
}

// Current reports whether token is still the latest generation for the group.
func (t *generationTracker) Current(sessionID string, group panelGroup, token uint64) bool {
	t.mu.Lock()
	gens, ok := t.sessions.Peek(sessionID)
	t.mu.Unlock()
	if !ok {
		return false
	}
	gens.mu.Lock()
	defer gens.mu.Unlock()
	return gens.current[group] == token
}

func (t *generationTracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions.Remove(sessionID)
}
