// Copyright 2024 Daniel Erat.
// All rights reserved.

// Package cache contains cache implementations.
package cache

import (
	"container/list"
	"sync"
)

// LRU implements a fixed-size LRU cache with string keys.
// It can be used concurrently from multiple goroutines.
type LRU[V any] struct {
	m   map[string]*lruEntry[V] // indexed by key
	ls  list.List               // contains keys, oldest in front
	mu  sync.Mutex              // protects m and ls
	max int                     // maximum items to store
}

// NewLRU returns a new LRU that will hold up to max items.
func NewLRU[V any](max int) *LRU[V] {
	return &LRU[V]{m: make(map[string]*lruEntry[V]), max: max}
}

type lruEntry[V any] struct {
	el  *list.Element // element in LRU.ls
	val V             // value associated with key
}

// Get returns the value associated with key.
// If the key isn't present, the zero value and false are returned.
func (lru *LRU[V]) Get(key string) (val V, ok bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	ent, ok := lru.m[key]
	if !ok {
		var zero V
		return zero, false
	}
	lru.ls.MoveToBack(ent.el)
	return ent.val, true
}

// Set saves a mapping from key to val.
func (lru *LRU[V]) Set(key string, val V) {
	if added := lru.TestAndSet(key, val, nil); !added {
		// Perform an assertion.
		panic("TestAndSet didn't save value when passed nil test function")
	}
}

// TestAndSet saves a mapping from key to val and returns true if key isn't
// already present or if test returns true when passed the existing value.
// If test returns false, the mapping is not saved and false is returned.
// The new mapping is set unconditionally (and true is returned) if test is nil.
func (lru *LRU[V]) TestAndSet(key string, val V, test func(V) bool) bool {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	// This is dumb, but whatever.
	if lru.max == 0 {
		return true
	}

	// If the key is already present in the map and the test function returns true,
	// update the value and move the entry to the end of the expiry list.
	if ent, ok := lru.m[key]; ok {
		if test != nil && !test(ent.val) {
			return false
		}
		ent.val = val
		lru.ls.MoveToBack(ent.el)
		return true
	}

	// Shrink the cache down to just below the maximum size.
	for lru.ls.Len() >= lru.max {
		el := lru.ls.Front()
		delete(lru.m, el.Value.(string))
		lru.ls.Remove(el)
	}

	// Add the new entry.
	lru.m[key] = &lruEntry[V]{lru.ls.PushBack(key), val}
	return true
}
