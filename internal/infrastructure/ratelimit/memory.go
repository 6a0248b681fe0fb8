// Package ratelimit holds the in-process login attempt limiter used when
// Redis is disabled.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// ring holds the timestamps of up to cap(times) recent attempts.
type ring struct {
	times []time.Time
	head  int // index of the oldest entry once full
}

func (r *ring) full() bool { return len(r.times) == cap(r.times) }

func (r *ring) oldest() time.Time {
	if r.full() {
		return r.times[r.head]
	}
	return r.times[0]
}

func (r *ring) newest() time.Time {
	if !r.full() {
		return r.times[len(r.times)-1]
	}
	return r.times[(r.head+len(r.times)-1)%len(r.times)]
}

func (r *ring) push(t time.Time) {
	if !r.full() {
		r.times = append(r.times, t)
		return
	}
	r.times[r.head] = t
	r.head = (r.head + 1) % len(r.times)
}

// Memory is a sliding-window limiter keeping at most limit timestamps per
// key in a fixed-capacity ring. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	keys   map[string]*ring
	now    func() time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	if limit <= 0 {
		limit = 1
	}
	return &Memory{
		limit:  limit,
		window: window,
		keys:   make(map[string]*ring),
		now:    time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.keys[key]
	if !ok {
		return 0, nil
	}
	now := m.now()
	if now.Sub(r.newest()) >= m.window {
		delete(m.keys, key)
		return 0, nil
	}
	if !r.full() {
		return 0, nil
	}
	wait := m.window - now.Sub(r.oldest())
	if wait <= 0 {
		return 0, nil
	}
	return int((wait + time.Second - 1) / time.Second), nil
}

func (m *Memory) Record(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.keys[key]
	if !ok {
		r = &ring{times: make([]time.Time, 0, m.limit)}
		m.keys[key] = r
	}
	r.push(m.now())
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
