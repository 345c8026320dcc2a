// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-vote/election"
)

const writeTimeout = 5 * time.Second

type queuedEntry struct {
	ctx     context.Context
	at      time.Time
	userID  string
	action  Action
	details string
}

// Queue hands entries to a background writer so request paths never wait
// on the audit table. Log never blocks: when the buffer is full the entry
// is dropped with a warning. Entries keep the time they were logged at,
// not the time the writer reaches them.
type Queue struct {
	next    Writer
	clock   election.Clock
	entries chan queuedEntry

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(next Writer, clock election.Clock, size int) *Queue {
	if size <= 0 {
		size = 256
	}
	q := &Queue{
		next:    next,
		clock:   clock,
		entries: make(chan queuedEntry, size),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *Queue) Log(ctx context.Context, userID string, action Action, details string) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		slog.Warn("audit: queue closed, dropping entry", "action", action)
		return
	}

	select {
	case q.entries <- queuedEntry{
		ctx:     context.WithoutCancel(ctx),
		at:      q.clock.Now(),
		userID:  userID,
		action:  action,
		details: details,
	}:
	default:
		slog.Warn("audit: queue full, dropping entry", "action", action)
	}
}

// Close stops accepting entries and waits for the buffered ones to be written.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.entries)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for e := range q.entries {
		ctx, cancel := context.WithTimeout(e.ctx, writeTimeout)
		q.next.LogAt(ctx, e.at, e.userID, e.action, e.details)
		cancel()
	}
}
