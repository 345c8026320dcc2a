// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RecipientLookup resolves a voter id to an email address and display name.
type RecipientLookup func(ctx context.Context, voterID string) (email, name string, err error)

// Dispatcher sends vote confirmations from background workers.
// Enqueue never blocks and no failure is ever reported to the caller.
type Dispatcher struct {
	sender  Sender
	lookup  RecipientLookup
	timeout time.Duration
	now     func() time.Time
	jobs    chan Message

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, lookup RecipientLookup, queueSize, workers int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	d := &Dispatcher{
		sender:  sender,
		lookup:  lookup,
		timeout: timeout,
		now:     time.Now,
		jobs:    make(chan Message, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue schedules a confirmation. When the queue is full the message is dropped.
func (d *Dispatcher) Enqueue(m Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Warn("notify: dispatcher closed, dropping confirmation", "voter_id", m.VoterID)
		return
	}

	select {
	case d.jobs <- m:
	default:
		slog.Warn("notify: queue full, dropping confirmation", "voter_id", m.VoterID)
	}
}

// Close stops accepting messages and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for m := range d.jobs {
		d.deliver(m)
	}
}

func (d *Dispatcher) deliver(m Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notify: sender panicked", "panic", r, "voter_id", m.VoterID)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	to, name, err := d.lookup(ctx, m.VoterID)
	if err != nil {
		slog.Warn("notify: failed to resolve recipient", "error", err, "voter_id", m.VoterID)
		return
	}
	if to == "" {
		return
	}

	email := VoteConfirmation(name, m, d.now())
	email.To = to
	if err := d.sender.Send(ctx, email); err != nil {
		slog.Warn("notify: failed to send confirmation", "error", err, "voter_id", m.VoterID)
		return
	}
	slog.Info("vote confirmation sent", "voter_id", m.VoterID)
}
