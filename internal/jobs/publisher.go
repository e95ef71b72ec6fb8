// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a point in a job's lifecycle.
type Status int

const (
	StatusCreated Status = iota
	StatusQueued
	StatusStarted
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusQueued:
		return "queued"
	case StatusStarted:
		return "started"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is one lifecycle transition of a Job, broadcast to every
// subscriber of a Publisher.
type Event struct {
	JobID  uuid.UUID
	Kind   Kind
	Label  string
	Status Status
	Err    error
	At     time.Time
}

// subscriberBuffer bounds how many unread events a slow subscriber (e.g.
// a paused progress bar) may lag behind before events are dropped for it.
// Publishing must never block the executor.
const subscriberBuffer = 64

// Publisher fans job lifecycle events out to subscribers — trace
// loggers, progress bars — without ever blocking the publishing job.
// Grounded on the teacher's SSE event hub (internal/web, broadcast to
// many readers over a mutex-guarded slice of channels), generalized from
// HTTP clients to arbitrary in-process subscribers.
type Publisher struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewPublisher returns an empty Publisher ready to accept subscribers.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers a new listener and returns its event channel. The
// channel is never closed; callers should stop reading when done.
func (p *Publisher) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// publish fans e out to every current subscriber. A subscriber whose
// buffer is full has the event dropped for it rather than stalling the
// caller.
func (p *Publisher) publish(e Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
