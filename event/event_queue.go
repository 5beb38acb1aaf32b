/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package event is the broadcast bus between workers.
//
// Every subscriber owns an independent unbounded backlog, so Publish never
// blocks and never drops. Subscribers drain their backlog at their own pace,
// typically once per main loop cycle.
package event

import (
	"sync"
)

// EventQueue 事件广播队列
type EventQueue struct {
	mu   sync.RWMutex
	subs map[Tag][]*EventPoll
}

// NewEventQueue creates an empty bus
func NewEventQueue() *EventQueue {
	return &EventQueue{subs: make(map[Tag][]*EventPoll)}
}

// Subscribe registers a new subscriber for the given tags. Events published
// before the call are not delivered.
func (q *EventQueue) Subscribe(tags ...Tag) *EventPoll {
	p := &EventPoll{notify: make(chan struct{}, 1)}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range tags {
		q.subs[t] = append(q.subs[t], p)
	}
	return p
}

// Unsubscribe removes p from every tag
func (q *EventQueue) Unsubscribe(p *EventPoll) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for t, ps := range q.subs {
		kept := ps[:0]
		for _, x := range ps {
			if x != p {
				kept = append(kept, x)
			}
		}
		q.subs[t] = kept
	}
}

// Publish delivers ev to every subscriber of its tag
func (q *EventQueue) Publish(ev Event) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, p := range q.subs[ev.Tag()] {
		p.push(ev)
	}
}

// EventPoll is one subscriber's backlog
type EventPoll struct {
	mu      sync.Mutex
	pending []Event
	notify  chan struct{}
}

func (p *EventPoll) push(ev Event) {
	p.mu.Lock()
	p.pending = append(p.pending, ev)
	p.mu.Unlock()
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Poll pops the oldest pending event without blocking
func (p *EventPoll) Poll() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return nil, false
	}
	ev := p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	return ev, true
}

// Drain pops every pending event, oldest first
func (p *EventPoll) Drain() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.pending
	p.pending = nil
	return out
}

// Len returns the number of pending events
func (p *EventPoll) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Notify is signalled at least once after events become pending
func (p *EventPoll) Notify() <-chan struct{} {
	return p.notify
}
