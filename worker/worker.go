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

// Package worker drives pipeline tasks on a fixed set of goroutines.
//
// Every worker runs the same loop: drain its event subscriptions, run one
// main loop cycle, and sleep for the idle interval when the cycle found
// nothing to do. Generic workers run pump and sink tasks, source workers
// run source tasks, and three singleton workers keep the performance
// metrics, the memory state machine and window purging.
//
// Tasks are partitioned across workers of the same kind so every task is
// executed by exactly one goroutine.
package worker

import (
	"sync"
	"time"

	"github.com/rulego/pumpsql/event"
	"github.com/rulego/pumpsql/logger"
)

// Handler is the body of one worker
type Handler interface {
	Name() string
	// Subscriptions lists the event tags HandleEvent receives
	Subscriptions() []event.Tag
	HandleEvent(ev event.Event)
	// MainLoopCycle returns whether it did any work. Workers that did no
	// work sleep before the next cycle.
	MainLoopCycle() bool
}

// StopCoordinate is the stop signal shared by every worker of a pool.
// Waiting for the workers to leave is done on each Worker's Done.
type StopCoordinate struct {
	stop chan struct{}
	once sync.Once
}

func NewStopCoordinate() *StopCoordinate {
	return &StopCoordinate{stop: make(chan struct{})}
}

// Stopping is closed once Stop is called
func (c *StopCoordinate) Stopping() <-chan struct{} {
	return c.stop
}

// Stop asks every worker to leave its loop. It does not wait.
func (c *StopCoordinate) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Worker runs a Handler on its own goroutine
type Worker struct {
	handler   Handler
	events    *event.EventQueue
	poll      *event.EventPoll
	idleSleep time.Duration
	coord     *StopCoordinate
	done      chan struct{}
}

// Start subscribes h and launches its loop. Subscription happens before
// Start returns so no event published afterwards is missed.
func Start(h Handler, events *event.EventQueue, idleSleep time.Duration, coord *StopCoordinate) *Worker {
	w := &Worker{
		handler:   h,
		events:    events,
		poll:      events.Subscribe(h.Subscriptions()...),
		idleSleep: idleSleep,
		coord:     coord,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w
}

// Name returns the handler name
func (w *Worker) Name() string {
	return w.handler.Name()
}

// Done is closed when the loop has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) loop() {
	defer func() {
		w.events.Unsubscribe(w.poll)
		close(w.done)
	}()
	logger.Debug("worker %s started", w.handler.Name())

	timer := time.NewTimer(w.idleSleep)
	defer timer.Stop()
	for {
		select {
		case <-w.coord.Stopping():
			logger.Debug("worker %s stopped", w.handler.Name())
			return
		default:
		}

		for _, ev := range w.poll.Drain() {
			w.safeHandle(ev)
		}
		if w.safeCycle() {
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.idleSleep)
		select {
		case <-w.coord.Stopping():
			logger.Debug("worker %s stopped", w.handler.Name())
			return
		case <-w.poll.Notify():
		case <-timer.C:
		}
	}
}

func (w *Worker) safeHandle(ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker %s panic recovered while handling %s: %v", w.handler.Name(), ev.Tag(), r)
		}
	}()
	w.handler.HandleEvent(ev)
}

func (w *Worker) safeCycle() (worked bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker %s panic recovered: %v", w.handler.Name(), r)
			worked = false
		}
	}()
	return w.handler.MainLoopCycle()
}
