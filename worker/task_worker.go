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

package worker

import (
	"fmt"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/event"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/task"
	"github.com/rulego/pumpsql/taskgraph"
)

// runSeries executes every task of series once and publishes the updates
// of executions that did something
func runSeries(d *task.PipelineDerivatives, repos *task.Repositories, events *event.EventQueue, name string, series []taskgraph.TaskID) bool {
	ctx := &task.TaskContext{Graph: d.TaskGraph, Repos: repos}
	worked := false
	for _, id := range series {
		t, err := d.Tasks.Get(id)
		if err != nil {
			panic(fmt.Sprintf("worker %s: %v", name, err))
		}
		u, err := t.Run(ctx)
		if err != nil {
			if errs.IsRecoverable(err) {
				logger.Warn("task %s: %v", id, err)
			} else {
				logger.Error("task %s: %v", id, err)
			}
		}
		if u.HasActivity() || err != nil {
			events.Publish(event.IncrementalUpdateMetrics{Update: u})
			worked = true
		}
	}
	return worked
}

// GenericWorker runs the pump and sink tasks it owns
type GenericWorker struct {
	idx, n     int
	configured Strategy
	strategy   Strategy
	round      uint64
	scheduler  *Scheduler
	repos      *task.Repositories
	events     *event.EventQueue
}

func NewGenericWorker(idx, n int, configured Strategy, scheduler *Scheduler, repos *task.Repositories, events *event.EventQueue) *GenericWorker {
	return &GenericWorker{
		idx:        idx,
		n:          n,
		configured: configured,
		strategy:   configured,
		scheduler:  scheduler,
		repos:      repos,
		events:     events,
	}
}

func (w *GenericWorker) Name() string {
	return fmt.Sprintf("generic-%d", w.idx)
}

func (w *GenericWorker) Subscriptions() []event.Tag {
	return []event.Tag{event.UpdatePipelineTag, event.TransitMemoryStateTag}
}

func (w *GenericWorker) HandleEvent(ev event.Event) {
	switch ev := ev.(type) {
	case event.UpdatePipeline:
		w.strategy = w.configured
		w.round = 0
	case event.TransitMemoryState:
		next := StrategyFor(w.configured, ev.Transition.To)
		if next != w.strategy {
			logger.Debug("worker %s switches to %s scheduling", w.Name(), next)
		}
		w.strategy = next
	}
}

// Strategy returns the strategy in use
func (w *GenericWorker) Strategy() Strategy {
	return w.strategy
}

func (w *GenericWorker) MainLoopCycle() bool {
	d, release := w.scheduler.Acquire()
	defer release()
	if d == nil {
		return false
	}
	series := GenericSeries(d.TaskGraph, w.repos.Queues, w.strategy, w.idx, w.n, w.round)
	w.round++
	return runSeries(d, w.repos, w.events, w.Name(), series)
}

// SourceWorker runs the source tasks it owns
type SourceWorker struct {
	idx, n    int
	scheduler *Scheduler
	repos     *task.Repositories
	events    *event.EventQueue
}

func NewSourceWorker(idx, n int, scheduler *Scheduler, repos *task.Repositories, events *event.EventQueue) *SourceWorker {
	return &SourceWorker{idx: idx, n: n, scheduler: scheduler, repos: repos, events: events}
}

func (w *SourceWorker) Name() string {
	return fmt.Sprintf("source-%d", w.idx)
}

func (w *SourceWorker) Subscriptions() []event.Tag {
	return nil
}

func (w *SourceWorker) HandleEvent(event.Event) {}

func (w *SourceWorker) MainLoopCycle() bool {
	d, release := w.scheduler.Acquire()
	defer release()
	if d == nil {
		return false
	}
	return runSeries(d, w.repos, w.events, w.Name(), SourceSeries(d.TaskGraph, w.idx, w.n))
}

