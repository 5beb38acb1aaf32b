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
	"context"

	"github.com/rulego/pumpsql/event"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/memory"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/task"
	"github.com/rulego/pumpsql/types"
	"golang.org/x/sync/errgroup"
)

// Pool is the complete set of workers of one engine
type Pool struct {
	coord   *StopCoordinate
	workers []*Worker
}

// NewPool starts every worker. exporter may be nil.
func NewPool(cfg types.Config, scheduler *Scheduler, repos *task.Repositories, events *event.EventQueue, exporter *metrics.Exporter) (*Pool, error) {
	strategy, err := ParseStrategy(cfg.Scheduler.Strategy)
	if err != nil {
		return nil, err
	}
	p := &Pool{coord: NewStopCoordinate()}
	idle := cfg.Worker.IdleSleep()

	// System workers subscribe first so they observe every update
	// published by task workers.
	handlers := []Handler{
		NewPerformanceMonitorWorker(events, exporter, cfg.Memory.ReportInterval()),
		NewMemoryStateMachineWorker(events, exporter, memory.NewStateMachine(memory.NewThresholds(cfg.Memory)), cfg.Memory.TransitionInterval()),
		NewPurgerWorker(events, exporter, scheduler, repos),
	}
	nGeneric := int(cfg.Worker.NGenericWorkerThreads)
	for i := 0; i < nGeneric; i++ {
		handlers = append(handlers, NewGenericWorker(i, nGeneric, strategy, scheduler, repos, events))
	}
	nSource := int(cfg.Worker.NSourceWorkerThreads)
	for i := 0; i < nSource; i++ {
		handlers = append(handlers, NewSourceWorker(i, nSource, scheduler, repos, events))
	}
	for _, h := range handlers {
		p.workers = append(p.workers, Start(h, events, idle, p.coord))
	}
	logger.Info("worker pool started: %d generic, %d source workers, %s scheduling", nGeneric, nSource, strategy)
	return p, nil
}

// Len returns the number of workers
func (p *Pool) Len() int {
	return len(p.workers)
}

// Stop signals every worker and waits until all of them left their loop
// or ctx is done
func (p *Pool) Stop(ctx context.Context) error {
	p.coord.Stop()
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error {
			select {
			case <-w.Done():
				return nil
			case <-gctx.Done():
				logger.Warn("worker %s did not stop in time", w.Name())
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}
