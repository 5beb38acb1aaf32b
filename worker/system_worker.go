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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rulego/pumpsql/event"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/memory"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/task"
)

// PerformanceMonitorWorker owns the PerformanceMetrics of the running
// pipeline and reports its summary periodically
type PerformanceMonitorWorker struct {
	events     *event.EventQueue
	exporter   *metrics.Exporter
	interval   time.Duration
	metrics    *metrics.PerformanceMetrics
	lastReport time.Time
}

func NewPerformanceMonitorWorker(events *event.EventQueue, exporter *metrics.Exporter, interval time.Duration) *PerformanceMonitorWorker {
	return &PerformanceMonitorWorker{events: events, exporter: exporter, interval: interval}
}

func (w *PerformanceMonitorWorker) Name() string { return "performance-monitor" }

func (w *PerformanceMonitorWorker) Subscriptions() []event.Tag {
	return []event.Tag{event.UpdatePipelineTag, event.IncrementalUpdateMetricsTag}
}

func (w *PerformanceMonitorWorker) HandleEvent(ev event.Event) {
	switch ev := ev.(type) {
	case event.UpdatePipeline:
		w.metrics = metrics.NewPerformanceMetrics(ev.Derivatives.TaskGraph)
		if w.exporter != nil {
			w.exporter.Reset()
		}
	case event.IncrementalUpdateMetrics:
		if w.metrics == nil {
			return
		}
		w.metrics.Apply(ev.Update)
		if u, ok := ev.Update.(metrics.TaskExecutionUpdate); ok && w.exporter != nil {
			w.exporter.ObserveExecution(u)
		}
	}
}

func (w *PerformanceMonitorWorker) MainLoopCycle() bool {
	if w.metrics == nil || time.Since(w.lastReport) < w.interval {
		return false
	}
	w.lastReport = time.Now()
	w.events.Publish(event.ReportMetricsSummary{Summary: w.metrics.Summary()})
	if w.exporter != nil {
		w.exporter.Observe(w.metrics)
	}
	return false
}

// MemoryStateMachineWorker feeds reported summaries into the memory state
// machine and publishes its transitions
type MemoryStateMachineWorker struct {
	events   *event.EventQueue
	exporter *metrics.Exporter
	machine  *memory.StateMachine
	interval time.Duration
	latest   *metrics.Summary
	lastEval time.Time
}

func NewMemoryStateMachineWorker(events *event.EventQueue, exporter *metrics.Exporter, machine *memory.StateMachine, interval time.Duration) *MemoryStateMachineWorker {
	return &MemoryStateMachineWorker{events: events, exporter: exporter, machine: machine, interval: interval}
}

func (w *MemoryStateMachineWorker) Name() string { return "memory-state-machine" }

func (w *MemoryStateMachineWorker) Subscriptions() []event.Tag {
	return []event.Tag{event.UpdatePipelineTag, event.ReportMetricsSummaryTag}
}

func (w *MemoryStateMachineWorker) HandleEvent(ev event.Event) {
	switch ev := ev.(type) {
	case event.UpdatePipeline:
		w.machine.Reset()
		w.latest = nil
		if w.exporter != nil {
			w.exporter.MemoryState.Set(float64(memory.Moderate))
		}
	case event.ReportMetricsSummary:
		s := ev.Summary
		w.latest = &s
	}
}

func (w *MemoryStateMachineWorker) MainLoopCycle() bool {
	if w.latest == nil || time.Since(w.lastEval) < w.interval {
		return false
	}
	w.lastEval = time.Now()
	bytes := w.latest.QueueTotalBytes
	w.latest = nil
	for _, t := range w.machine.Update(bytes) {
		th := w.machine.Thresholds()
		logger.Info("memory state %s (queues hold %s, severe above %s, critical above %s)",
			t, humanize.Bytes(bytes), humanize.Bytes(th.ModerateToSevere), humanize.Bytes(th.SevereToCritical))
		if w.exporter != nil {
			w.exporter.ObserveTransition(t.From.String(), t.To.String(), int(t.To))
		}
		w.events.Publish(event.TransitMemoryState{Transition: t})
	}
	return false
}

// PurgerWorker drops every window state when memory turns Critical
type PurgerWorker struct {
	events    *event.EventQueue
	exporter  *metrics.Exporter
	scheduler *Scheduler
	repos     *task.Repositories
}

func NewPurgerWorker(events *event.EventQueue, exporter *metrics.Exporter, scheduler *Scheduler, repos *task.Repositories) *PurgerWorker {
	return &PurgerWorker{events: events, exporter: exporter, scheduler: scheduler, repos: repos}
}

func (w *PurgerWorker) Name() string { return "purger" }

func (w *PurgerWorker) Subscriptions() []event.Tag {
	return []event.Tag{event.TransitMemoryStateTag}
}

func (w *PurgerWorker) HandleEvent(ev event.Event) {
	t, ok := ev.(event.TransitMemoryState)
	if !ok || !t.Transition.EntersCritical() {
		return
	}
	w.Purge()
}

// Purge drops pane states and window queue contents while no task runs
func (w *PurgerWorker) Purge() {
	w.scheduler.Exclusive(func(d *task.PipelineDerivatives) {
		var paneBytes int64
		if d != nil {
			paneBytes = d.Tasks.PurgeWindows()
		}
		rows, bytes := w.repos.Queues.Windows.Purge()
		logger.Warn("purged windows: %s of pane state, %d buffered rows, %s released from window queues",
			humanize.Bytes(uint64(paneBytes)), rows, humanize.Bytes(uint64(bytes)))
		w.events.Publish(event.IncrementalUpdateMetrics{Update: metrics.PurgeUpdate{}})
	})
	if w.exporter != nil {
		w.exporter.IncPurge()
	}
}

func (w *PurgerWorker) MainLoopCycle() bool { return false }
