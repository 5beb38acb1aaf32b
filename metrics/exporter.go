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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pumpsql"

// Exporter publishes PerformanceMetrics and memory state as Prometheus
// collectors
type Exporter struct {
	// Queue metrics
	QueueBytes *prometheus.GaugeVec
	QueueRows  *prometheus.GaugeVec
	TotalBytes prometheus.Gauge

	// Task metrics
	TaskExecutions *prometheus.GaugeVec
	TaskErrors     *prometheus.GaugeVec
	TaskDuration   *prometheus.HistogramVec

	// Row counters
	TooLateRows  prometheus.Gauge
	DroppedRows  prometheus.Gauge
	RejectedRows prometheus.Gauge

	// Memory metrics
	MemoryState       prometheus.Gauge
	MemoryTransitions *prometheus.CounterVec
	Purges            prometheus.Counter
}

// NewExporter registers every collector with reg. A nil reg registers
// nothing, which keeps the collectors usable in tests.
func NewExporter(reg prometheus.Registerer) *Exporter {
	f := promauto.With(reg)
	return &Exporter{
		QueueBytes: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_bytes",
				Help:      "Estimated bytes held by a queue",
			},
			[]string{"queue", "kind"},
		),
		QueueRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_rows",
				Help:      "Rows waiting in a queue",
			},
			[]string{"queue", "kind"},
		),
		TotalBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_total_bytes",
			Help:      "Estimated bytes held by all queues and windows",
		}),
		TaskExecutions: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "task_executions",
				Help:      "Executions of a task in the current pipeline",
			},
			[]string{"task"},
		),
		TaskErrors: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "task_errors",
				Help:      "Failed executions of a task in the current pipeline",
			},
			[]string{"task"},
		),
		TaskDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_execution_seconds",
				Help:      "Task execution duration",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"kind"},
		),
		TooLateRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "too_late_rows",
			Help:      "Rows dropped by windows because they arrived after the watermark",
		}),
		DroppedRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dropped_rows",
			Help:      "Rows dropped because a queue was full",
		}),
		RejectedRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rejected_rows",
			Help:      "Source rows rejected because of malformed input",
		}),
		MemoryState: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_state",
			Help:      "Memory state: 0 moderate, 1 severe, 2 critical",
		}),
		MemoryTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memory_transitions_total",
				Help:      "Memory state transitions",
			},
			[]string{"from", "to"},
		),
		Purges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purges_total",
			Help:      "Times every queue and window was purged",
		}),
	}
}

// Observe copies a metrics snapshot into the gauges
func (e *Exporter) Observe(m *PerformanceMetrics) {
	for _, q := range m.Queues() {
		kind := q.Queue.Kind.String()
		e.QueueBytes.WithLabelValues(q.Queue.ID, kind).Set(float64(floor0(q.Bytes)))
		e.QueueRows.WithLabelValues(q.Queue.ID, kind).Set(float64(floor0(q.Rows)))
	}
	for _, t := range m.Tasks() {
		e.TaskExecutions.WithLabelValues(t.Task.String()).Set(float64(t.Executions))
		e.TaskErrors.WithLabelValues(t.Task.String()).Set(float64(t.Errors))
	}
	s := m.Summary()
	e.TotalBytes.Set(float64(s.QueueTotalBytes))
	e.TooLateRows.Set(float64(s.TooLateRows))
	e.DroppedRows.Set(float64(s.DroppedRows))
	e.RejectedRows.Set(float64(s.FormatRejected))
}

// ObserveExecution records one task execution duration
func (e *Exporter) ObserveExecution(u TaskExecutionUpdate) {
	e.TaskDuration.WithLabelValues(u.Task.Kind.String()).Observe(u.ExecutionTime.Seconds())
}

// ObserveTransition records a memory state change
func (e *Exporter) ObserveTransition(from, to string, state int) {
	e.MemoryTransitions.WithLabelValues(from, to).Inc()
	e.MemoryState.Set(float64(state))
}

// IncPurge counts one purge
func (e *Exporter) IncPurge() {
	e.Purges.Inc()
}

// Reset clears the per-queue and per-task series after a pipeline update
func (e *Exporter) Reset() {
	e.QueueBytes.Reset()
	e.QueueRows.Reset()
	e.TaskExecutions.Reset()
	e.TaskErrors.Reset()
}
