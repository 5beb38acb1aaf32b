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
	"sort"
	"sync"
	"time"

	"github.com/rulego/pumpsql/taskgraph"
)

// Basic statistics field constants
const (
	InputCount     = "input_count"
	OutputCount    = "output_count"
	DroppedCount   = "dropped_count"
	TooLateCount   = "too_late_count"
	RejectedCount  = "rejected_count"
	QueueBytes     = "queue_bytes"
	QueueRows      = "queue_rows"
	TaskErrorCount = "task_error_count"
)

// TaskMetrics 任务执行统计
type TaskMetrics struct {
	Executions   uint64
	Errors       uint64
	AvgExecution time.Duration
}

// QueueMetrics 队列统计
type QueueMetrics struct {
	Rows  int64
	Bytes int64
}

// PerformanceMetrics aggregates the task execution updates of one
// pipeline generation. It is owned by the performance monitor worker and
// read by the exporter.
type PerformanceMetrics struct {
	mu           sync.RWMutex
	tasks        map[taskgraph.TaskID]*TaskMetrics
	rowQueues    map[taskgraph.RowQueueID]*QueueMetrics
	windowQueues map[taskgraph.WindowQueueID]*QueueMetrics

	inputCount    int64
	outputCount   int64
	droppedCount  int64
	tooLateCount  int64
	rejectedCount int64
}

// NewPerformanceMetrics creates zeroed metrics for every task and queue of g
func NewPerformanceMetrics(g *taskgraph.TaskGraph) *PerformanceMetrics {
	m := &PerformanceMetrics{
		tasks:        make(map[taskgraph.TaskID]*TaskMetrics),
		rowQueues:    make(map[taskgraph.RowQueueID]*QueueMetrics),
		windowQueues: make(map[taskgraph.WindowQueueID]*QueueMetrics),
	}
	if g == nil {
		return m
	}
	for _, id := range g.AllTasks() {
		m.tasks[id] = &TaskMetrics{}
	}
	for _, id := range g.RowQueueIDs() {
		m.rowQueues[id] = &QueueMetrics{}
	}
	for _, id := range g.WindowQueueIDs() {
		m.windowQueues[id] = &QueueMetrics{}
	}
	return m
}

// Apply folds an update into the metrics. Updates for tasks or queues
// unknown to this generation are ignored.
func (m *PerformanceMetrics) Apply(u Update) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch u := u.(type) {
	case TaskExecutionUpdate:
		m.applyTaskExecution(u)
	case PurgeUpdate:
		for _, q := range m.windowQueues {
			*q = QueueMetrics{}
		}
	}
}

func (m *PerformanceMetrics) applyTaskExecution(u TaskExecutionUpdate) {
	if t, ok := m.tasks[u.Task]; ok {
		t.AvgExecution += (u.ExecutionTime - t.AvgExecution) / time.Duration(t.Executions+1)
		t.Executions++
		if u.Failed {
			t.Errors++
		}
	}
	for _, in := range u.InQueues {
		if q := m.queue(in.Queue); q != nil {
			q.Rows -= in.RowsUsed
			q.Bytes += in.WindowGainBytesStates + in.WindowGainBytesRows - in.BytesUsed
		}
	}
	for _, out := range u.OutQueues {
		if q := m.queue(out.Queue); q != nil {
			q.Rows += out.RowsPut
			q.Bytes += out.BytesPut
		}
		m.droppedCount += out.RowsDropped
	}
	m.inputCount += u.RowsFromSource
	m.outputCount += u.RowsToSink
	m.tooLateCount += u.TooLate
	m.rejectedCount += u.FormatRejected
}

func (m *PerformanceMetrics) queue(id taskgraph.QueueID) *QueueMetrics {
	if id.Kind == taskgraph.WindowQueue {
		return m.windowQueues[id.WindowQueueID()]
	}
	return m.rowQueues[id.RowQueueID()]
}

// Summary condenses the metrics into what the memory state machine needs
func (m *PerformanceMetrics) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s Summary
	for _, q := range m.rowQueues {
		s.RowQueueBytes += floor0(q.Bytes)
		s.QueueRows += floor0(q.Rows)
	}
	for _, q := range m.windowQueues {
		s.WindowQueueBytes += floor0(q.Bytes)
		s.QueueRows += floor0(q.Rows)
	}
	s.QueueTotalBytes = s.RowQueueBytes + s.WindowQueueBytes
	s.TooLateRows = uint64(m.tooLateCount)
	s.DroppedRows = uint64(m.droppedCount)
	s.FormatRejected = uint64(m.rejectedCount)
	return s
}

func floor0(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// BasicStats returns the counters as a flat map
func (m *PerformanceMetrics) BasicStats() map[string]int64 {
	s := m.Summary()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var taskErrors int64
	for _, t := range m.tasks {
		taskErrors += int64(t.Errors)
	}
	return map[string]int64{
		InputCount:     m.inputCount,
		OutputCount:    m.outputCount,
		DroppedCount:   m.droppedCount,
		TooLateCount:   m.tooLateCount,
		RejectedCount:  m.rejectedCount,
		QueueBytes:     int64(s.QueueTotalBytes),
		QueueRows:      int64(s.QueueRows),
		TaskErrorCount: taskErrors,
	}
}

// TaskSnapshot is a copy of one task's metrics
type TaskSnapshot struct {
	Task taskgraph.TaskID
	TaskMetrics
}

// QueueSnapshot is a copy of one queue's metrics
type QueueSnapshot struct {
	Queue taskgraph.QueueID
	QueueMetrics
}

// Tasks returns a copy of every task's metrics ordered by task id
func (m *PerformanceMetrics) Tasks() []TaskSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TaskSnapshot, 0, len(m.tasks))
	for id, t := range m.tasks {
		out = append(out, TaskSnapshot{Task: id, TaskMetrics: *t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task.String() < out[j].Task.String() })
	return out
}

// Queues returns a copy of every queue's metrics ordered by queue id
func (m *PerformanceMetrics) Queues() []QueueSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QueueSnapshot, 0, len(m.rowQueues)+len(m.windowQueues))
	for id, q := range m.rowQueues {
		out = append(out, QueueSnapshot{Queue: taskgraph.QueueID{Kind: taskgraph.RowQueue, ID: string(id)}, QueueMetrics: *q})
	}
	for id, q := range m.windowQueues {
		out = append(out, QueueSnapshot{Queue: taskgraph.QueueID{Kind: taskgraph.WindowQueue, ID: string(id)}, QueueMetrics: *q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Queue.ID < out[j].Queue.ID })
	return out
}

// Summary is the periodic digest of PerformanceMetrics
type Summary struct {
	QueueTotalBytes  uint64
	RowQueueBytes    uint64
	WindowQueueBytes uint64
	QueueRows        uint64
	TooLateRows      uint64
	DroppedRows      uint64
	FormatRejected   uint64
}
