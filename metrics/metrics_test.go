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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowGraph(t *testing.T) *taskgraph.TaskGraph {
	t.Helper()
	p := pipeline.NewPipelineGraph()
	require.NoError(t, p.AddStream(pipeline.StreamModel{
		Name: "trade",
		Columns: []pipeline.ColumnDefinition{
			{Name: "ts", Type: pipeline.SQLTypeTimestamp},
			{Name: "ticker", Type: pipeline.SQLTypeText},
			{Name: "amount", Type: pipeline.SQLTypeInteger},
		},
		RowtimeColumn: "ts",
	}))
	require.NoError(t, p.AddStream(pipeline.StreamModel{
		Name: "total",
		Columns: []pipeline.ColumnDefinition{
			{Name: "ticker", Type: pipeline.SQLTypeText},
			{Name: "total", Type: pipeline.SQLTypeInteger},
		},
	}))
	require.NoError(t, p.AddSourceReader(pipeline.SourceReaderModel{
		Name: "src", Type: pipeline.SourceReaderInMemoryQueue, DestStream: "trade",
	}))
	require.NoError(t, p.AddPump(pipeline.PumpModel{
		Name: "pu_sum",
		Plan: pipeline.QueryPlan{
			Upstreams: []string{"trade"},
			Window: &pipeline.WindowOp{
				Param: pipeline.NewFixedWindow(10*time.Second, 0),
				GroupAggregation: pipeline.GroupAggregateParameter{
					Function: aggregator.Sum, Aggregated: "amount", AggrLabel: "total",
					GroupBy: "ticker", GroupByLabel: "ticker",
				},
			},
			Projection: []pipeline.ProjectionItem{
				{Alias: "ticker", Expression: "ticker"},
				{Alias: "total", Expression: "total"},
			},
		},
		Insert: pipeline.InsertPlan{Stream: "total"},
	}))
	require.NoError(t, p.AddSinkWriter(pipeline.SinkWriterModel{
		Name: "sink", Type: pipeline.SinkWriterInMemoryQueue, FromStream: "total",
	}))
	g, err := taskgraph.New(p)
	require.NoError(t, err)
	return g
}

func TestPerformanceMetricsApply(t *testing.T) {
	g := windowGraph(t)
	m := NewPerformanceMetrics(g)

	windowQ, err := g.InputQueue(taskgraph.PumpTaskID("pu_sum"), "trade")
	require.NoError(t, err)
	require.Equal(t, taskgraph.WindowQueue, windowQ.Kind)
	rowQ, err := g.InputQueue(taskgraph.SinkTaskID("sink"), "total")
	require.NoError(t, err)
	require.Equal(t, taskgraph.RowQueue, rowQ.Kind)

	m.Apply(TaskExecutionUpdate{
		Task:           taskgraph.SourceTaskID("src"),
		ExecutionTime:  2 * time.Millisecond,
		OutQueues:      []OutQueueUpdate{{Queue: windowQ, RowsPut: 3, BytesPut: 300}},
		RowsFromSource: 3,
	})
	m.Apply(TaskExecutionUpdate{
		Task:          taskgraph.PumpTaskID("pu_sum"),
		ExecutionTime: 4 * time.Millisecond,
		InQueues: []InQueueUpdate{{
			Queue: windowQ, RowsUsed: 1, BytesUsed: 100, WindowGainBytesStates: 250,
		}},
		OutQueues: []OutQueueUpdate{{Queue: rowQ, RowsPut: 1, BytesPut: 80}},
	})

	s := m.Summary()
	assert.Equal(t, uint64(450), s.WindowQueueBytes)
	assert.Equal(t, uint64(80), s.RowQueueBytes)
	assert.Equal(t, uint64(530), s.QueueTotalBytes)
	assert.Equal(t, uint64(3), s.QueueRows)

	stats := m.BasicStats()
	assert.Equal(t, int64(3), stats[InputCount])
	assert.Equal(t, int64(530), stats[QueueBytes])

	tasks := m.Tasks()
	require.Len(t, tasks, 3)
	for _, ts := range tasks {
		if ts.Task == taskgraph.PumpTaskID("pu_sum") {
			assert.Equal(t, uint64(1), ts.Executions)
			assert.Equal(t, 4*time.Millisecond, ts.AvgExecution)
		}
	}
}

func TestPerformanceMetricsAverageExecution(t *testing.T) {
	g := windowGraph(t)
	m := NewPerformanceMetrics(g)
	id := taskgraph.SinkTaskID("sink")
	for _, d := range []time.Duration{2, 4, 6} {
		m.Apply(TaskExecutionUpdate{Task: id, ExecutionTime: d * time.Millisecond})
	}
	m.Apply(TaskExecutionUpdate{Task: id, Failed: true})

	for _, ts := range m.Tasks() {
		if ts.Task == id {
			assert.Equal(t, uint64(4), ts.Executions)
			assert.Equal(t, uint64(1), ts.Errors)
			assert.Equal(t, 3*time.Millisecond, ts.AvgExecution)
		}
	}
}

func TestPerformanceMetricsPurgeAndClamp(t *testing.T) {
	g := windowGraph(t)
	m := NewPerformanceMetrics(g)
	windowQ, err := g.InputQueue(taskgraph.PumpTaskID("pu_sum"), "trade")
	require.NoError(t, err)
	rowQ, err := g.InputQueue(taskgraph.SinkTaskID("sink"), "total")
	require.NoError(t, err)

	m.Apply(TaskExecutionUpdate{
		Task:      taskgraph.PumpTaskID("pu_sum"),
		InQueues:  []InQueueUpdate{{Queue: windowQ, WindowGainBytesStates: 1000}},
		OutQueues: []OutQueueUpdate{{Queue: rowQ, RowsPut: 2, BytesPut: 200, RowsDropped: 1}},
	})
	// Using more than was put never yields negative figures
	m.Apply(TaskExecutionUpdate{
		Task:     taskgraph.SinkTaskID("sink"),
		InQueues: []InQueueUpdate{{Queue: rowQ, RowsUsed: 5, BytesUsed: 500}},
	})
	s := m.Summary()
	assert.Equal(t, uint64(0), s.RowQueueBytes)
	assert.Equal(t, uint64(1000), s.WindowQueueBytes)
	assert.Equal(t, uint64(1), s.DroppedRows)

	m.Apply(PurgeUpdate{})
	assert.Equal(t, uint64(0), m.Summary().WindowQueueBytes)
}

func TestPerformanceMetricsIgnoresUnknownIDs(t *testing.T) {
	m := NewPerformanceMetrics(nil)
	m.Apply(TaskExecutionUpdate{
		Task:      taskgraph.PumpTaskID("gone"),
		OutQueues: []OutQueueUpdate{{Queue: taskgraph.QueueID{Kind: taskgraph.RowQueue, ID: "x"}, RowsPut: 1}},
		TooLate:   2,
	})
	assert.Empty(t, m.Tasks())
	assert.Empty(t, m.Queues())
	assert.Equal(t, uint64(2), m.Summary().TooLateRows)
}

func TestHasActivity(t *testing.T) {
	assert.False(t, TaskExecutionUpdate{}.HasActivity())
	assert.True(t, TaskExecutionUpdate{InQueues: []InQueueUpdate{{RowsUsed: 1}}}.HasActivity())
	assert.True(t, TaskExecutionUpdate{OutQueues: []OutQueueUpdate{{RowsDropped: 1}}}.HasActivity())
	assert.True(t, TaskExecutionUpdate{FormatRejected: 1}.HasActivity())
}

func TestExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg)

	g := windowGraph(t)
	m := NewPerformanceMetrics(g)
	rowQ, err := g.InputQueue(taskgraph.SinkTaskID("sink"), "total")
	require.NoError(t, err)
	u := TaskExecutionUpdate{
		Task:          taskgraph.PumpTaskID("pu_sum"),
		ExecutionTime: time.Millisecond,
		OutQueues:     []OutQueueUpdate{{Queue: rowQ, RowsPut: 2, BytesPut: 64}},
		TooLate:       1,
	}
	m.Apply(u)
	e.ObserveExecution(u)
	e.Observe(m)

	assert.Equal(t, float64(64), testutil.ToFloat64(e.TotalBytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.TooLateRows))
	assert.Equal(t, float64(2), testutil.ToFloat64(e.QueueRows.WithLabelValues(rowQ.ID, "row")))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.TaskExecutions.WithLabelValues("pump:pu_sum")))
	assert.Equal(t, 1, testutil.CollectAndCount(e.TaskDuration))

	e.ObserveTransition("moderate", "severe", 1)
	e.ObserveTransition("severe", "critical", 2)
	e.IncPurge()
	assert.Equal(t, float64(2), testutil.ToFloat64(e.MemoryState))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.MemoryTransitions.WithLabelValues("severe", "critical")))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.Purges))

	e.Reset()
	assert.Equal(t, 0, testutil.CollectAndCount(e.QueueRows))
}

func TestExporterWithoutRegistry(t *testing.T) {
	e := NewExporter(nil)
	e.IncPurge()
	assert.Equal(t, float64(1), testutil.ToFloat64(e.Purges))
}
