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
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/event"
	"github.com/rulego/pumpsql/foreign"
	"github.com/rulego/pumpsql/memory"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/queue"
	"github.com/rulego/pumpsql/task"
	"github.com/rulego/pumpsql/taskgraph"
	"github.com/rulego/pumpsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	derivatives *task.PipelineDerivatives
	repos       *task.Repositories
	src         *foreign.InMemoryQueue
	sink        *foreign.InMemoryQueue
	rawSink     *foreign.InMemoryQueue
}

// newFixture builds src -> source_trade -> pu_avg -> sink_avg -> sink plus
// raw_sink reading source_trade directly
func newFixture(t *testing.T) *fixture {
	t.Helper()
	names := map[string]string{}
	for _, n := range []string{"src", "sink", "raw_sink"} {
		names[n] = t.Name() + "_" + n
	}
	t.Cleanup(func() {
		for _, n := range names {
			foreign.DropInMemoryQueue(n)
		}
	})

	p := pipeline.NewPipelineGraph()
	require.NoError(t, p.AddStream(pipeline.StreamModel{
		Name: "source_trade",
		Columns: []pipeline.ColumnDefinition{
			{Name: "ts", Type: pipeline.SQLTypeTimestamp},
			{Name: "ticker", Type: pipeline.SQLTypeText},
			{Name: "amount", Type: pipeline.SQLTypeInteger},
		},
		RowtimeColumn: "ts",
	}))
	require.NoError(t, p.AddStream(pipeline.StreamModel{
		Name: "sink_avg",
		Columns: []pipeline.ColumnDefinition{
			{Name: "ts", Type: pipeline.SQLTypeTimestamp},
			{Name: "ticker", Type: pipeline.SQLTypeText},
			{Name: "avg_amount", Type: pipeline.SQLTypeFloat},
		},
		RowtimeColumn: "ts",
	}))
	require.NoError(t, p.AddSourceReader(pipeline.SourceReaderModel{
		Name: "src", Type: pipeline.SourceReaderInMemoryQueue, DestStream: "source_trade",
		Options: pipeline.Options{foreign.OptionName: names["src"]},
	}))
	require.NoError(t, p.AddPump(pipeline.PumpModel{
		Name: "pu_avg",
		Plan: pipeline.QueryPlan{
			Upstreams: []string{"source_trade"},
			Window: &pipeline.WindowOp{
				Param: pipeline.NewFixedWindow(10*time.Second, 0),
				GroupAggregation: pipeline.GroupAggregateParameter{
					Function: aggregator.Avg, Aggregated: "amount", AggrLabel: "avg_amount",
					GroupBy: "ticker", GroupByLabel: "ticker",
				},
			},
			Projection: []pipeline.ProjectionItem{
				{Alias: "ts", Expression: "window_start"},
				{Alias: "ticker", Expression: "ticker"},
				{Alias: "avg_amount", Expression: "avg_amount"},
			},
		},
		Insert: pipeline.InsertPlan{Stream: "sink_avg"},
	}))
	require.NoError(t, p.AddSinkWriter(pipeline.SinkWriterModel{
		Name: "sink", Type: pipeline.SinkWriterInMemoryQueue, FromStream: "sink_avg",
		Options: pipeline.Options{foreign.OptionName: names["sink"]},
	}))
	require.NoError(t, p.AddSinkWriter(pipeline.SinkWriterModel{
		Name: "raw_sink", Type: pipeline.SinkWriterInMemoryQueue, FromStream: "source_trade",
		Options: pipeline.Options{foreign.OptionName: names["raw_sink"]},
	}))

	d, err := task.NewPipelineDerivatives(p)
	require.NoError(t, err)
	cfg := types.DefaultConfig()
	cfg.SourceReader.NetReadTimeoutMsec = 5
	repos := &task.Repositories{
		Queues:        queue.NewRepositories(queue.Bounds{}),
		SourceReaders: foreign.NewSourceReaderRepository(cfg.SourceReader),
		SinkWriters:   foreign.NewSinkWriterRepository(cfg.SinkWriter),
	}
	repos.Queues.Reset(d.TaskGraph)
	for _, m := range p.SourceReaders() {
		require.NoError(t, repos.SourceReaders.Register(m))
	}
	for _, m := range p.SinkWriters() {
		require.NoError(t, repos.SinkWriters.Register(m))
	}
	t.Cleanup(func() {
		_ = repos.SourceReaders.Close()
		_ = repos.SinkWriters.Close()
	})
	return &fixture{
		derivatives: d,
		repos:       repos,
		src:         foreign.GetInMemoryQueue(names["src"]),
		sink:        foreign.GetInMemoryQueue(names["sink"]),
		rawSink:     foreign.GetInMemoryQueue(names["raw_sink"]),
	}
}

func tradeRow(t *testing.T, sec int, amount int64) *types.Row {
	t.Helper()
	row, err := types.NewRow(types.ColumnValues{
		"ts":     types.Timestamp(time.Date(2020, 1, 1, 0, 0, sec, 0, time.UTC)),
		"ticker": types.Text("ORCL"),
		"amount": types.Int(amount),
	}, "ts")
	require.NoError(t, err)
	return row
}

func TestGenericSeries(t *testing.T) {
	f := newFixture(t)
	g := f.derivatives.TaskGraph
	all := g.GenericTasks()
	require.Equal(t, []taskgraph.TaskID{
		taskgraph.PumpTaskID("pu_avg"), taskgraph.SinkTaskID("raw_sink"), taskgraph.SinkTaskID("sink"),
	}, all)

	t.Run("flow efficient", func(t *testing.T) {
		assert.Equal(t, all, GenericSeries(g, f.repos.Queues, FlowEfficient, 0, 1, 7))
	})

	t.Run("round robin", func(t *testing.T) {
		assert.Equal(t, all, GenericSeries(g, f.repos.Queues, RoundRobin, 0, 1, 0))
		assert.Equal(t, []taskgraph.TaskID{all[1], all[2], all[0]}, GenericSeries(g, f.repos.Queues, RoundRobin, 0, 1, 1))
		assert.Equal(t, all, GenericSeries(g, f.repos.Queues, RoundRobin, 0, 1, 3))
	})

	t.Run("partitioned", func(t *testing.T) {
		a := GenericSeries(g, f.repos.Queues, FlowEfficient, 0, 2, 0)
		b := GenericSeries(g, f.repos.Queues, FlowEfficient, 1, 2, 0)
		assert.Equal(t, []taskgraph.TaskID{all[0], all[2]}, a)
		assert.Equal(t, []taskgraph.TaskID{all[1]}, b)
	})

	t.Run("memory reducing", func(t *testing.T) {
		// Empty queues: sinks first
		assert.Equal(t, []taskgraph.TaskID{all[1], all[2], all[0]}, GenericSeries(g, f.repos.Queues, MemoryReducing, 0, 1, 0))

		qid, err := g.InputQueue(taskgraph.PumpTaskID("pu_avg"), "source_trade")
		require.NoError(t, err)
		q, err := f.repos.Queues.Get(qid)
		require.NoError(t, err)
		require.True(t, q.Put(tradeRow(t, 0, 100)))
		assert.Equal(t, []taskgraph.TaskID{all[0], all[1], all[2]}, GenericSeries(g, f.repos.Queues, MemoryReducing, 0, 1, 0))
	})
}

func TestStrategy(t *testing.T) {
	s, err := ParseStrategy("round_robin")
	require.NoError(t, err)
	assert.Equal(t, RoundRobin, s)
	_, err = ParseStrategy("fastest")
	assert.Error(t, err)

	assert.Equal(t, FlowEfficient, StrategyFor(FlowEfficient, memory.Moderate))
	assert.Equal(t, MemoryReducing, StrategyFor(FlowEfficient, memory.Severe))
	assert.Equal(t, MemoryReducing, StrategyFor(RoundRobin, memory.Critical))
}

func TestGenericWorkerSwitchesStrategy(t *testing.T) {
	w := NewGenericWorker(0, 1, RoundRobin, NewScheduler(), nil, event.NewEventQueue())
	w.HandleEvent(event.TransitMemoryState{Transition: memory.Transition{From: memory.Moderate, To: memory.Severe}})
	assert.Equal(t, MemoryReducing, w.Strategy())
	w.HandleEvent(event.TransitMemoryState{Transition: memory.Transition{From: memory.Severe, To: memory.Moderate}})
	assert.Equal(t, RoundRobin, w.Strategy())
	w.HandleEvent(event.TransitMemoryState{Transition: memory.Transition{From: memory.Moderate, To: memory.Critical}})
	w.HandleEvent(event.UpdatePipeline{})
	assert.Equal(t, RoundRobin, w.Strategy())
	assert.False(t, w.MainLoopCycle())
}

func TestTaskWorkersMoveRows(t *testing.T) {
	f := newFixture(t)
	sched := NewScheduler()
	events := event.NewEventQueue()
	updates := events.Subscribe(event.IncrementalUpdateMetricsTag)
	sched.Update(f.derivatives, nil)

	f.src.Push([]byte(`{"ts":"2020-01-01 00:00:00","ticker":"ORCL","amount":100}`))
	f.src.Push([]byte(`{"ts":"2020-01-01 00:00:10","ticker":"ORCL","amount":300}`))

	source := NewSourceWorker(0, 1, sched, f.repos, events)
	generic := NewGenericWorker(0, 1, FlowEfficient, sched, f.repos, events)
	assert.True(t, source.MainLoopCycle())
	assert.True(t, source.MainLoopCycle())
	assert.False(t, source.MainLoopCycle())

	// Flow efficient: pump then sinks in one cycle
	assert.True(t, generic.MainLoopCycle())
	assert.True(t, generic.MainLoopCycle())
	assert.Equal(t, 2, f.rawSink.Len())
	assert.Equal(t, 1, f.sink.Len())
	assert.False(t, generic.MainLoopCycle())

	for _, ev := range updates.Drain() {
		u := ev.(event.IncrementalUpdateMetrics).Update.(metrics.TaskExecutionUpdate)
		assert.True(t, u.HasActivity())
		assert.False(t, u.Failed)
	}
}

func TestMemoryStateMachineWorker(t *testing.T) {
	events := event.NewEventQueue()
	transitions := events.Subscribe(event.TransitMemoryStateTag)
	exporter := metrics.NewExporter(nil)
	w := NewMemoryStateMachineWorker(events, exporter,
		memory.NewStateMachine(memory.NewThresholds(types.DefaultConfig().Memory)), 0)

	assert.False(t, w.MainLoopCycle())
	for _, b := range []uint64{7_000_000, 9_600_000, 3_000_000} {
		w.HandleEvent(event.ReportMetricsSummary{Summary: metrics.Summary{QueueTotalBytes: b}})
		w.MainLoopCycle()
	}

	var got []memory.Transition
	purges := 0
	for _, ev := range transitions.Drain() {
		tr := ev.(event.TransitMemoryState).Transition
		got = append(got, tr)
		if tr.EntersCritical() {
			purges++
		}
	}
	assert.Equal(t, []memory.Transition{
		{From: memory.Moderate, To: memory.Severe},
		{From: memory.Severe, To: memory.Critical},
		{From: memory.Critical, To: memory.Severe},
		{From: memory.Severe, To: memory.Moderate},
	}, got)
	assert.Equal(t, 1, purges)
	assert.Equal(t, float64(0), testutil.ToFloat64(exporter.MemoryState))

	w.HandleEvent(event.ReportMetricsSummary{Summary: metrics.Summary{QueueTotalBytes: 9_600_000}})
	w.HandleEvent(event.UpdatePipeline{})
	w.MainLoopCycle()
	assert.Zero(t, transitions.Len())
}

func TestPerformanceMonitorWorker(t *testing.T) {
	f := newFixture(t)
	events := event.NewEventQueue()
	summaries := events.Subscribe(event.ReportMetricsSummaryTag)
	w := NewPerformanceMonitorWorker(events, metrics.NewExporter(nil), 0)

	assert.False(t, w.MainLoopCycle())
	assert.Zero(t, summaries.Len())

	w.HandleEvent(event.UpdatePipeline{Derivatives: f.derivatives})
	qid, err := f.derivatives.TaskGraph.InputQueue(taskgraph.SinkTaskID("raw_sink"), "source_trade")
	require.NoError(t, err)
	w.HandleEvent(event.IncrementalUpdateMetrics{Update: metrics.TaskExecutionUpdate{
		Task:      taskgraph.SourceTaskID("src"),
		OutQueues: []metrics.OutQueueUpdate{{Queue: qid, RowsPut: 1, BytesPut: 120}},
	}})
	w.MainLoopCycle()

	ev, ok := summaries.Poll()
	require.True(t, ok)
	assert.Equal(t, uint64(120), ev.(event.ReportMetricsSummary).Summary.QueueTotalBytes)
}

func TestPurgerWorker(t *testing.T) {
	f := newFixture(t)
	sched := NewScheduler()
	sched.Update(f.derivatives, nil)
	events := event.NewEventQueue()
	updates := events.Subscribe(event.IncrementalUpdateMetricsTag)
	exporter := metrics.NewExporter(nil)
	w := NewPurgerWorker(events, exporter, sched, f.repos)

	f.src.Push([]byte(`{"ts":"2020-01-01 00:00:00","ticker":"ORCL","amount":100}`))
	f.src.Push([]byte(`{"ts":"2020-01-01 00:00:01","ticker":"ORCL","amount":100}`))
	source := NewSourceWorker(0, 1, sched, f.repos, events)
	source.MainLoopCycle()
	source.MainLoopCycle()
	generic := NewGenericWorker(0, 1, FlowEfficient, sched, f.repos, events)
	generic.MainLoopCycle()
	updates.Drain()

	pu, err := f.derivatives.Tasks.Get(taskgraph.PumpTaskID("pu_avg"))
	require.NoError(t, err)
	require.Equal(t, 1, pu.Pump().Window().PaneCount())
	qid, err := f.derivatives.TaskGraph.InputQueue(taskgraph.PumpTaskID("pu_avg"), "source_trade")
	require.NoError(t, err)
	wq, err := f.repos.Queues.Windows.Get(qid.WindowQueueID())
	require.NoError(t, err)
	require.Equal(t, 1, wq.Len())

	// Leaving Critical does not purge
	w.HandleEvent(event.TransitMemoryState{Transition: memory.Transition{From: memory.Critical, To: memory.Severe}})
	assert.Zero(t, updates.Len())

	w.HandleEvent(event.TransitMemoryState{Transition: memory.Transition{From: memory.Severe, To: memory.Critical}})
	assert.Zero(t, pu.Pump().Window().PaneCount())
	assert.Zero(t, wq.Len())
	assert.Zero(t, wq.Bytes())
	ev, ok := updates.Poll()
	require.True(t, ok)
	assert.Equal(t, metrics.PurgeUpdate{}, ev.(event.IncrementalUpdateMetrics).Update)
	assert.Equal(t, float64(1), testutil.ToFloat64(exporter.Purges))
}

type countingHandler struct {
	cycles atomic.Int64
	events atomic.Int64
	panics bool
}

func (h *countingHandler) Name() string { return "counting" }

func (h *countingHandler) Subscriptions() []event.Tag {
	return []event.Tag{event.ReportMetricsSummaryTag}
}

func (h *countingHandler) HandleEvent(event.Event) {
	h.events.Add(1)
	if h.panics {
		panic("boom")
	}
}

func (h *countingHandler) MainLoopCycle() bool {
	h.cycles.Add(1)
	if h.panics {
		panic("boom")
	}
	return false
}

func TestWorkerLoop(t *testing.T) {
	for _, panics := range []bool{false, true} {
		h := &countingHandler{panics: panics}
		events := event.NewEventQueue()
		coord := NewStopCoordinate()
		w := Start(h, events, time.Millisecond, coord)

		events.Publish(event.ReportMetricsSummary{})
		events.Publish(event.ReportMetricsSummary{})
		require.Eventually(t, func() bool {
			return h.events.Load() == 2 && h.cycles.Load() > 2
		}, time.Second, time.Millisecond)

		coord.Stop()
		select {
		case <-w.Done():
		case <-time.After(time.Second):
			t.Fatal("worker still running")
		}
	}
}

type blockingHandler struct {
	release chan struct{}
}

func (h *blockingHandler) Name() string               { return "blocking" }
func (h *blockingHandler) Subscriptions() []event.Tag { return nil }
func (h *blockingHandler) HandleEvent(event.Event)    {}

func (h *blockingHandler) MainLoopCycle() bool {
	<-h.release
	return false
}

func TestPoolStopTimeout(t *testing.T) {
	events := event.NewEventQueue()
	h := &blockingHandler{release: make(chan struct{})}
	pool := &Pool{coord: NewStopCoordinate()}
	pool.workers = append(pool.workers,
		Start(&countingHandler{}, events, time.Millisecond, pool.coord),
		Start(h, events, time.Millisecond, pool.coord),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.Eventually(t, func() bool {
		select {
		case <-pool.workers[0].Done():
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	close(h.release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	require.NoError(t, pool.Stop(ctx2))
}

func TestPoolStartStop(t *testing.T) {
	f := newFixture(t)
	cfg := types.DefaultConfig()
	sched := NewScheduler()
	events := event.NewEventQueue()
	pool, err := NewPool(cfg, sched, f.repos, events, metrics.NewExporter(nil))
	require.NoError(t, err)
	assert.Equal(t, 3+2+2, pool.Len())

	sched.Update(f.derivatives, func() {
		f.repos.Queues.Reset(f.derivatives.TaskGraph)
		events.Publish(event.UpdatePipeline{Derivatives: f.derivatives})
	})
	f.src.Push([]byte(`{"ts":"2020-01-01 00:00:00","ticker":"ORCL","amount":100}`))
	require.Eventually(t, func() bool { return f.rawSink.Len() == 1 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	cfg.Scheduler.Strategy = "unknown"
	_, err = NewPool(cfg, sched, f.repos, events, nil)
	assert.Error(t, err)
}
