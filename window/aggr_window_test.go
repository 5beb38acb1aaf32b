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

package window

import (
	"testing"
	"time"

	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int, nsec int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, sec, nsec, time.UTC)
}

func trade(t *testing.T, rowtime time.Time, ticker string, amount int64) *types.Tuple {
	t.Helper()
	row, err := types.NewRow(types.ColumnValues{
		"ts":     types.Timestamp(rowtime),
		"ticker": types.Text(ticker),
		"amount": types.Int(amount),
	}, "ts")
	require.NoError(t, err)
	return types.NewTuple("trade", row)
}

func avgByTicker() pipeline.GroupAggregateParameter {
	return pipeline.GroupAggregateParameter{
		Function:     aggregator.Avg,
		Aggregated:   "amount",
		AggrLabel:    "avg_amount",
		GroupBy:      "ticker",
		GroupByLabel: "ticker",
	}
}

type expected struct {
	ticker string
	avg    float64
}

func assertOut(t *testing.T, want []expected, got []GroupAggrOut) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		aggr, group, err := got[i].IntoResults("avg_amount", "ticker")
		require.NoError(t, err)
		assert.Equal(t, types.Text(w.ticker), group, "output %d", i)
		avg, err := aggr.AsFloat64()
		require.NoError(t, err)
		assert.InDelta(t, w.avg, avg, 1e-9, "output %d", i)
	}
}

func TestSlidingWindowAggregation(t *testing.T) {
	w, err := NewAggrWindow(pipeline.NewSlidingWindow(10*time.Second, 5*time.Second, time.Second), avgByTicker())
	require.NoError(t, err)

	steps := []struct {
		rowtime time.Time
		ticker  string
		amount  int64
		late    bool
		want    []expected
	}{
		// [:55, :05) and [:00, :10)
		{rowtime: at(0, 0), ticker: "GOOGL", amount: 100},
		{rowtime: at(4, 999999999), ticker: "ORCL", amount: 100},
		// closes [:55, :05)
		{rowtime: at(6, 0), ticker: "ORCL", amount: 400, want: []expected{{"GOOGL", 100}, {"ORCL", 100}}},
		{rowtime: at(10, 999999999), ticker: "ORCL", amount: 100},
		// threshold is :09.999999999
		{rowtime: at(9, 999999998), ticker: "ORCL", amount: 100, late: true},
		{rowtime: at(9, 999999999), ticker: "ORCL", amount: 100},
		// closes [:00, :10)
		{rowtime: at(11, 0), ticker: "ORCL", amount: 100, want: []expected{{"GOOGL", 100}, {"ORCL", 200}}},
		// closes [:05, :15) then [:10, :20)
		{rowtime: at(21, 0), ticker: "ORCL", amount: 100, want: []expected{{"ORCL", 175}, {"ORCL", 100}}},
	}
	for i, s := range steps {
		out, flow, err := w.Dispatch(trade(t, s.rowtime, s.ticker, s.amount))
		require.NoError(t, err, "step %d", i)
		if s.late {
			assert.Equal(t, int64(1), flow.DroppedTooLate, "step %d", i)
		} else {
			assert.Equal(t, int64(0), flow.DroppedTooLate, "step %d", i)
		}
		assertOut(t, s.want, out)
		assert.Equal(t, int64(0), flow.GainBytesRows)
	}
}

func TestFixedWindowAggregation(t *testing.T) {
	w, err := NewAggrWindow(pipeline.NewFixedWindow(10*time.Second, time.Second), avgByTicker())
	require.NoError(t, err)

	steps := []struct {
		rowtime time.Time
		ticker  string
		amount  int64
		late    bool
		want    []expected
	}{
		{rowtime: at(0, 0), ticker: "GOOGL", amount: 100},
		{rowtime: at(9, 0), ticker: "ORCL", amount: 100},
		{rowtime: at(9, 999999999), ticker: "ORCL", amount: 400},
		{rowtime: at(10, 999999999), ticker: "ORCL", amount: 100},
		{rowtime: at(9, 999999998), ticker: "ORCL", amount: 100, late: true},
		{rowtime: at(9, 999999999), ticker: "ORCL", amount: 100},
		{rowtime: at(11, 0), ticker: "ORCL", amount: 100, want: []expected{{"GOOGL", 100}, {"ORCL", 200}}},
		{rowtime: at(21, 0), ticker: "ORCL", amount: 100, want: []expected{{"ORCL", 100}}},
	}
	for i, s := range steps {
		out, flow, err := w.Dispatch(trade(t, s.rowtime, s.ticker, s.amount))
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.late, flow.DroppedTooLate == 1, "step %d", i)
		assertOut(t, s.want, out)
	}
	assert.Equal(t, 1, w.PaneCount())
}

func TestFixedWindowEmitsAtThreshold(t *testing.T) {
	w, err := NewAggrWindow(pipeline.NewFixedWindow(10*time.Second, time.Second), avgByTicker())
	require.NoError(t, err)

	for _, s := range []struct {
		sec    int
		ticker string
		amount int64
	}{{0, "GOOGL", 100}, {5, "ORCL", 100}, {9, "ORCL", 400}} {
		out, _, err := w.Dispatch(trade(t, at(s.sec, 0), s.ticker, s.amount))
		require.NoError(t, err)
		assert.Empty(t, out)
	}

	// threshold :10 reaches close_at of [:00, :10)
	out, _, err := w.Dispatch(trade(t, at(11, 0), "ORCL", 100))
	require.NoError(t, err)
	assertOut(t, []expected{{"GOOGL", 100}, {"ORCL", 250}}, out)
	assert.Equal(t, at(0, 0), out[0].Slot.Start)
	assert.Equal(t, at(10, 0), out[0].Slot.End)

	env := out[1].Env()
	assert.Equal(t, "ORCL", env["ticker"])
	assert.Equal(t, 250.0, env["avg_amount"])
	assert.Equal(t, at(0, 0), env[pipeline.WindowStartLabel])
}

func TestValidOpenAts(t *testing.T) {
	sliding := newPanes(pipeline.NewSlidingWindow(10*time.Second, 5*time.Second, 0), aggregator.Avg)
	assert.Equal(t, []time.Time{at(0, 0).Add(-5 * time.Second), at(0, 0)}, sliding.ValidOpenAts(at(0, 0)))
	assert.Equal(t, []time.Time{at(0, 0), at(5, 0)}, sliding.ValidOpenAts(at(6, 0)))
	assert.Equal(t, []time.Time{at(0, 0), at(5, 0)}, sliding.ValidOpenAts(at(9, 999999999)))

	fixed := newPanes(pipeline.NewFixedWindow(10*time.Second, 0), aggregator.Avg)
	assert.Equal(t, []time.Time{at(0, 0)}, fixed.ValidOpenAts(at(9, 999999999)))
	assert.Equal(t, []time.Time{at(10, 0)}, fixed.ValidOpenAts(at(10, 0)))

	// every candidate pane contains the rowtime
	for _, ns := range []int{0, 1, 499999999, 999999999} {
		rowtime := at(7, ns)
		for _, openAt := range sliding.ValidOpenAts(rowtime) {
			slot := types.NewTimeSlot(openAt, 10*time.Second)
			assert.True(t, slot.Contains(rowtime), "%s in %s", rowtime, slot)
		}
	}
}

func TestPanesStayOrdered(t *testing.T) {
	ps := newPanes(pipeline.NewFixedWindow(10*time.Second, 0), aggregator.Count)
	for _, sec := range []int{30, 10, 20, 0, 20} {
		_, err := ps.PanesToDispatch(at(sec, 0))
		require.NoError(t, err)
	}
	require.Equal(t, 4, ps.Len())
	for i := 1; i < len(ps.panes); i++ {
		assert.True(t, ps.panes[i-1].OpenAt().Before(ps.panes[i].OpenAt()))
	}

	closed := ps.RemovePanesToClose(at(20, 0))
	require.Len(t, closed, 2)
	assert.Equal(t, at(0, 0), closed[0].OpenAt())
	assert.Equal(t, at(10, 0), closed[1].OpenAt())
	assert.Equal(t, 2, ps.Len())
	assert.Empty(t, ps.RemovePanesToClose(at(20, 0)))
}

func TestLateRowIsDroppedWithoutEffect(t *testing.T) {
	w, err := NewAggrWindow(pipeline.NewFixedWindow(10*time.Second, 0), avgByTicker())
	require.NoError(t, err)

	_, _, err = w.Dispatch(trade(t, at(15, 0), "ORCL", 100))
	require.NoError(t, err)
	panes := w.PaneCount()

	out, flow, err := w.Dispatch(trade(t, at(14, 0), "ORCL", 100))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int64(1), flow.DroppedTooLate)
	assert.Equal(t, int64(0), flow.GainBytesStates)
	assert.Equal(t, panes, w.PaneCount())
}

func TestWatermark(t *testing.T) {
	wm := NewWatermark(time.Second)
	_, ok := wm.Threshold()
	assert.False(t, ok)
	assert.False(t, wm.IsTooLate(at(0, 0)))

	wm.Update(at(10, 0))
	wm.Update(at(5, 0))
	maxRowtime, ok := wm.MaxRowtime()
	require.True(t, ok)
	assert.Equal(t, at(10, 0), maxRowtime)

	threshold, ok := wm.Threshold()
	require.True(t, ok)
	assert.Equal(t, at(9, 0), threshold)
	assert.False(t, wm.IsTooLate(at(9, 0)))
	assert.True(t, wm.IsTooLate(at(8, 999999999)))
	assert.Equal(t, time.Second, wm.AllowedDelay())
}

func TestStateBytesAndPurge(t *testing.T) {
	w, err := NewAggrWindow(pipeline.NewSlidingWindow(10*time.Second, 5*time.Second, time.Second), avgByTicker())
	require.NoError(t, err)

	_, flow, err := w.Dispatch(trade(t, at(0, 0), "GOOGL", 100))
	require.NoError(t, err)
	assert.Greater(t, flow.GainBytesStates, int64(0))
	first := flow.GainBytesStates

	_, flow, err = w.Dispatch(trade(t, at(1, 0), "GOOGL", 100))
	require.NoError(t, err)
	assert.Equal(t, int64(0), flow.GainBytesStates)

	released := w.Purge()
	assert.Equal(t, first, released)
	assert.Equal(t, 0, w.PaneCount())

	// the watermark survives a purge
	assert.True(t, w.Watermark().IsTooLate(at(-1, 0)))
}

func TestDispatchExpressionError(t *testing.T) {
	op := avgByTicker()
	op.Aggregated = "ticker"
	w, err := NewAggrWindow(pipeline.NewFixedWindow(10*time.Second, 0), op)
	require.NoError(t, err)
	_, _, err = w.Dispatch(trade(t, at(0, 0), "ORCL", 1))
	assert.Error(t, err)

	_, err = NewAggrWindow(pipeline.NewFixedWindow(10*time.Second, 0), pipeline.GroupAggregateParameter{
		Function: aggregator.Avg, Aggregated: "amount >", GroupBy: "ticker",
	})
	assert.Error(t, err)
}

func TestRejectedRowLeavesWindowUnchanged(t *testing.T) {
	w, err := NewAggrWindow(pipeline.NewFixedWindow(10*time.Second, 0), avgByTicker())
	require.NoError(t, err)

	_, _, err = w.Dispatch(trade(t, at(0, 0), "GOOGL", 100))
	require.NoError(t, err)
	maxBefore, _ := w.Watermark().MaxRowtime()
	panes := w.PaneCount()

	row, err := types.NewRow(types.ColumnValues{
		"ts":     types.Timestamp(at(30, 0)),
		"ticker": types.Text("BAD"),
		"amount": types.Text("abc"),
	}, "ts")
	require.NoError(t, err)
	out, flow, err := w.Dispatch(types.NewTuple("trade", row))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSQLSemantic)
	assert.Empty(t, out)
	assert.Equal(t, InFlow{}, flow)

	maxAfter, _ := w.Watermark().MaxRowtime()
	assert.Equal(t, maxBefore, maxAfter)
	assert.Equal(t, panes, w.PaneCount())

	// rows of the first pane are still on time
	out, flow, err = w.Dispatch(trade(t, at(5, 0), "GOOGL", 200))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int64(0), flow.DroppedTooLate)

	// the rejected group never shows up
	out, _, err = w.Dispatch(trade(t, at(45, 0), "ORCL", 1))
	require.NoError(t, err)
	assertOut(t, []expected{{"GOOGL", 150}}, out)
}

func TestIntoResultsLabelMismatch(t *testing.T) {
	out := GroupAggrOut{AggrLabel: "a", GroupByLabel: "g"}
	_, _, err := out.IntoResults("a", "x")
	assert.Error(t, err)
}
