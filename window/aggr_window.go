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
	"sync"
	"time"

	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/condition"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
)

// GroupAggrOut is one (group, aggregate) result of a closed pane
type GroupAggrOut struct {
	AggrLabel     string
	AggrResult    types.Value
	GroupByLabel  string
	GroupByResult types.Value
	Slot          types.TimeSlot
}

// IntoResults returns the aggregate and group values after checking the
// labels a projection expects
func (o GroupAggrOut) IntoResults(aggrLabel, groupByLabel string) (aggr, group types.Value, err error) {
	if o.AggrLabel != aggrLabel || o.GroupByLabel != groupByLabel {
		return types.Null(), types.Null(), errs.Newf(errs.ErrorTypeSQLSemantic,
			"labels (%s, %s) do not match window output (%s, %s)", aggrLabel, groupByLabel, o.AggrLabel, o.GroupByLabel)
	}
	return o.AggrResult, o.GroupByResult, nil
}

// Env returns the projection environment of the output
func (o GroupAggrOut) Env() map[string]interface{} {
	return map[string]interface{}{
		o.GroupByLabel:            o.GroupByResult.Interface(),
		o.AggrLabel:               o.AggrResult.Interface(),
		pipeline.WindowStartLabel: o.Slot.Start,
		pipeline.WindowEndLabel:   o.Slot.End,
	}
}

// InFlow is the byte and row accounting of one dispatch
type InFlow struct {
	// GainBytesStates is the change of bytes held by pane states. It is
	// negative when panes close.
	GainBytesStates int64
	// GainBytesRows is the change of bytes held by buffered rows. Rows are
	// folded into pane states on arrival, so this stays zero for
	// aggregation windows.
	GainBytesRows int64
	// DroppedTooLate is 1 when the row arrived behind the watermark
	DroppedTooLate int64
}

// AggrWindow is the group aggregation window of one pump
type AggrWindow struct {
	mu         sync.Mutex
	param      pipeline.WindowParameter
	op         pipeline.GroupAggregateParameter
	aggregated *condition.Expression
	groupBy    *condition.Expression
	watermark  *Watermark
	panes      *Panes
	empty      *aggregator.GroupAggregator
	stateBytes int64
}

// NewAggrWindow compiles the group-by and aggregated expressions of op
func NewAggrWindow(param pipeline.WindowParameter, op pipeline.GroupAggregateParameter) (*AggrWindow, error) {
	if err := param.Validate(); err != nil {
		return nil, err
	}
	aggregated, err := condition.NewExpression(op.Aggregated)
	if err != nil {
		return nil, err
	}
	groupBy, err := condition.NewExpression(op.GroupBy)
	if err != nil {
		return nil, err
	}
	empty, err := aggregator.NewGroupAggregator(op.Function)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "window aggregation")
	}
	return &AggrWindow{
		param:      param,
		op:         op,
		aggregated: aggregated,
		groupBy:    groupBy,
		watermark:  NewWatermark(param.AllowedDelay),
		panes:      newPanes(param, op.Function),
		empty:      empty,
	}, nil
}

// Dispatch feeds tuple into the window and returns the outputs of every
// pane the tuple's rowtime completes. Outputs are ordered by pane open
// time, then by first appearance of the group in the pane.
func (w *AggrWindow) Dispatch(tuple *types.Tuple) ([]GroupAggrOut, InFlow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rowtime := tuple.Rowtime()
	if w.watermark.IsTooLate(rowtime) {
		return nil, InFlow{DroppedTooLate: 1}, nil
	}

	env := tuple.Env()
	group, err := w.groupBy.Eval(env)
	if err != nil {
		return nil, InFlow{}, err
	}
	value, err := w.aggregated.Eval(env)
	if err != nil {
		return nil, InFlow{}, err
	}

	// a rejected row must leave the watermark and panes untouched
	if err := w.check(rowtime, group, value); err != nil {
		return nil, InFlow{}, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "aggregate %s", w.op.Aggregated)
	}
	w.watermark.Update(rowtime)

	panes, err := w.panes.PanesToDispatch(rowtime)
	if err != nil {
		return nil, InFlow{}, err
	}
	for _, pane := range panes {
		if err := pane.groups.Add(group, value); err != nil {
			return nil, InFlow{}, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "aggregate %s", w.op.Aggregated)
		}
	}

	var out []GroupAggrOut
	threshold, _ := w.watermark.Threshold()
	for _, pane := range w.panes.RemovePanesToClose(threshold) {
		for _, r := range pane.groups.Results() {
			out = append(out, GroupAggrOut{
				AggrLabel:     w.op.AggrLabel,
				AggrResult:    r.Result,
				GroupByLabel:  w.op.GroupByLabel,
				GroupByResult: r.Group,
				Slot:          pane.Slot(),
			})
		}
	}

	size := int64(w.panes.MemSize())
	flow := InFlow{GainBytesStates: size - w.stateBytes}
	w.stateBytes = size
	return out, flow, nil
}

// check reports whether every pane rowtime belongs to would accept value
func (w *AggrWindow) check(rowtime time.Time, group, value types.Value) error {
	for _, openAt := range w.panes.ValidOpenAts(rowtime) {
		groups := w.empty
		if pane := w.panes.Lookup(openAt); pane != nil {
			groups = pane.groups
		}
		if err := groups.Check(group, value); err != nil {
			return err
		}
	}
	return nil
}

// Purge drops every pane without emitting and returns the released bytes.
// The watermark is kept so rows already judged late stay late.
func (w *AggrWindow) Purge() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	released := w.stateBytes
	w.panes.Purge()
	w.stateBytes = 0
	return released
}

// PaneCount returns the number of open panes
func (w *AggrWindow) PaneCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.panes.Len()
}

// Watermark returns the window's watermark
func (w *AggrWindow) Watermark() *Watermark {
	return w.watermark
}

// Param returns the window shape
func (w *AggrWindow) Param() pipeline.WindowParameter {
	return w.param
}
