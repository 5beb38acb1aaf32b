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

package task

import (
	"sync"

	"github.com/rulego/pumpsql/condition"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/queue"
	"github.com/rulego/pumpsql/taskgraph"
	"github.com/rulego/pumpsql/types"
	"github.com/rulego/pumpsql/window"
)

type projection struct {
	alias string
	kind  types.ValueKind
	expr  *condition.Expression
}

// PumpTask runs one continuous query
type PumpTask struct {
	id          taskgraph.TaskID
	upstreams   []string
	selection   condition.Condition
	window      *window.AggrWindow
	op          pipeline.GroupAggregateParameter
	projections []projection
	dest        *pipeline.StreamModel

	mu     sync.Mutex
	cursor int
}

func newPumpTask(model *pipeline.PumpModel, dest *pipeline.StreamModel) (*PumpTask, error) {
	p := &PumpTask{
		id:        taskgraph.PumpTaskID(model.Name),
		upstreams: model.Plan.Upstreams,
		dest:      dest,
	}
	if model.Plan.Selection != "" {
		sel, err := condition.NewExprCondition(model.Plan.Selection)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "pump %s: selection", model.Name)
		}
		p.selection = sel
	}
	if w := model.Plan.Window; w != nil {
		aw, err := window.NewAggrWindow(w.Param, w.GroupAggregation)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "pump %s: window", model.Name)
		}
		p.window = aw
		p.op = w.GroupAggregation
	}
	for _, item := range model.Plan.Projection {
		col, ok := dest.Column(item.Alias)
		if !ok {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: column %s is not in stream %s", model.Name, item.Alias, dest.Name)
		}
		e, err := condition.NewExpression(item.Expression)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "pump %s: projection %s", model.Name, item.Alias)
		}
		p.projections = append(p.projections, projection{alias: item.Alias, kind: col.Type.ValueKind(), expr: e})
	}
	return p, nil
}

// Window returns the pump's aggregation window, or nil
func (p *PumpTask) Window() *window.AggrWindow {
	return p.window
}

// collect uses one row from the upstream queues, starting after the queue
// that produced the previous row
func (p *PumpTask) collect(ctx *TaskContext) (*types.Tuple, taskgraph.QueueID, queue.Queue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.upstreams)
	for i := 0; i < n; i++ {
		idx := (p.cursor + i) % n
		stream := p.upstreams[idx]
		qid, err := ctx.Graph.InputQueue(p.id, stream)
		if err != nil {
			return nil, qid, nil, err
		}
		q, err := ctx.Repos.Queues.Get(qid)
		if err != nil {
			return nil, qid, nil, err
		}
		if row, ok := q.Use(); ok {
			p.cursor = (idx + 1) % n
			return types.NewTuple(stream, row), qid, q, nil
		}
	}
	return nil, taskgraph.QueueID{}, nil, nil
}

func (p *PumpTask) run(ctx *TaskContext) (u metrics.TaskExecutionUpdate, err error) {
	tuple, qid, q, err := p.collect(ctx)
	if err != nil || tuple == nil {
		return u, err
	}
	in := metrics.InQueueUpdate{Queue: qid, RowsUsed: 1, BytesUsed: int64(tuple.Row().MemSize())}
	defer func() { u.InQueues = []metrics.InQueueUpdate{in} }()

	env := tuple.Env()
	if p.selection != nil {
		ok, err := p.selection.Evaluate(env)
		if err != nil {
			return u, err
		}
		if !ok {
			return u, nil
		}
	}

	if p.window == nil {
		row, err := p.project(env)
		if err != nil {
			return u, err
		}
		u.OutQueues, err = insert(ctx, p.id, row)
		return u, err
	}

	outs, flow, err := p.window.Dispatch(tuple)
	if wq, ok := q.(*queue.WindowQueue); ok {
		wq.AddStateBytes(flow.GainBytesStates)
	}
	in.WindowGainBytesStates = flow.GainBytesStates
	in.WindowGainBytesRows = flow.GainBytesRows
	u.TooLate = flow.DroppedTooLate
	if err != nil {
		return u, err
	}
	for _, out := range outs {
		if _, _, err := out.IntoResults(p.op.AggrLabel, p.op.GroupByLabel); err != nil {
			return u, err
		}
		row, err := p.project(out.Env())
		if err != nil {
			return u, err
		}
		updates, err := insert(ctx, p.id, row)
		u.OutQueues = mergeOut(u.OutQueues, updates)
		if err != nil {
			return u, err
		}
	}
	return u, nil
}

// project evaluates every projection into a row of the destination stream.
// Columns the projection does not produce are NULL.
func (p *PumpTask) project(env map[string]interface{}) (*types.Row, error) {
	values := make(types.ColumnValues, len(p.dest.Columns))
	for _, c := range p.dest.Columns {
		values[c.Name] = types.Null()
	}
	for _, pr := range p.projections {
		v, err := pr.expr.Eval(env)
		if err != nil {
			return nil, err
		}
		converted, err := v.Convert(pr.kind)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "column %s.%s", p.dest.Name, pr.alias)
		}
		values[pr.alias] = converted
	}
	return types.NewRow(values, p.dest.RowtimeColumn)
}
