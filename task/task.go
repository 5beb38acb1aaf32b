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

// Package task implements the three task kinds of a pipeline.
//
// A source task moves one row from a source reader into its stream's
// queues. A pump task consumes one row from an upstream queue, runs its
// query (selection, window aggregation, projection) and inserts the
// results into the destination stream's queues. A sink task hands one row
// to its sink writer.
//
// Every execution returns a metrics.TaskExecutionUpdate describing the rows
// and bytes it moved, so the caller can publish it without inspecting the
// queues again.
package task

import (
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/foreign"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/queue"
	"github.com/rulego/pumpsql/taskgraph"
)

// Repositories bundles the runtime state tasks read and write. It outlives
// pipeline updates.
type Repositories struct {
	Queues        *queue.Repositories
	SourceReaders *foreign.SourceReaderRepository
	SinkWriters   *foreign.SinkWriterRepository
}

// TaskContext is what one execution needs besides the task itself
type TaskContext struct {
	Graph *taskgraph.TaskGraph
	Repos *Repositories
}

// Task is a source, pump or sink task. Exactly one of the kind fields is
// set.
type Task struct {
	id     taskgraph.TaskID
	source *SourceTask
	pump   *PumpTask
	sink   *SinkTask
}

// ID returns the task id
func (t *Task) ID() taskgraph.TaskID {
	return t.id
}

// Pump returns the pump task, or nil
func (t *Task) Pump() *PumpTask {
	return t.pump
}

// Run executes the task once. A run that finds nothing to do returns an
// update without activity and a nil error.
func (t *Task) Run(ctx *TaskContext) (metrics.TaskExecutionUpdate, error) {
	start := time.Now()
	var (
		u   metrics.TaskExecutionUpdate
		err error
	)
	switch {
	case t.source != nil:
		u, err = t.source.run(ctx)
	case t.pump != nil:
		u, err = t.pump.run(ctx)
	case t.sink != nil:
		u, err = t.sink.run(ctx)
	default:
		err = errs.Newf(errs.ErrorTypeSQLSemantic, "task %s has no body", t.id)
	}
	u.Task = t.id
	u.ExecutionTime = time.Since(start)
	u.Failed = err != nil
	return u, err
}
