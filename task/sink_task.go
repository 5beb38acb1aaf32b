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
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/taskgraph"
)

// SinkTask hands rows of one stream to a sink writer
type SinkTask struct {
	id     taskgraph.TaskID
	writer string
	stream string
}

func newSinkTask(model *pipeline.SinkWriterModel) *SinkTask {
	return &SinkTask{id: taskgraph.SinkTaskID(model.Name), writer: model.Name, stream: model.FromStream}
}

// run pops one row and writes it. The row has left the queue before the
// write, so a failed write loses it.
func (s *SinkTask) run(ctx *TaskContext) (metrics.TaskExecutionUpdate, error) {
	var u metrics.TaskExecutionUpdate
	qid, err := ctx.Graph.InputQueue(s.id, s.stream)
	if err != nil {
		return u, err
	}
	q, err := ctx.Repos.Queues.Get(qid)
	if err != nil {
		return u, err
	}
	row, ok := q.Use()
	if !ok {
		return u, nil
	}
	u.InQueues = []metrics.InQueueUpdate{{Queue: qid, RowsUsed: 1, BytesUsed: int64(row.MemSize())}}
	if err := ctx.Repos.SinkWriters.SendRow(s.writer, row); err != nil {
		return u, err
	}
	u.RowsToSink = 1
	return u, nil
}
