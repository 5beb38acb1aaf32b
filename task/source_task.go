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
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/foreign"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/taskgraph"
)

// SourceTask reads rows of one source reader into its destination stream
type SourceTask struct {
	id     taskgraph.TaskID
	reader string
	stream *pipeline.StreamModel
}

func newSourceTask(model *pipeline.SourceReaderModel, stream *pipeline.StreamModel) *SourceTask {
	return &SourceTask{id: taskgraph.SourceTaskID(model.Name), reader: model.Name, stream: stream}
}

// run reads at most one row. A read timeout means no data and is not an
// error. Malformed input is counted and skipped.
func (s *SourceTask) run(ctx *TaskContext) (metrics.TaskExecutionUpdate, error) {
	var u metrics.TaskExecutionUpdate
	raw, err := ctx.Repos.SourceReaders.NextRow(s.reader)
	if err != nil {
		if t, ok := errs.TypeOf(err); ok && t == errs.ErrorTypeForeignTimeout {
			return u, nil
		}
		return u, err
	}

	cols, err := foreign.ParseJSONObject(raw)
	if err == nil {
		row, rowErr := foreign.IntoRow(cols, s.stream)
		if rowErr == nil {
			u.RowsFromSource = 1
			u.OutQueues, err = insert(ctx, s.id, row)
			return u, err
		}
		err = rowErr
	}
	logger.Warn("source reader %s: %v", s.reader, err)
	u.FormatRejected = 1
	return u, nil
}
