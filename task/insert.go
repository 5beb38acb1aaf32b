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
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/taskgraph"
	"github.com/rulego/pumpsql/types"
)

// insert puts row into every output queue of task. Rows are immutable so
// all queues share the same pointer. A full queue drops the row for that
// queue only.
func insert(ctx *TaskContext, task taskgraph.TaskID, row *types.Row) ([]metrics.OutQueueUpdate, error) {
	outs := ctx.Graph.OutputQueues(task)
	updates := make([]metrics.OutQueueUpdate, 0, len(outs))
	size := int64(row.MemSize())
	for _, id := range outs {
		q, err := ctx.Repos.Queues.Get(id)
		if err != nil {
			return updates, err
		}
		if q.Put(row) {
			updates = append(updates, metrics.OutQueueUpdate{Queue: id, RowsPut: 1, BytesPut: size})
			continue
		}
		logger.Warn("queue %s is full, dropping row from %s", id, task)
		updates = append(updates, metrics.OutQueueUpdate{Queue: id, RowsDropped: 1})
	}
	return updates, nil
}

// mergeOut folds per-row updates into one entry per queue
func mergeOut(dst, src []metrics.OutQueueUpdate) []metrics.OutQueueUpdate {
	for _, s := range src {
		merged := false
		for i := range dst {
			if dst[i].Queue == s.Queue {
				dst[i].RowsPut += s.RowsPut
				dst[i].BytesPut += s.BytesPut
				dst[i].RowsDropped += s.RowsDropped
				merged = true
				break
			}
		}
		if !merged {
			dst = append(dst, s)
		}
	}
	return dst
}
