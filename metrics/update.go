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
	"time"

	"github.com/rulego/pumpsql/taskgraph"
)

// Update is an incremental change to PerformanceMetrics. It is either a
// TaskExecutionUpdate or a PurgeUpdate.
type Update interface {
	isUpdate()
}

// InQueueUpdate describes what one task execution consumed from a queue
type InQueueUpdate struct {
	Queue     taskgraph.QueueID
	RowsUsed  int64
	BytesUsed int64
	// Window queues only: change of bytes retained by the window
	WindowGainBytesStates int64
	WindowGainBytesRows   int64
}

// OutQueueUpdate describes what one task execution put into a queue
type OutQueueUpdate struct {
	Queue       taskgraph.QueueID
	RowsPut     int64
	BytesPut    int64
	RowsDropped int64
}

// TaskExecutionUpdate is reported after every task execution
type TaskExecutionUpdate struct {
	Task           taskgraph.TaskID
	ExecutionTime  time.Duration
	InQueues       []InQueueUpdate
	OutQueues      []OutQueueUpdate
	RowsFromSource int64
	RowsToSink     int64
	TooLate        int64
	FormatRejected int64
	Failed         bool
}

func (TaskExecutionUpdate) isUpdate() {}

// HasActivity reports whether the execution moved any row
func (u TaskExecutionUpdate) HasActivity() bool {
	if u.RowsFromSource > 0 || u.RowsToSink > 0 || u.TooLate > 0 || u.FormatRejected > 0 {
		return true
	}
	for _, in := range u.InQueues {
		if in.RowsUsed > 0 {
			return true
		}
	}
	for _, out := range u.OutQueues {
		if out.RowsPut > 0 || out.RowsDropped > 0 {
			return true
		}
	}
	return false
}

// PurgeUpdate is reported after every window queue was purged
type PurgeUpdate struct{}

func (PurgeUpdate) isUpdate() {}
