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

package taskgraph

import (
	"fmt"
)

// TaskKind is the kind of a task node
type TaskKind int

const (
	SourceTask TaskKind = iota
	PumpTask
	SinkTask
)

func (k TaskKind) String() string {
	switch k {
	case SourceTask:
		return "source"
	case PumpTask:
		return "pump"
	case SinkTask:
		return "sink"
	default:
		return "unknown"
	}
}

// TaskID identifies a task by kind and the name of the reader, pump or
// writer it runs
type TaskID struct {
	Kind TaskKind
	Name string
}

func SourceTaskID(readerName string) TaskID { return TaskID{Kind: SourceTask, Name: readerName} }
func PumpTaskID(pumpName string) TaskID     { return TaskID{Kind: PumpTask, Name: pumpName} }
func SinkTaskID(writerName string) TaskID   { return TaskID{Kind: SinkTask, Name: writerName} }

func (id TaskID) String() string {
	return fmt.Sprintf("%s:%s", id.Kind, id.Name)
}

// QueueKind distinguishes row queues from window queues
type QueueKind int

const (
	RowQueue QueueKind = iota
	WindowQueue
)

func (k QueueKind) String() string {
	if k == WindowQueue {
		return "window"
	}
	return "row"
}

// RowQueueID identifies a row queue
type RowQueueID string

// WindowQueueID identifies a window queue
type WindowQueueID string

// QueueID identifies the queue on one edge of the task graph. There is
// one queue per (downstream task, upstream stream) pair.
type QueueID struct {
	Kind QueueKind
	ID   string
}

func newQueueID(kind QueueKind, stream string, downstream TaskID) QueueID {
	return QueueID{Kind: kind, ID: fmt.Sprintf("%s->%s", stream, downstream)}
}

// RowQueueID returns the id as a row queue id
func (q QueueID) RowQueueID() RowQueueID { return RowQueueID(q.ID) }

// WindowQueueID returns the id as a window queue id
func (q QueueID) WindowQueueID() WindowQueueID { return WindowQueueID(q.ID) }

func (q QueueID) String() string {
	return fmt.Sprintf("%s[%s]", q.Kind, q.ID)
}
