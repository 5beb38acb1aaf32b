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

package queue

import (
	"sync"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/taskgraph"
)

// RowQueueRepository owns every row queue of the current pipeline
type RowQueueRepository struct {
	mu     sync.RWMutex
	queues map[taskgraph.RowQueueID]*RowQueue
	bounds Bounds
}

func NewRowQueueRepository(bounds Bounds) *RowQueueRepository {
	return &RowQueueRepository{queues: make(map[taskgraph.RowQueueID]*RowQueue), bounds: bounds}
}

// Get returns a row queue
func (r *RowQueueRepository) Get(id taskgraph.RowQueueID) (*RowQueue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[id]
	if !ok {
		return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "row queue %s not found", id)
	}
	return q, nil
}

// Reset replaces every queue with empty queues for ids
func (r *RowQueueRepository) Reset(ids []taskgraph.RowQueueID) {
	queues := make(map[taskgraph.RowQueueID]*RowQueue, len(ids))
	for _, id := range ids {
		queues[id] = NewRowQueue(r.bounds)
	}
	r.mu.Lock()
	r.queues = queues
	r.mu.Unlock()
}

// Purge empties every row queue
func (r *RowQueueRepository) Purge() (rows int, bytes int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.queues {
		n, b := q.Purge()
		rows += n
		bytes += b
	}
	return rows, bytes
}

// WindowQueueRepository owns every window queue of the current pipeline
type WindowQueueRepository struct {
	mu     sync.RWMutex
	queues map[taskgraph.WindowQueueID]*WindowQueue
	bounds Bounds
}

func NewWindowQueueRepository(bounds Bounds) *WindowQueueRepository {
	return &WindowQueueRepository{queues: make(map[taskgraph.WindowQueueID]*WindowQueue), bounds: bounds}
}

// Get returns a window queue
func (r *WindowQueueRepository) Get(id taskgraph.WindowQueueID) (*WindowQueue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[id]
	if !ok {
		return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "window queue %s not found", id)
	}
	return q, nil
}

// Reset replaces every queue with empty queues for ids
func (r *WindowQueueRepository) Reset(ids []taskgraph.WindowQueueID) {
	queues := make(map[taskgraph.WindowQueueID]*WindowQueue, len(ids))
	for _, id := range ids {
		queues[id] = NewWindowQueue(r.bounds)
	}
	r.mu.Lock()
	r.queues = queues
	r.mu.Unlock()
}

// Purge empties every window queue
func (r *WindowQueueRepository) Purge() (rows int, bytes int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.queues {
		n, b := q.Purge()
		rows += n
		bytes += b
	}
	return rows, bytes
}

// Repositories bundles both queue kinds and resolves a QueueID
type Repositories struct {
	Rows    *RowQueueRepository
	Windows *WindowQueueRepository
}

func NewRepositories(bounds Bounds) *Repositories {
	return &Repositories{
		Rows:    NewRowQueueRepository(bounds),
		Windows: NewWindowQueueRepository(bounds),
	}
}

// Get resolves id to its queue
func (r *Repositories) Get(id taskgraph.QueueID) (Queue, error) {
	if id.Kind == taskgraph.WindowQueue {
		q, err := r.Windows.Get(id.WindowQueueID())
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	q, err := r.Rows.Get(id.RowQueueID())
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Reset allocates empty queues for every queue of g
func (r *Repositories) Reset(g *taskgraph.TaskGraph) {
	r.Rows.Reset(g.RowQueueIDs())
	r.Windows.Reset(g.WindowQueueIDs())
}

// Bytes returns the bytes held by queue id, zero when unknown
func (r *Repositories) Bytes(id taskgraph.QueueID) int64 {
	q, err := r.Get(id)
	if err != nil {
		return 0
	}
	return q.Bytes()
}
