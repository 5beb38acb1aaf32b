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

	"github.com/rulego/pumpsql/types"
)

// Queue is the input of one task from one upstream stream
type Queue interface {
	// Put appends row. It returns false when the queue is full and the
	// row was not accepted.
	Put(row *types.Row) bool
	// Use pops the oldest row
	Use() (*types.Row, bool)
	Len() int
	Bytes() int64
}

// Bounds limits a queue. Zero fields are unbounded.
type Bounds struct {
	MaxRows  int
	MaxBytes int64
}

func (b Bounds) admits(rows int, bytes int64, row *types.Row) bool {
	if b.MaxRows > 0 && rows >= b.MaxRows {
		return false
	}
	if b.MaxBytes > 0 && bytes+int64(row.MemSize()) > b.MaxBytes {
		return false
	}
	return true
}

// RowQueue is a FIFO of rows between two tasks
type RowQueue struct {
	mu     sync.Mutex
	rows   *ring[*types.Row]
	bytes  int64
	bounds Bounds
}

// NewRowQueue creates an empty row queue
func NewRowQueue(bounds Bounds) *RowQueue {
	return &RowQueue{rows: newRing[*types.Row](64), bounds: bounds}
}

func (q *RowQueue) Put(row *types.Row) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.bounds.admits(q.rows.len(), q.bytes, row) {
		return false
	}
	q.rows.push(row)
	q.bytes += int64(row.MemSize())
	return true
}

func (q *RowQueue) Use() (*types.Row, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	row, ok := q.rows.pop()
	if ok {
		q.bytes -= int64(row.MemSize())
	}
	return row, ok
}

func (q *RowQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rows.len()
}

func (q *RowQueue) Bytes() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bytes
}

// Purge drops every buffered row and returns what was released
func (q *RowQueue) Purge() (rows int, bytes int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rows, bytes = q.rows.len(), q.bytes
	q.rows.reset()
	q.bytes = 0
	return rows, bytes
}
