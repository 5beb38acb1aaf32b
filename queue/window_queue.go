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

// WindowQueue feeds a windowed pump. Besides the rows waiting to be
// dispatched it accounts for the bytes the pump's window retains from
// them, so the fullest window can be found without asking the pump.
type WindowQueue struct {
	mu         sync.Mutex
	rows       *ring[*types.Row]
	bytes      int64
	stateBytes int64
	bounds     Bounds
}

// NewWindowQueue creates an empty window queue
func NewWindowQueue(bounds Bounds) *WindowQueue {
	return &WindowQueue{rows: newRing[*types.Row](64), bounds: bounds}
}

func (q *WindowQueue) Put(row *types.Row) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.bounds.admits(q.rows.len(), q.bytes, row) {
		return false
	}
	q.rows.push(row)
	q.bytes += int64(row.MemSize())
	return true
}

func (q *WindowQueue) Use() (*types.Row, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	row, ok := q.rows.pop()
	if ok {
		q.bytes -= int64(row.MemSize())
	}
	return row, ok
}

func (q *WindowQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rows.len()
}

// Bytes returns buffered row bytes plus retained window state bytes
func (q *WindowQueue) Bytes() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bytes + q.stateBytes
}

// AddStateBytes records a change of the window state size
func (q *WindowQueue) AddStateBytes(delta int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stateBytes += delta
	if q.stateBytes < 0 {
		q.stateBytes = 0
	}
}

// Purge drops buffered rows and forgets the window state bytes
func (q *WindowQueue) Purge() (rows int, bytes int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	rows, bytes = q.rows.len(), q.bytes+q.stateBytes
	q.rows.reset()
	q.bytes = 0
	q.stateBytes = 0
	return rows, bytes
}
