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

package foreign

import (
	"sync"
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
)

// InMemoryQueue is a named FIFO of raw JSON rows shared between an
// application and the pipeline's IN_MEMORY_QUEUE readers and writers
type InMemoryQueue struct {
	mu     sync.Mutex
	items  [][]byte
	notify chan struct{}
}

var (
	inMemoryQueues   = make(map[string]*InMemoryQueue)
	inMemoryQueuesMu sync.Mutex
)

// GetInMemoryQueue returns the queue called name, creating it on first use
func GetInMemoryQueue(name string) *InMemoryQueue {
	inMemoryQueuesMu.Lock()
	defer inMemoryQueuesMu.Unlock()
	q, ok := inMemoryQueues[name]
	if !ok {
		q = &InMemoryQueue{notify: make(chan struct{}, 1)}
		inMemoryQueues[name] = q
	}
	return q
}

// DropInMemoryQueue forgets the queue called name
func DropInMemoryQueue(name string) {
	inMemoryQueuesMu.Lock()
	defer inMemoryQueuesMu.Unlock()
	delete(inMemoryQueues, name)
}

// Push appends a raw row
func (q *InMemoryQueue) Push(row []byte) {
	q.mu.Lock()
	q.items = append(q.items, row)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest row without waiting
func (q *InMemoryQueue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	row := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return row, true
}

// PopWait removes the oldest row, waiting up to timeout for one to arrive
func (q *InMemoryQueue) PopWait(timeout time.Duration) ([]byte, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		if row, ok := q.Pop(); ok {
			return row, true
		}
		select {
		case <-q.notify:
		case <-timer.C:
			return q.Pop()
		}
	}
}

// Len returns the number of queued rows
func (q *InMemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type inMemoryQueueSourceReader struct {
	name        string
	queue       *InMemoryQueue
	readTimeout time.Duration
}

func newInMemoryQueueSourceReader(opts pipeline.Options, cfg types.SourceReaderConfig) (*inMemoryQueueSourceReader, error) {
	name, err := opts.Get(OptionName)
	if err != nil {
		return nil, err
	}
	return &inMemoryQueueSourceReader{name: name, queue: GetInMemoryQueue(name), readTimeout: cfg.ReadTimeout()}, nil
}

func (r *inMemoryQueueSourceReader) NextRow() ([]byte, error) {
	row, ok := r.queue.PopWait(r.readTimeout)
	if !ok {
		return nil, errs.Newf(errs.ErrorTypeForeignTimeout, "in-memory queue %s is empty", r.name)
	}
	return row, nil
}

func (r *inMemoryQueueSourceReader) Close() error {
	return nil
}

type inMemoryQueueSinkWriter struct {
	queue *InMemoryQueue
}

func newInMemoryQueueSinkWriter(opts pipeline.Options) (*inMemoryQueueSinkWriter, error) {
	name, err := opts.Get(OptionName)
	if err != nil {
		return nil, err
	}
	return &inMemoryQueueSinkWriter{queue: GetInMemoryQueue(name)}, nil
}

func (w *inMemoryQueueSinkWriter) SendRow(row []byte) error {
	w.queue.Push(row)
	return nil
}

func (w *inMemoryQueueSinkWriter) Close() error {
	return nil
}
