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

package worker

import (
	"sort"
	"sync"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/memory"
	"github.com/rulego/pumpsql/queue"
	"github.com/rulego/pumpsql/task"
	"github.com/rulego/pumpsql/taskgraph"
)

// Strategy decides the order in which a generic worker runs its tasks
type Strategy string

const (
	// RoundRobin runs every task once per cycle starting one task later
	// each cycle
	RoundRobin Strategy = "round_robin"
	// FlowEfficient runs tasks in topological order so a row can travel
	// from source queue to sink within one cycle
	FlowEfficient Strategy = "flow_efficient"
	// MemoryReducing runs the tasks with the fullest input queues first,
	// sinks before pumps. It is used in Severe and Critical memory states.
	MemoryReducing Strategy = "memory_reducing"
)

// ParseStrategy parses a configured strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case RoundRobin, FlowEfficient, MemoryReducing:
		return Strategy(s), nil
	default:
		return "", errs.Newf(errs.ErrorTypeConfig, "unknown scheduler strategy %q", s)
	}
}

// StrategyFor returns the strategy to use in memory state s
func StrategyFor(configured Strategy, s memory.State) Strategy {
	if s == memory.Moderate {
		return configured
	}
	return MemoryReducing
}

// Scheduler guards the current pipeline derivatives. Workers hold the read
// side for a whole main loop cycle; updates and purges take the write side
// so they never interleave with a running task.
type Scheduler struct {
	mu          sync.RWMutex
	derivatives *task.PipelineDerivatives
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Acquire returns the current derivatives, possibly nil, and the function
// releasing them
func (s *Scheduler) Acquire() (*task.PipelineDerivatives, func()) {
	s.mu.RLock()
	return s.derivatives, s.mu.RUnlock
}

// Update swaps in d. onSwap runs under the write lock after the swap.
func (s *Scheduler) Update(d *task.PipelineDerivatives, onSwap func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.derivatives = d
	if onSwap != nil {
		onSwap()
	}
}

// Exclusive runs fn with no task running
func (s *Scheduler) Exclusive(fn func(d *task.PipelineDerivatives)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.derivatives)
}

// Current returns the derivatives without holding them
func (s *Scheduler) Current() *task.PipelineDerivatives {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derivatives
}

// partition keeps the tasks at positions idx, idx+n, idx+2n ...
func partition(ids []taskgraph.TaskID, idx, n int) []taskgraph.TaskID {
	if n <= 1 {
		return ids
	}
	out := make([]taskgraph.TaskID, 0, len(ids)/n+1)
	for i, id := range ids {
		if i%n == idx {
			out = append(out, id)
		}
	}
	return out
}

// GenericSeries returns the pump and sink tasks owned by worker idx of n in
// the order strategy runs them
func GenericSeries(g *taskgraph.TaskGraph, queues *queue.Repositories, strategy Strategy, idx, n int, round uint64) []taskgraph.TaskID {
	owned := partition(g.GenericTasks(), idx, n)
	switch strategy {
	case RoundRobin:
		if len(owned) == 0 {
			return owned
		}
		shift := int(round % uint64(len(owned)))
		out := make([]taskgraph.TaskID, 0, len(owned))
		out = append(out, owned[shift:]...)
		return append(out, owned[:shift]...)
	case MemoryReducing:
		return memoryReducingOrder(g, queues, owned)
	default:
		return owned
	}
}

func memoryReducingOrder(g *taskgraph.TaskGraph, queues *queue.Repositories, ids []taskgraph.TaskID) []taskgraph.TaskID {
	type weighted struct {
		id    taskgraph.TaskID
		bytes int64
	}
	ws := make([]weighted, len(ids))
	for i, id := range ids {
		var b int64
		for _, q := range g.InputQueues(id) {
			b += queues.Bytes(q)
		}
		ws[i] = weighted{id: id, bytes: b}
	}
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].bytes != ws[j].bytes {
			return ws[i].bytes > ws[j].bytes
		}
		return ws[i].id.Kind == taskgraph.SinkTask && ws[j].id.Kind != taskgraph.SinkTask
	})
	out := make([]taskgraph.TaskID, len(ws))
	for i, w := range ws {
		out[i] = w.id
	}
	return out
}

// SourceSeries returns the source tasks owned by source worker idx of n
func SourceSeries(g *taskgraph.TaskGraph, idx, n int) []taskgraph.TaskID {
	return partition(g.SourceTasks(), idx, n)
}
