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
	"sort"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
)

// Edge carries the rows of Stream from one task to another through Queue
type Edge struct {
	From   TaskID
	To     TaskID
	Stream string
	Queue  QueueID
}

type inputKey struct {
	task   TaskID
	stream string
}

// TaskGraph is the physical execution graph derived from a pipeline.
// Nodes live in an arena indexed by position; edges refer to tasks by id.
// The graph is immutable once built.
type TaskGraph struct {
	nodes   []TaskID
	index   map[TaskID]int
	edges   []Edge
	inputs  map[inputKey]QueueID
	outputs map[TaskID][]QueueID
	topo    []TaskID
}

// New derives the task graph of p. The pipeline is assumed acyclic.
func New(p *pipeline.PipelineGraph) (*TaskGraph, error) {
	g := &TaskGraph{
		index:   make(map[TaskID]int),
		inputs:  make(map[inputKey]QueueID),
		outputs: make(map[TaskID][]QueueID),
	}

	producers := make(map[string][]TaskID)
	type consumer struct {
		id       TaskID
		windowed bool
	}
	consumers := make(map[string][]consumer)

	for _, s := range p.SourceReaders() {
		id := SourceTaskID(s.Name)
		g.addNode(id)
		producers[s.DestStream] = append(producers[s.DestStream], id)
	}
	for _, pm := range p.Pumps() {
		id := PumpTaskID(pm.Name)
		g.addNode(id)
		producers[pm.Insert.Stream] = append(producers[pm.Insert.Stream], id)
		for _, up := range pm.Plan.Upstreams {
			if _, ok := p.Stream(up); !ok {
				return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: upstream stream %s does not exist", pm.Name, up)
			}
			consumers[up] = append(consumers[up], consumer{id: id, windowed: pm.Plan.Window != nil})
		}
	}
	for _, s := range p.SinkWriters() {
		id := SinkTaskID(s.Name)
		g.addNode(id)
		if _, ok := p.Stream(s.FromStream); !ok {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "sink writer %s: stream %s does not exist", s.Name, s.FromStream)
		}
		consumers[s.FromStream] = append(consumers[s.FromStream], consumer{id: id})
	}

	for _, stream := range p.Streams() {
		for _, c := range consumers[stream.Name] {
			kind := RowQueue
			if c.windowed {
				kind = WindowQueue
			}
			q := newQueueID(kind, stream.Name, c.id)
			g.inputs[inputKey{task: c.id, stream: stream.Name}] = q
			for _, from := range producers[stream.Name] {
				g.edges = append(g.edges, Edge{From: from, To: c.id, Stream: stream.Name, Queue: q})
				g.outputs[from] = append(g.outputs[from], q)
			}
		}
	}
	g.topo = g.topologicalOrder()
	return g, nil
}

func (g *TaskGraph) addNode(id TaskID) {
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
}

// topologicalOrder runs Kahn's algorithm. Ties are broken by arena order
// so the result is deterministic.
func (g *TaskGraph) topologicalOrder() []TaskID {
	indegree := make([]int, len(g.nodes))
	next := make([][]int, len(g.nodes))
	for _, e := range g.edges {
		from, to := g.index[e.From], g.index[e.To]
		next[from] = append(next[from], to)
		indegree[to]++
	}
	var ready []int
	for i, d := range indegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}
	order := make([]TaskID, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Ints(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[n])
		for _, m := range next[n] {
			indegree[m]--
			if indegree[m] == 0 {
				ready = append(ready, m)
			}
		}
	}
	return order
}

// InputQueue returns the queue task reads upstream from
func (g *TaskGraph) InputQueue(task TaskID, upstream string) (QueueID, error) {
	q, ok := g.inputs[inputKey{task: task, stream: upstream}]
	if !ok {
		return QueueID{}, errs.Newf(errs.ErrorTypeSQLSemantic, "task %s has no input queue for stream %s", task, upstream)
	}
	return q, nil
}

// InputQueues returns every input queue of task
func (g *TaskGraph) InputQueues(task TaskID) []QueueID {
	var out []QueueID
	for k, q := range g.inputs {
		if k.task == task {
			out = append(out, q)
		}
	}
	sortQueues(out)
	return out
}

// OutputQueues returns the queues task inserts into. Each downstream
// consumer of the task's stream owns one of them.
func (g *TaskGraph) OutputQueues(task TaskID) []QueueID {
	return g.outputs[task]
}

// DownstreamTasks returns the tasks reading what task produces
func (g *TaskGraph) DownstreamTasks(task TaskID) []TaskID {
	var out []TaskID
	seen := make(map[TaskID]struct{})
	for _, e := range g.edges {
		if e.From != task {
			continue
		}
		if _, ok := seen[e.To]; ok {
			continue
		}
		seen[e.To] = struct{}{}
		out = append(out, e.To)
	}
	return out
}

// Edges returns all edges
func (g *TaskGraph) Edges() []Edge {
	return g.edges
}

// AllTasks returns every task in topological order
func (g *TaskGraph) AllTasks() []TaskID {
	return g.topo
}

// SourceTasks returns the source tasks in topological order
func (g *TaskGraph) SourceTasks() []TaskID {
	return g.filter(func(id TaskID) bool { return id.Kind == SourceTask })
}

// GenericTasks returns pump and sink tasks in topological order
func (g *TaskGraph) GenericTasks() []TaskID {
	return g.filter(func(id TaskID) bool { return id.Kind != SourceTask })
}

func (g *TaskGraph) filter(keep func(TaskID) bool) []TaskID {
	var out []TaskID
	for _, id := range g.topo {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

// RowQueueIDs returns the ids of every row queue
func (g *TaskGraph) RowQueueIDs() []RowQueueID {
	var out []RowQueueID
	for _, q := range g.allQueues() {
		if q.Kind == RowQueue {
			out = append(out, q.RowQueueID())
		}
	}
	return out
}

// WindowQueueIDs returns the ids of every window queue
func (g *TaskGraph) WindowQueueIDs() []WindowQueueID {
	var out []WindowQueueID
	for _, q := range g.allQueues() {
		if q.Kind == WindowQueue {
			out = append(out, q.WindowQueueID())
		}
	}
	return out
}

func (g *TaskGraph) allQueues() []QueueID {
	out := make([]QueueID, 0, len(g.inputs))
	for _, q := range g.inputs {
		out = append(out, q)
	}
	sortQueues(out)
	return out
}

func sortQueues(qs []QueueID) {
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
}
