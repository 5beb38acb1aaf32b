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
	"sort"

	"github.com/google/uuid"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/taskgraph"
)

// TaskRepository holds the tasks of one pipeline generation
type TaskRepository struct {
	tasks map[taskgraph.TaskID]*Task
}

// NewTaskRepository compiles a task for every node of g
func NewTaskRepository(p *pipeline.PipelineGraph, g *taskgraph.TaskGraph) (*TaskRepository, error) {
	r := &TaskRepository{tasks: make(map[taskgraph.TaskID]*Task)}
	for _, m := range p.SourceReaders() {
		stream, ok := p.Stream(m.DestStream)
		if !ok {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "source reader %s: stream %s not found", m.Name, m.DestStream)
		}
		st := newSourceTask(m, stream)
		r.tasks[st.id] = &Task{id: st.id, source: st}
	}
	for _, m := range p.Pumps() {
		dest, ok := p.Stream(m.Insert.Stream)
		if !ok {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: stream %s not found", m.Name, m.Insert.Stream)
		}
		pt, err := newPumpTask(m, dest)
		if err != nil {
			return nil, err
		}
		r.tasks[pt.id] = &Task{id: pt.id, pump: pt}
	}
	for _, m := range p.SinkWriters() {
		st := newSinkTask(m)
		r.tasks[st.id] = &Task{id: st.id, sink: st}
	}
	for _, id := range g.AllTasks() {
		if _, ok := r.tasks[id]; !ok {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "task %s has no definition", id)
		}
	}
	return r, nil
}

// Get looks a task up. A missing id is an internal error.
func (r *TaskRepository) Get(id taskgraph.TaskID) (*Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "task %s not found", id)
	}
	return t, nil
}

// Len returns the number of tasks
func (r *TaskRepository) Len() int {
	return len(r.tasks)
}

// PurgeWindows drops the pane state of every pump window and returns the
// released bytes
func (r *TaskRepository) PurgeWindows() int64 {
	ids := make([]taskgraph.TaskID, 0, len(r.tasks))
	for id, t := range r.tasks {
		if t.pump != nil && t.pump.window != nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Name < ids[j].Name })
	var released int64
	for _, id := range ids {
		released += r.tasks[id].pump.window.Purge()
	}
	return released
}

// PipelineDerivatives is everything computed from one applied pipeline.
// It is immutable once built.
type PipelineDerivatives struct {
	Generation uuid.UUID
	Pipeline   *pipeline.PipelineGraph
	TaskGraph  *taskgraph.TaskGraph
	Tasks      *TaskRepository
}

// NewPipelineDerivatives builds the task graph and compiles every task of p
func NewPipelineDerivatives(p *pipeline.PipelineGraph) (*PipelineDerivatives, error) {
	g, err := taskgraph.New(p)
	if err != nil {
		return nil, err
	}
	tasks, err := NewTaskRepository(p, g)
	if err != nil {
		return nil, err
	}
	return &PipelineDerivatives{
		Generation: uuid.New(),
		Pipeline:   p,
		TaskGraph:  g,
		Tasks:      tasks,
	}, nil
}
