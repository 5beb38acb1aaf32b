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

package pipeline

import (
	"sort"

	"github.com/rulego/pumpsql/errs"
)

// PipelineGraph is the declarative pipeline: streams plus the pumps,
// source readers and sink writers connecting them. A graph is handed to
// the runtime as a whole and must not be modified afterwards.
type PipelineGraph struct {
	streams map[string]*StreamModel
	pumps   map[string]*PumpModel
	sources map[string]*SourceReaderModel
	sinks   map[string]*SinkWriterModel
}

// NewPipelineGraph creates an empty pipeline
func NewPipelineGraph() *PipelineGraph {
	return &PipelineGraph{
		streams: make(map[string]*StreamModel),
		pumps:   make(map[string]*PumpModel),
		sources: make(map[string]*SourceReaderModel),
		sinks:   make(map[string]*SinkWriterModel),
	}
}

// AddStream declares a stream
func (g *PipelineGraph) AddStream(s StreamModel) error {
	if err := s.validate(); err != nil {
		return err
	}
	if _, ok := g.streams[s.Name]; ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "stream %s already exists", s.Name)
	}
	g.streams[s.Name] = &s
	return nil
}

// AddPump declares a pump. Every stream it references must exist.
func (g *PipelineGraph) AddPump(p PumpModel) error {
	if p.Name == "" {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "pump name is empty")
	}
	if _, ok := g.pumps[p.Name]; ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s already exists", p.Name)
	}
	if len(p.Plan.Upstreams) == 0 {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s has no upstream stream", p.Name)
	}
	seen := make(map[string]struct{}, len(p.Plan.Upstreams))
	for _, up := range p.Plan.Upstreams {
		if _, dup := seen[up]; dup {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s reads stream %s twice", p.Name, up)
		}
		seen[up] = struct{}{}
		if _, ok := g.streams[up]; !ok {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: upstream stream %s does not exist", p.Name, up)
		}
		if up == p.Insert.Stream {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s inserts into its own upstream %s", p.Name, up)
		}
	}
	dest, ok := g.streams[p.Insert.Stream]
	if !ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: downstream stream %s does not exist", p.Name, p.Insert.Stream)
	}
	if len(p.Plan.Projection) == 0 {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s has an empty projection", p.Name)
	}
	for _, item := range p.Plan.Projection {
		if _, ok := dest.Column(item.Alias); !ok {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: column %s is not declared in stream %s", p.Name, item.Alias, dest.Name)
		}
	}
	if w := p.Plan.Window; w != nil {
		if err := w.Param.Validate(); err != nil {
			return err
		}
		if w.GroupAggregation.AggrLabel == "" || w.GroupAggregation.GroupByLabel == "" {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: aggregation and group-by labels are required", p.Name)
		}
	}
	g.pumps[p.Name] = &p
	return nil
}

// AddSourceReader declares a source reader feeding an existing stream
func (g *PipelineGraph) AddSourceReader(s SourceReaderModel) error {
	if _, ok := g.sources[s.Name]; ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "source reader %s already exists", s.Name)
	}
	if _, ok := g.streams[s.DestStream]; !ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "source reader %s: stream %s does not exist", s.Name, s.DestStream)
	}
	g.sources[s.Name] = &s
	return nil
}

// AddSinkWriter declares a sink writer draining an existing stream
func (g *PipelineGraph) AddSinkWriter(s SinkWriterModel) error {
	if _, ok := g.sinks[s.Name]; ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "sink writer %s already exists", s.Name)
	}
	if _, ok := g.streams[s.FromStream]; !ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "sink writer %s: stream %s does not exist", s.Name, s.FromStream)
	}
	g.sinks[s.Name] = &s
	return nil
}

// Stream returns a stream by name
func (g *PipelineGraph) Stream(name string) (*StreamModel, bool) {
	s, ok := g.streams[name]
	return s, ok
}

// Streams returns all streams ordered by name
func (g *PipelineGraph) Streams() []*StreamModel {
	return sortedValues(g.streams, func(s *StreamModel) string { return s.Name })
}

// Pumps returns all pumps ordered by name
func (g *PipelineGraph) Pumps() []*PumpModel {
	return sortedValues(g.pumps, func(p *PumpModel) string { return p.Name })
}

// SourceReaders returns all source readers ordered by name
func (g *PipelineGraph) SourceReaders() []*SourceReaderModel {
	return sortedValues(g.sources, func(s *SourceReaderModel) string { return s.Name })
}

// SinkWriters returns all sink writers ordered by name
func (g *PipelineGraph) SinkWriters() []*SinkWriterModel {
	return sortedValues(g.sinks, func(s *SinkWriterModel) string { return s.Name })
}

func sortedValues[T any](m map[string]*T, name func(*T) string) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return name(out[i]) < name(out[j]) })
	return out
}
