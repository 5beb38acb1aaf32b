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

package event

import (
	"github.com/rulego/pumpsql/memory"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/task"
)

// Tag 事件类型
type Tag int

const (
	UpdatePipelineTag Tag = iota
	IncrementalUpdateMetricsTag
	ReportMetricsSummaryTag
	TransitMemoryStateTag
)

func (t Tag) String() string {
	switch t {
	case UpdatePipelineTag:
		return "UpdatePipeline"
	case IncrementalUpdateMetricsTag:
		return "IncrementalUpdateMetrics"
	case ReportMetricsSummaryTag:
		return "ReportMetricsSummary"
	case TransitMemoryStateTag:
		return "TransitMemoryState"
	default:
		return "Unknown"
	}
}

// Event is one of the typed events below
type Event interface {
	Tag() Tag
}

// UpdatePipeline carries the derivatives of a newly applied pipeline
type UpdatePipeline struct {
	Derivatives *task.PipelineDerivatives
}

func (UpdatePipeline) Tag() Tag { return UpdatePipelineTag }

// IncrementalUpdateMetrics carries one task execution or purge
type IncrementalUpdateMetrics struct {
	Update metrics.Update
}

func (IncrementalUpdateMetrics) Tag() Tag { return IncrementalUpdateMetricsTag }

// ReportMetricsSummary is published periodically by the performance monitor
type ReportMetricsSummary struct {
	Summary metrics.Summary
}

func (ReportMetricsSummary) Tag() Tag { return ReportMetricsSummaryTag }

// TransitMemoryState is published on every memory state change
type TransitMemoryState struct {
	Transition memory.Transition
}

func (TransitMemoryState) Tag() Tag { return TransitMemoryStateTag }
