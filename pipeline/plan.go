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
	"time"

	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/errs"
)

// QueryPlan is the operator tree of one pump:
// collect -> [selection] -> [window] -> projection
type QueryPlan struct {
	// Upstreams lists the streams the pump reads from. Rows of several
	// upstreams are interleaved as they are collected.
	Upstreams []string
	// Selection is an optional WHERE expression
	Selection string
	Window    *WindowOp
	// Projection produces the output columns. Without a window the
	// expressions see the tuple's columns; with a window they see the
	// group-by label, the aggregation label, window_start and window_end.
	Projection []ProjectionItem
}

// ProjectionItem produces column Alias from Expression
type ProjectionItem struct {
	Alias      string
	Expression string
}

// WindowOp aggregates tuples per pane and group
type WindowOp struct {
	Param            WindowParameter
	GroupAggregation GroupAggregateParameter
}

// GroupAggregateParameter describes `AGGR(Aggregated) AS AggrLabel ... GROUP BY GroupBy AS GroupByLabel`
type GroupAggregateParameter struct {
	Function     aggregator.AggregateType
	Aggregated   string
	AggrLabel    string
	GroupBy      string
	GroupByLabel string
}

// Window projection labels of the pane boundaries
const (
	WindowStartLabel = "window_start"
	WindowEndLabel   = "window_end"
)

// WindowKind is the window shape
type WindowKind int

const (
	FixedWindow WindowKind = iota
	SlidingWindow
)

func (k WindowKind) String() string {
	if k == SlidingWindow {
		return "SLIDING"
	}
	return "FIXED"
}

// WindowParameter holds the window shape and lateness tolerance
type WindowParameter struct {
	Kind         WindowKind
	Length       time.Duration
	period       time.Duration
	AllowedDelay time.Duration
}

// NewFixedWindow creates tumbling windows of length
func NewFixedWindow(length, allowedDelay time.Duration) WindowParameter {
	return WindowParameter{Kind: FixedWindow, Length: length, period: length, AllowedDelay: allowedDelay}
}

// NewSlidingWindow creates windows of length opened every period
func NewSlidingWindow(length, period, allowedDelay time.Duration) WindowParameter {
	return WindowParameter{Kind: SlidingWindow, Length: length, period: period, AllowedDelay: allowedDelay}
}

// Period returns the distance between pane open times. For fixed windows
// it equals Length.
func (p WindowParameter) Period() time.Duration {
	if p.Kind == FixedWindow {
		return p.Length
	}
	return p.period
}

// Validate checks the window shape
func (p WindowParameter) Validate() error {
	if p.Length <= 0 {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "window length must be positive, got %s", p.Length)
	}
	if p.AllowedDelay < 0 {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "allowed delay must not be negative, got %s", p.AllowedDelay)
	}
	if p.Kind == SlidingWindow {
		if p.period <= 0 {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "window period must be positive, got %s", p.period)
		}
		if p.period > p.Length {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "window period %s exceeds length %s", p.period, p.Length)
		}
	}
	return nil
}
