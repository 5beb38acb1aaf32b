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

package rsql

import (
	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
)

// DefaultGroupByLabel labels the group key when no select item produces it
const DefaultGroupByLabel = "group_key"

// ParsePipeline parses a DDL script into a new pipeline graph
func ParsePipeline(sql string) (*pipeline.PipelineGraph, error) {
	stmts, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	g := pipeline.NewPipelineGraph()
	if err := Build(g, stmts...); err != nil {
		return nil, err
	}
	return g, nil
}

// Build adds the statements to g in order. Objects must be declared
// before they are referenced.
func Build(g *pipeline.PipelineGraph, stmts ...Statement) error {
	for _, stmt := range stmts {
		var err error
		switch s := stmt.(type) {
		case *CreateStream:
			err = g.AddStream(s.Stream)
		case *CreateSourceReader:
			err = g.AddSourceReader(s.Reader)
		case *CreateSinkWriter:
			err = g.AddSinkWriter(s.Writer)
		case *CreatePump:
			var pump pipeline.PumpModel
			if pump, err = s.Model(); err == nil {
				err = g.AddPump(pump)
			}
		default:
			err = errs.Newf(errs.ErrorTypeSQLSemantic, "unsupported statement %T", stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Model lowers the pump statement into its query plan
func (s *CreatePump) Model() (pipeline.PumpModel, error) {
	labels, err := s.targetColumns()
	if err != nil {
		return pipeline.PumpModel{}, err
	}
	plan := pipeline.QueryPlan{Upstreams: s.From}
	if s.Where != nil {
		plan.Selection = s.Where.Lang
	}

	if s.Window == nil {
		if s.GroupBy != nil {
			return pipeline.PumpModel{}, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: GROUP BY requires a window", s.PumpName)
		}
		for i, item := range s.Select {
			if item.Aggregate != "" {
				return pipeline.PumpModel{}, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: aggregate %s requires a window", s.PumpName, item.Aggregate)
			}
			plan.Projection = append(plan.Projection, pipeline.ProjectionItem{Alias: labels[i], Expression: item.Expr.Lang})
		}
		return pipeline.PumpModel{Name: s.PumpName, Plan: plan, Insert: pipeline.InsertPlan{Stream: s.Dest}}, nil
	}

	if s.GroupBy == nil {
		return pipeline.PumpModel{}, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: window requires GROUP BY", s.PumpName)
	}
	op := &pipeline.WindowOp{Param: *s.Window}
	group := s.GroupBy
	groupItem := -1
	for i, item := range s.Select {
		if item.Aggregate != "" {
			continue
		}
		// GROUP BY may name a select alias
		if group.Ident != "" && item.Alias == group.Ident && group.SQL == group.Ident {
			group = item.Expr
			groupItem = i
			break
		}
		if item.Expr.Lang == group.Lang || (group.Ident != "" && item.Expr.Ident == group.Ident) {
			groupItem = i
			break
		}
	}
	op.GroupAggregation.GroupBy = group.Lang
	op.GroupAggregation.GroupByLabel = DefaultGroupByLabel
	if groupItem >= 0 {
		op.GroupAggregation.GroupByLabel = labels[groupItem]
	}

	aggrItem := -1
	for i, item := range s.Select {
		if item.Aggregate == "" {
			continue
		}
		if aggrItem >= 0 {
			return pipeline.PumpModel{}, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: only one aggregate per pump is supported", s.PumpName)
		}
		aggrItem = i
		fn, err := aggregator.ParseAggregateType(item.Aggregate)
		if err != nil {
			return pipeline.PumpModel{}, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "pump %s", s.PumpName)
		}
		op.GroupAggregation.Function = fn
		op.GroupAggregation.Aggregated = item.Expr.Lang
		op.GroupAggregation.AggrLabel = labels[i]
	}
	if aggrItem < 0 {
		return pipeline.PumpModel{}, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: window requires an aggregate", s.PumpName)
	}

	for i, item := range s.Select {
		expr := item.Expr.Lang
		if i == aggrItem || i == groupItem {
			expr = labels[i]
		}
		plan.Projection = append(plan.Projection, pipeline.ProjectionItem{Alias: labels[i], Expression: expr})
	}
	plan.Window = op
	return pipeline.PumpModel{Name: s.PumpName, Plan: plan, Insert: pipeline.InsertPlan{Stream: s.Dest}}, nil
}

// targetColumns maps select items to destination columns: positionally
// when INSERT INTO lists columns, otherwise by alias or column name
func (s *CreatePump) targetColumns() ([]string, error) {
	if len(s.InsertColumns) > 0 {
		if len(s.InsertColumns) != len(s.Select) {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: %d insert columns but %d select items",
				s.PumpName, len(s.InsertColumns), len(s.Select))
		}
		return s.InsertColumns, nil
	}
	labels := make([]string, len(s.Select))
	for i, item := range s.Select {
		switch {
		case item.Alias != "":
			labels[i] = item.Alias
		case item.Aggregate == "" && item.Expr.Ident != "":
			labels[i] = item.Expr.Ident
		default:
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "pump %s: select item %q needs an alias", s.PumpName, item.Expr.SQL)
		}
	}
	return labels, nil
}
