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
	"strings"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/types"
)

// SQLType is the declared type of a stream column
type SQLType int

const (
	SQLTypeInteger SQLType = iota
	SQLTypeFloat
	SQLTypeText
	SQLTypeBoolean
	SQLTypeTimestamp
)

// ValueKind maps the SQL type to the runtime value kind
func (t SQLType) ValueKind() types.ValueKind {
	switch t {
	case SQLTypeInteger:
		return types.KindInt
	case SQLTypeFloat:
		return types.KindFloat
	case SQLTypeBoolean:
		return types.KindBool
	case SQLTypeTimestamp:
		return types.KindTimestamp
	default:
		return types.KindText
	}
}

// ColumnDefinition declares a stream column
type ColumnDefinition struct {
	Name     string
	Type     SQLType
	Nullable bool
}

// StreamModel declares a stream. RowtimeColumn, when set, names the
// TIMESTAMP column carrying event time.
type StreamModel struct {
	Name          string
	Columns       []ColumnDefinition
	RowtimeColumn string
}

// Column looks a column up by name
func (s *StreamModel) Column(name string) (ColumnDefinition, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

func (s *StreamModel) validate() error {
	if s.Name == "" {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "stream name is empty")
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if _, dup := seen[c.Name]; dup {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "stream %s: duplicate column %q", s.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	if s.RowtimeColumn != "" {
		c, ok := s.Column(s.RowtimeColumn)
		if !ok {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "stream %s: rowtime column %q is not declared", s.Name, s.RowtimeColumn)
		}
		if c.Type != SQLTypeTimestamp {
			return errs.Newf(errs.ErrorTypeSQLSemantic, "stream %s: rowtime column %q must be TIMESTAMP", s.Name, s.RowtimeColumn)
		}
	}
	return nil
}

// SourceReaderType names a source reader implementation
type SourceReaderType string

const (
	SourceReaderNetClient     SourceReaderType = "NET_CLIENT"
	SourceReaderNetServer     SourceReaderType = "NET_SERVER"
	SourceReaderInMemoryQueue SourceReaderType = "IN_MEMORY_QUEUE"
)

// SinkWriterType names a sink writer implementation
type SinkWriterType string

const (
	SinkWriterNetClient     SinkWriterType = "NET_CLIENT"
	SinkWriterHTTPClient    SinkWriterType = "HTTP_CLIENT"
	SinkWriterInMemoryQueue SinkWriterType = "IN_MEMORY_QUEUE"
)

// ParseSourceReaderType parses a reader type name, case-insensitive
func ParseSourceReaderType(s string) (SourceReaderType, error) {
	switch t := SourceReaderType(strings.ToUpper(s)); t {
	case SourceReaderNetClient, SourceReaderNetServer, SourceReaderInMemoryQueue:
		return t, nil
	}
	return "", errs.Newf(errs.ErrorTypeSQLSemantic, "unknown source reader type %q", s)
}

// ParseSinkWriterType parses a writer type name, case-insensitive
func ParseSinkWriterType(s string) (SinkWriterType, error) {
	switch t := SinkWriterType(strings.ToUpper(s)); t {
	case SinkWriterNetClient, SinkWriterHTTPClient, SinkWriterInMemoryQueue:
		return t, nil
	}
	return "", errs.Newf(errs.ErrorTypeSQLSemantic, "unknown sink writer type %q", s)
}

// SourceReaderModel feeds DestStream from a foreign source
type SourceReaderModel struct {
	Name       string
	Type       SourceReaderType
	DestStream string
	Options    Options
}

// SinkWriterModel drains FromStream into a foreign sink
type SinkWriterModel struct {
	Name       string
	Type       SinkWriterType
	FromStream string
	Options    Options
}

// PumpModel runs Plan over its upstream streams and inserts into Insert.Stream
type PumpModel struct {
	Name   string
	Plan   QueryPlan
	Insert InsertPlan
}

// InsertPlan names the destination stream of a pump
type InsertPlan struct {
	Stream string
}
