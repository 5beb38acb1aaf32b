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

package types

import (
	"sort"
	"time"

	"github.com/rulego/pumpsql/errs"
)

// ColumnValues holds one value per column name
type ColumnValues map[string]Value

// Insert adds a column. Inserting the same column twice is a semantic error.
func (c ColumnValues) Insert(column string, v Value) error {
	if _, ok := c[column]; ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "column %q already set", column)
	}
	c[column] = v
	return nil
}

// Columns returns the column names in lexical order
func (c ColumnValues) Columns() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const rowOverhead = 48

// Row is an immutable stream row. Rows are shared by pointer between
// queues and must not be modified after NewRow returns.
type Row struct {
	values  ColumnValues
	rowtime time.Time
	memSize int
}

// NewRow builds a row. When rowtimeColumn is not empty the event time is
// taken from that column, otherwise arrival time is used.
func NewRow(values ColumnValues, rowtimeColumn string) (*Row, error) {
	rowtime := time.Now()
	if rowtimeColumn != "" {
		v, ok := values[rowtimeColumn]
		if !ok || v.IsNull() {
			return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "rowtime column %q is missing", rowtimeColumn)
		}
		t, err := v.AsTimestamp()
		if err != nil {
			return nil, err
		}
		rowtime = t
		values[rowtimeColumn] = Timestamp(t)
	}
	size := rowOverhead
	for name, v := range values {
		size += len(name) + v.MemSize()
	}
	return &Row{values: values, rowtime: rowtime, memSize: size}, nil
}

// Get returns the value of column, or NULL with false when absent
func (r *Row) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Rowtime returns the event time of the row
func (r *Row) Rowtime() time.Time {
	return r.rowtime
}

// Columns returns the column names in lexical order
func (r *Row) Columns() []string {
	return r.values.Columns()
}

// Len returns the number of columns
func (r *Row) Len() int {
	return len(r.values)
}

// MemSize estimates the bytes held by the row
func (r *Row) MemSize() int {
	return r.memSize
}

// Map returns the native column values
func (r *Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.values))
	for name, v := range r.values {
		m[name] = v.Interface()
	}
	return m
}
