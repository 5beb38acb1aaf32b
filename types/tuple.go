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
	"time"
)

// ColumnReference names a column of a stream
type ColumnReference struct {
	Stream string
	Column string
}

func (c ColumnReference) String() string {
	return c.Stream + "." + c.Column
}

// Tuple is the unit flowing through a pump's query. It is built from a row
// of one upstream stream.
type Tuple struct {
	stream  string
	row     *Row
	rowtime time.Time
}

// NewTuple wraps a row of stream
func NewTuple(stream string, row *Row) *Tuple {
	return &Tuple{stream: stream, row: row, rowtime: row.Rowtime()}
}

// Row returns the wrapped row
func (t *Tuple) Row() *Row {
	return t.row
}

// Stream returns the source stream name
func (t *Tuple) Stream() string {
	return t.stream
}

// Rowtime returns the tuple's event time
func (t *Tuple) Rowtime() time.Time {
	return t.rowtime
}

// Get resolves a column reference. An empty Stream matches any stream.
func (t *Tuple) Get(ref ColumnReference) (Value, bool) {
	if ref.Stream != "" && ref.Stream != t.stream {
		return Null(), false
	}
	return t.row.Get(ref.Column)
}

// Env returns the expression environment of the tuple. Columns are
// reachable both bare (amount) and qualified (trade.amount).
func (t *Tuple) Env() map[string]interface{} {
	cols := t.row.Map()
	env := make(map[string]interface{}, len(cols)+1)
	for k, v := range cols {
		env[k] = v
	}
	if _, clash := env[t.stream]; !clash {
		env[t.stream] = cols
	}
	return env
}
