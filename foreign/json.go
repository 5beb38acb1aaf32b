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

package foreign

import (
	"bytes"

	"github.com/bytedance/sonic"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
)

var jsonAPI = sonic.Config{UseNumber: true}.Froze()

// ParseJSONObject decodes one flat JSON object into column values.
// Nested objects and arrays are rejected.
func ParseJSONObject(data []byte) (types.ColumnValues, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errs.Newf(errs.ErrorTypeForeignFormat, "top-level JSON value must be an object: %q", truncate(data))
	}
	var obj map[string]interface{}
	if err := jsonAPI.Unmarshal(data, &obj); err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeForeignFormat, err, "invalid JSON %q", truncate(data))
	}
	cols := make(types.ColumnValues, len(obj))
	for key, raw := range obj {
		switch raw.(type) {
		case map[string]interface{}, []interface{}:
			return nil, errs.Newf(errs.ErrorTypeForeignFormat, "nested value in column %q is not supported", key)
		}
		v, err := types.FromInterface(raw)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrorTypeForeignFormat, err, "column %q", key)
		}
		if err := cols.Insert(key, v); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// IntoRow shapes decoded columns into a row of stream. Declared columns
// are coerced to their SQL type; undeclared keys are ignored.
func IntoRow(cols types.ColumnValues, stream *pipeline.StreamModel) (*types.Row, error) {
	values := make(types.ColumnValues, len(stream.Columns))
	for _, def := range stream.Columns {
		v, ok := cols[def.Name]
		if !ok || v.IsNull() {
			if !def.Nullable || def.Name == stream.RowtimeColumn {
				return nil, errs.Newf(errs.ErrorTypeForeignFormat, "stream %s: column %s is missing", stream.Name, def.Name)
			}
			values[def.Name] = types.Null()
			continue
		}
		converted, err := v.Convert(def.Type.ValueKind())
		if err != nil {
			return nil, errs.Wrapf(errs.ErrorTypeForeignFormat, err, "stream %s: column %s", stream.Name, def.Name)
		}
		values[def.Name] = converted
	}
	row, err := types.NewRow(values, stream.RowtimeColumn)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeForeignFormat, err, "stream %s", stream.Name)
	}
	return row, nil
}

// RowToJSON encodes a row as a flat JSON object. Timestamps are written
// with types.TimestampLayout.
func RowToJSON(row *types.Row) ([]byte, error) {
	obj := make(map[string]interface{}, row.Len())
	for _, col := range row.Columns() {
		v, _ := row.Get(col)
		if v.Kind() == types.KindTimestamp {
			obj[col] = v.String()
			continue
		}
		obj[col] = v.Interface()
	}
	return jsonAPI.Marshal(obj)
}

func truncate(data []byte) string {
	const maxLen = 64
	if len(data) > maxLen {
		return string(data[:maxLen]) + "..."
	}
	return string(data)
}
