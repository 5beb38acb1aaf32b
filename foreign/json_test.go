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
	"errors"
	"testing"
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradeStream() *pipeline.StreamModel {
	return &pipeline.StreamModel{
		Name: "source_trade",
		Columns: []pipeline.ColumnDefinition{
			{Name: "ts", Type: pipeline.SQLTypeTimestamp},
			{Name: "ticker", Type: pipeline.SQLTypeText},
			{Name: "amount", Type: pipeline.SQLTypeInteger},
			{Name: "note", Type: pipeline.SQLTypeText, Nullable: true},
		},
		RowtimeColumn: "ts",
	}
}

func TestParseJSONObject(t *testing.T) {
	cols, err := ParseJSONObject([]byte(`{"ts": "2020-01-01 00:00:00.000000000", "ticker": "ORCL", "amount": 20, "price": 1.5, "ok": true, "x": null}`))
	require.NoError(t, err)
	assert.Equal(t, types.Text("ORCL"), cols["ticker"])
	assert.Equal(t, types.Int(20), cols["amount"])
	assert.Equal(t, types.Float(1.5), cols["price"])
	assert.Equal(t, types.Bool(true), cols["ok"])
	assert.True(t, cols["x"].IsNull())
}

func TestParseJSONObjectErrors(t *testing.T) {
	for _, doc := range []string{
		`[1, 2]`,
		`"text"`,
		`{"a": {"b": 1}}`,
		`{"a": [1]}`,
		`{"a": `,
		``,
	} {
		_, err := ParseJSONObject([]byte(doc))
		require.Error(t, err, doc)
		assert.True(t, errors.Is(err, errs.ErrForeignFormat), doc)
	}
}

func TestIntoRow(t *testing.T) {
	cols, err := ParseJSONObject([]byte(`{"ts": "2020-01-01 00:00:06.000000000", "ticker": "ORCL", "amount": "400", "extra": 1}`))
	require.NoError(t, err)
	row, err := IntoRow(cols, tradeStream())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 6, 0, time.UTC), row.Rowtime())
	amount, _ := row.Get("amount")
	assert.Equal(t, types.Int(400), amount)
	note, ok := row.Get("note")
	require.True(t, ok)
	assert.True(t, note.IsNull())
	_, ok = row.Get("extra")
	assert.False(t, ok)
}

func TestIntoRowErrors(t *testing.T) {
	tests := []string{
		`{"ticker": "ORCL", "amount": 1}`,
		`{"ts": null, "ticker": "ORCL", "amount": 1}`,
		`{"ts": "2020-01-01 00:00:06", "amount": 1}`,
		`{"ts": "2020-01-01 00:00:06", "ticker": "ORCL", "amount": "many"}`,
		`{"ts": "yesterday", "ticker": "ORCL", "amount": 1}`,
	}
	for _, doc := range tests {
		cols, err := ParseJSONObject([]byte(doc))
		require.NoError(t, err)
		_, err = IntoRow(cols, tradeStream())
		assert.True(t, errors.Is(err, errs.ErrForeignFormat), "%s: %v", doc, err)
	}
}

func TestRowToJSON(t *testing.T) {
	cols := types.ColumnValues{
		"ts":     types.Timestamp(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		"ticker": types.Text("GOOGL"),
		"avg":    types.Float(100),
	}
	row, err := types.NewRow(cols, "ts")
	require.NoError(t, err)
	data, err := RowToJSON(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ts": "2020-01-01 00:00:00", "ticker": "GOOGL", "avg": 100}`, string(data))

	back, err := ParseJSONObject(data)
	require.NoError(t, err)
	assert.Equal(t, types.Text("GOOGL"), back["ticker"])
}
