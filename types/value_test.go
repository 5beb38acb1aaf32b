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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromInterface(t *testing.T) {
	tests := []struct {
		in   interface{}
		kind ValueKind
	}{
		{nil, KindNull},
		{true, KindBool},
		{42, KindInt},
		{int32(7), KindInt},
		{uint8(7), KindInt},
		{3.5, KindFloat},
		{json.Number("100"), KindInt},
		{json.Number("1.25"), KindFloat},
		{"GOOGL", KindText},
		{time.Unix(0, 0), KindTimestamp},
	}
	for _, tt := range tests {
		v, err := FromInterface(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, v.Kind(), "%v", tt.in)
	}

	_, err := FromInterface([]int{1})
	assert.Error(t, err)
}

func TestValueConversions(t *testing.T) {
	f, err := Int(3).AsFloat64()
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	_, err = Null().AsFloat64()
	assert.True(t, errors.Is(err, errs.ErrSQLSemantic))

	ts, err := Text("2020-01-01 00:00:04.999999999").AsTimestamp()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 4, 999999999, time.UTC), ts)

	ts, err = Text("2020-01-01T00:00:10Z").AsTimestamp()
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Second())

	_, err = Text("not a time").AsTimestamp()
	assert.Error(t, err)

	v, err := Text("12").Convert(KindInt)
	require.NoError(t, err)
	assert.Equal(t, Int(12), v)

	v, err = Null().Convert(KindFloat)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCompare(t *testing.T) {
	c, err := Compare(Int(1), Float(1.5))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(Text("b"), Text("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err = Compare(Timestamp(t0), Timestamp(t0))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = Compare(Text("a"), Int(1))
	assert.Error(t, err)

	assert.True(t, Int(2).Equal(Float(2)))
	assert.False(t, Int(2).Equal(Text("2")))
}

func TestValueKey(t *testing.T) {
	assert.NotEqual(t, Int(1).Key(), Text("1").Key())
	assert.Equal(t, Text("ORCL").Key(), Text("ORCL").Key())
	assert.Equal(t, "n:", Null().Key())
}

func TestValueMemSize(t *testing.T) {
	assert.Greater(t, Text("abcdef").MemSize(), Text("").MemSize())
	assert.Equal(t, Int(1).MemSize(), Float(1).MemSize())
}
