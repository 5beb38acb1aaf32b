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

package aggregator

import (
	"math/rand"
	"testing"

	"github.com/rulego/pumpsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func addAll(t *testing.T, fn AggregatorFunction, values ...types.Value) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, fn.Add(v))
	}
}

func TestBuiltinAggregators(t *testing.T) {
	values := []types.Value{types.Int(100), types.Null(), types.Int(400), types.Int(100)}

	tests := []struct {
		aggType AggregateType
		want    types.Value
	}{
		{Count, types.Int(3)},
		{Sum, types.Int(600)},
		{Avg, types.Float(200)},
		{Min, types.Int(100)},
		{Max, types.Int(400)},
	}
	for _, tt := range tests {
		t.Run(string(tt.aggType), func(t *testing.T) {
			fn, err := CreateBuiltinAggregator(tt.aggType)
			require.NoError(t, err)
			addAll(t, fn, values...)
			assert.True(t, tt.want.Equal(fn.Result()), "got %s", fn.Result())
		})
	}
}

func TestEmptyAggregators(t *testing.T) {
	for _, typ := range []AggregateType{Sum, Avg, Min, Max} {
		fn, err := CreateBuiltinAggregator(typ)
		require.NoError(t, err)
		assert.True(t, fn.Result().IsNull(), typ)
	}
	fn, _ := CreateBuiltinAggregator(Count)
	assert.Equal(t, types.Int(0), fn.Result())
}

func TestSumPromotesToFloat(t *testing.T) {
	fn := &SumAggregator{}
	addAll(t, fn, types.Int(1), types.Float(0.5), types.Int(2))
	assert.Equal(t, types.Float(3.5), fn.Result())
}

func TestMinMaxText(t *testing.T) {
	lo := NewMinAggregator()
	hi := NewMaxAggregator()
	for _, s := range []string{"ORCL", "GOOGL", "MSFT"} {
		require.NoError(t, lo.Add(types.Text(s)))
		require.NoError(t, hi.Add(types.Text(s)))
	}
	assert.Equal(t, types.Text("GOOGL"), lo.Result())
	assert.Equal(t, types.Text("ORCL"), hi.Result())

	assert.Error(t, lo.Add(types.Int(1)))
}

func TestAvgRejectsText(t *testing.T) {
	fn := &AvgAggregator{}
	assert.Error(t, fn.Add(types.Text("x")))
}

func TestStreamingMeanMatchesArithmeticMean(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	xs := make([]float64, 1000)
	fn := &AvgAggregator{}
	for i := range xs {
		xs[i] = r.Float64()*1000 - 500
		require.NoError(t, fn.Add(types.Float(xs[i])))
	}
	got, err := fn.Result().AsFloat64()
	require.NoError(t, err)
	assert.InDelta(t, stat.Mean(xs, nil), got, 1e-9)
}

func TestParseAggregateType(t *testing.T) {
	typ, err := ParseAggregateType(" AVG ")
	require.NoError(t, err)
	assert.Equal(t, Avg, typ)

	_, err = ParseAggregateType("median")
	assert.Error(t, err)

	Register("last", func() AggregatorFunction { return &lastAggregator{} })
	typ, err = ParseAggregateType("LAST")
	require.NoError(t, err)
	fn, err := CreateBuiltinAggregator(typ)
	require.NoError(t, err)
	addAll(t, fn, types.Int(1), types.Int(9))
	assert.Equal(t, types.Int(9), fn.Result())
}

type lastAggregator struct {
	v types.Value
}

func (l *lastAggregator) New() AggregatorFunction { return &lastAggregator{} }
func (l *lastAggregator) Add(v types.Value) error { l.v = v; return nil }
func (l *lastAggregator) Result() types.Value     { return l.v }
