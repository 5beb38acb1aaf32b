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
	"testing"

	"github.com/rulego/pumpsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupAggregator(t *testing.T) {
	ga, err := NewGroupAggregator(Avg)
	require.NoError(t, err)

	require.NoError(t, ga.Add(types.Text("GOOGL"), types.Int(100)))
	require.NoError(t, ga.Add(types.Text("ORCL"), types.Int(100)))
	require.NoError(t, ga.Add(types.Text("ORCL"), types.Int(400)))

	results := ga.Results()
	require.Len(t, results, 2)
	assert.Equal(t, types.Text("GOOGL"), results[0].Group)
	assert.Equal(t, types.Float(100), results[0].Result)
	assert.Equal(t, types.Text("ORCL"), results[1].Group)
	assert.Equal(t, types.Float(250), results[1].Result)

	assert.Equal(t, 2, ga.Len())
	assert.Greater(t, ga.MemSize(), 0)
}

func TestGroupAggregatorUnknownType(t *testing.T) {
	_, err := NewGroupAggregator(AggregateType("nope"))
	assert.Error(t, err)
}

func TestGroupAggregatorRejectedValue(t *testing.T) {
	ga, err := NewGroupAggregator(Avg)
	require.NoError(t, err)
	require.NoError(t, ga.Add(types.Text("GOOGL"), types.Int(100)))

	assert.Error(t, ga.Check(types.Text("BAD"), types.Text("abc")))
	assert.Error(t, ga.Add(types.Text("BAD"), types.Text("abc")))
	assert.Equal(t, 1, ga.Len())
	memSize := ga.MemSize()

	// 已有分组的失败也不改变结果
	assert.Error(t, ga.Add(types.Text("GOOGL"), types.Text("abc")))
	assert.Equal(t, memSize, ga.MemSize())
	require.Len(t, ga.Results(), 1)
	assert.Equal(t, types.Float(100), ga.Results()[0].Result)
}

func TestGroupAggregatorCheckUsesGroupState(t *testing.T) {
	ga, err := NewGroupAggregator(Max)
	require.NoError(t, err)
	require.NoError(t, ga.Add(types.Text("a"), types.Int(1)))

	// MAX只在与已有值比较时才会失败
	assert.NoError(t, ga.Check(types.Text("b"), types.Text("x")))
	assert.Error(t, ga.Check(types.Text("a"), types.Text("x")))
	assert.NoError(t, ga.Check(types.Text("a"), types.Float(2.5)))
	assert.NoError(t, ga.Check(types.Text("a"), types.Null()))
	assert.Equal(t, types.Int(1), ga.Results()[0].Result)
}
