package aggregator

import (
	"github.com/rulego/pumpsql/types"
)

// GroupResult is the aggregate of one group
type GroupResult struct {
	Group  types.Value
	Result types.Value
}

type groupState struct {
	group types.Value
	fn    AggregatorFunction
}

// GroupAggregator accumulates one aggregate per group key. Groups are
// reported in the order they were first seen.
type GroupAggregator struct {
	aggType AggregateType
	groups  map[string]*groupState
	order   []string
	memSize int
}

const groupOverhead = 64

// NewGroupAggregator creates an empty aggregator for aggType
func NewGroupAggregator(aggType AggregateType) (*GroupAggregator, error) {
	if _, err := CreateBuiltinAggregator(aggType); err != nil {
		return nil, err
	}
	return &GroupAggregator{
		aggType: aggType,
		groups:  make(map[string]*groupState),
	}, nil
}

// Add folds value into group
func (ga *GroupAggregator) Add(group, value types.Value) error {
	key := group.Key()
	st, ok := ga.groups[key]
	if !ok {
		fn, err := CreateBuiltinAggregator(ga.aggType)
		if err != nil {
			return err
		}
		if err := fn.Add(value); err != nil {
			return err
		}
		ga.groups[key] = &groupState{group: group, fn: fn}
		ga.order = append(ga.order, key)
		ga.memSize += groupOverhead + len(key) + group.MemSize()
		return nil
	}
	return st.fn.Add(value)
}

// Check reports whether Add(group, value) would fail. It does not change
// any group.
func (ga *GroupAggregator) Check(group, value types.Value) error {
	if st, ok := ga.groups[group.Key()]; ok {
		return CheckValue(st.fn, value)
	}
	fn, err := CreateBuiltinAggregator(ga.aggType)
	if err != nil {
		return err
	}
	return CheckValue(fn, value)
}

// Results returns one result per group in first-seen order
func (ga *GroupAggregator) Results() []GroupResult {
	out := make([]GroupResult, 0, len(ga.order))
	for _, key := range ga.order {
		st := ga.groups[key]
		out = append(out, GroupResult{Group: st.group, Result: st.fn.Result()})
	}
	return out
}

// Len returns the number of groups
func (ga *GroupAggregator) Len() int {
	return len(ga.order)
}

// MemSize estimates the bytes held by the group states
func (ga *GroupAggregator) MemSize() int {
	return ga.memSize
}
