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

package window

import (
	"sort"
	"time"

	"github.com/rulego/pumpsql/aggregator"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
	"github.com/rulego/pumpsql/utils/timex"
)

// Pane is one window instance [open_at, close_at) with its group states
type Pane struct {
	slot   types.TimeSlot
	groups *aggregator.GroupAggregator
}

func newPane(openAt time.Time, length time.Duration, fn aggregator.AggregateType) (*Pane, error) {
	ga, err := aggregator.NewGroupAggregator(fn)
	if err != nil {
		return nil, err
	}
	return &Pane{slot: types.NewTimeSlot(openAt, length), groups: ga}, nil
}

func (p *Pane) OpenAt() time.Time    { return p.slot.Start }
func (p *Pane) CloseAt() time.Time   { return p.slot.End }
func (p *Pane) Slot() types.TimeSlot { return p.slot }
func (p *Pane) MemSize() int         { return paneOverhead + p.groups.MemSize() }

const paneOverhead = 96

// IsAcceptable reports whether rowtime falls into the pane
func (p *Pane) IsAcceptable(rowtime time.Time) bool {
	return p.slot.Contains(rowtime)
}

// ShouldClose reports whether the pane is complete at threshold
func (p *Pane) ShouldClose(threshold time.Time) bool {
	return !p.slot.End.After(threshold)
}

// Panes keeps the open panes of a window ordered by open time
type Panes struct {
	panes []*Pane
	param pipeline.WindowParameter
	aggFn aggregator.AggregateType
}

func newPanes(param pipeline.WindowParameter, fn aggregator.AggregateType) *Panes {
	return &Panes{param: param, aggFn: fn}
}

// ValidOpenAts returns, ascending, the open times of every pane that
// must contain rowtime
func (ps *Panes) ValidOpenAts(rowtime time.Time) []time.Time {
	length, period := ps.param.Length, ps.param.Period()
	leftmost := timex.Floor(rowtime.Add(-length), period).Add(period)
	rightmost := timex.Floor(rowtime, period)
	var out []time.Time
	for t := leftmost; !t.After(rightmost); t = t.Add(period) {
		out = append(out, t)
	}
	return out
}

// PanesToDispatch returns the panes rowtime belongs to, creating the
// missing ones in open time order
func (ps *Panes) PanesToDispatch(rowtime time.Time) ([]*Pane, error) {
	openAts := ps.ValidOpenAts(rowtime)
	out := make([]*Pane, 0, len(openAts))
	i := 0
	for _, openAt := range openAts {
		for i < len(ps.panes) && ps.panes[i].OpenAt().Before(openAt) {
			i++
		}
		if i < len(ps.panes) && ps.panes[i].OpenAt().Equal(openAt) {
			out = append(out, ps.panes[i])
			continue
		}
		pane, err := newPane(openAt, ps.param.Length, ps.aggFn)
		if err != nil {
			return nil, err
		}
		ps.panes = append(ps.panes, nil)
		copy(ps.panes[i+1:], ps.panes[i:])
		ps.panes[i] = pane
		out = append(out, pane)
	}
	return out, nil
}

// Lookup returns the open pane starting at openAt, or nil
func (ps *Panes) Lookup(openAt time.Time) *Pane {
	i := sort.Search(len(ps.panes), func(i int) bool {
		return !ps.panes[i].OpenAt().Before(openAt)
	})
	if i < len(ps.panes) && ps.panes[i].OpenAt().Equal(openAt) {
		return ps.panes[i]
	}
	return nil
}

// RemovePanesToClose detaches every pane complete at threshold
func (ps *Panes) RemovePanesToClose(threshold time.Time) []*Pane {
	n := sort.Search(len(ps.panes), func(i int) bool {
		return !ps.panes[i].ShouldClose(threshold)
	})
	if n == 0 {
		return nil
	}
	closed := make([]*Pane, n)
	copy(closed, ps.panes[:n])
	ps.panes = append(ps.panes[:0], ps.panes[n:]...)
	return closed
}

// Len returns the number of open panes
func (ps *Panes) Len() int {
	return len(ps.panes)
}

// MemSize estimates the bytes held by every open pane
func (ps *Panes) MemSize() int {
	size := 0
	for _, p := range ps.panes {
		size += p.MemSize()
	}
	return size
}

// Purge drops every pane
func (ps *Panes) Purge() {
	ps.panes = nil
}
