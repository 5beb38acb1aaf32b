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

// Package memory tracks the memory pressure of a running pipeline.
//
// The state machine has three states with hysteresis between them:
//
//	Moderate --(> moderate_to_severe)--> Severe --(> severe_to_critical)--> Critical
//	Moderate <--(< severe_to_moderate)-- Severe <--(< critical_to_severe)-- Critical
//
// Thresholds are percentages of the configured byte ceiling. One call to
// Update may cross several thresholds at once, in which case every
// intermediate transition is reported in order.
package memory

import (
	"sync"

	"github.com/rulego/pumpsql/types"
)

// State 内存状态
type State int

const (
	Moderate State = iota
	Severe
	Critical
)

func (s State) String() string {
	switch s {
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Transition is one state change
type Transition struct {
	From State
	To   State
}

// EntersCritical reports whether the transition starts a purge
func (t Transition) EntersCritical() bool {
	return t.To == Critical && t.From != Critical
}

func (t Transition) String() string {
	return t.From.String() + "->" + t.To.String()
}

// Thresholds in bytes
type Thresholds struct {
	ModerateToSevere uint64
	SevereToCritical uint64
	CriticalToSevere uint64
	SevereToModerate uint64
}

// NewThresholds converts percentages of the ceiling into byte thresholds
func NewThresholds(cfg types.MemoryConfig) Thresholds {
	pct := func(p uint8) uint64 {
		return cfg.UpperLimitBytes/100*uint64(p) + cfg.UpperLimitBytes%100*uint64(p)/100
	}
	return Thresholds{
		ModerateToSevere: pct(cfg.ModerateToSeverePercent),
		SevereToCritical: pct(cfg.SevereToCriticalPercent),
		CriticalToSevere: pct(cfg.CriticalToSeverePercent),
		SevereToModerate: pct(cfg.SevereToModeratePercent),
	}
}

// StateMachine is safe for concurrent use
type StateMachine struct {
	mu         sync.Mutex
	state      State
	thresholds Thresholds
}

// NewStateMachine starts in Moderate
func NewStateMachine(th Thresholds) *StateMachine {
	return &StateMachine{state: Moderate, thresholds: th}
}

// State returns the current state
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Thresholds returns the byte thresholds in use
func (m *StateMachine) Thresholds() Thresholds {
	return m.thresholds
}

// Update feeds the latest total queue bytes and returns the transitions it
// caused, oldest first. An empty result means the state did not change.
func (m *StateMachine) Update(bytes uint64) []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transition
	for {
		next, changed := m.next(bytes)
		if !changed {
			return out
		}
		out = append(out, Transition{From: m.state, To: next})
		m.state = next
	}
}

func (m *StateMachine) next(bytes uint64) (State, bool) {
	th := m.thresholds
	switch m.state {
	case Moderate:
		if bytes > th.ModerateToSevere {
			return Severe, true
		}
	case Severe:
		if bytes > th.SevereToCritical {
			return Critical, true
		}
		if bytes < th.SevereToModerate {
			return Moderate, true
		}
	case Critical:
		if bytes < th.CriticalToSevere {
			return Severe, true
		}
	}
	return m.state, false
}

// Reset returns to Moderate without reporting a transition
func (m *StateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Moderate
}
