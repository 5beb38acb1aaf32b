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

package memory

import (
	"testing"

	"github.com/rulego/pumpsql/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultMachine() *StateMachine {
	return NewStateMachine(NewThresholds(types.DefaultConfig().Memory))
}

func TestNewThresholds(t *testing.T) {
	th := NewThresholds(types.DefaultConfig().Memory)
	assert.Equal(t, Thresholds{
		ModerateToSevere: 6_000_000,
		SevereToCritical: 9_500_000,
		CriticalToSevere: 8_000_000,
		SevereToModerate: 4_000_000,
	}, th)

	small := NewThresholds(types.MemoryConfig{
		UpperLimitBytes:         150,
		ModerateToSeverePercent: 60,
		SevereToCriticalPercent: 95,
		CriticalToSeverePercent: 80,
		SevereToModeratePercent: 40,
	})
	assert.Equal(t, uint64(90), small.ModerateToSevere)
	assert.Equal(t, uint64(142), small.SevereToCritical)
}

func TestStateMachineScenario(t *testing.T) {
	m := defaultMachine()
	var purges int
	count := func(ts []Transition) {
		for _, tr := range ts {
			if tr.EntersCritical() {
				purges++
			}
		}
	}

	ts := m.Update(7_000_000)
	assert.Equal(t, []Transition{{Moderate, Severe}}, ts)
	count(ts)

	ts = m.Update(9_600_000)
	assert.Equal(t, []Transition{{Severe, Critical}}, ts)
	count(ts)
	assert.Equal(t, Critical, m.State())

	ts = m.Update(3_000_000)
	assert.Equal(t, []Transition{{Critical, Severe}, {Severe, Moderate}}, ts)
	count(ts)

	assert.Equal(t, 1, purges)
	assert.Equal(t, Moderate, m.State())
}

func TestStateMachineHysteresis(t *testing.T) {
	m := defaultMachine()
	require.Len(t, m.Update(6_000_001), 1)

	// Between the two thresholds the state holds in both directions
	assert.Empty(t, m.Update(5_000_000))
	assert.Empty(t, m.Update(4_000_000))
	assert.Equal(t, Severe, m.State())
	assert.Equal(t, []Transition{{Severe, Moderate}}, m.Update(3_999_999))

	// Exactly at an up threshold does not transit
	assert.Empty(t, m.Update(6_000_000))
}

func TestStateMachineChainsUpward(t *testing.T) {
	m := defaultMachine()
	ts := m.Update(9_600_000)
	assert.Equal(t, []Transition{{Moderate, Severe}, {Severe, Critical}}, ts)
	assert.True(t, ts[1].EntersCritical())
	assert.Empty(t, m.Update(9_900_000))
	// Critical holds until below critical_to_severe
	assert.Empty(t, m.Update(8_000_000))
	assert.Equal(t, []Transition{{Critical, Severe}}, m.Update(7_999_999))
}

func TestStateMachineReset(t *testing.T) {
	m := defaultMachine()
	m.Update(9_600_000)
	m.Reset()
	assert.Equal(t, Moderate, m.State())
	assert.Empty(t, m.Update(0))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "moderate", Moderate.String())
	assert.Equal(t, "critical", Critical.String())
	assert.Equal(t, "severe->critical", Transition{Severe, Critical}.String())
}
