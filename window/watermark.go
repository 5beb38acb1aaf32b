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
	"sync"
	"time"
)

// Watermark tracks the maximum event time seen by a window. Rows older
// than max - allowedDelay are too late; panes ending at or before that
// threshold are complete.
type Watermark struct {
	mu           sync.RWMutex
	maxRowtime   time.Time
	seen         bool
	allowedDelay time.Duration
}

// NewWatermark creates a watermark that has not seen any row yet
func NewWatermark(allowedDelay time.Duration) *Watermark {
	return &Watermark{allowedDelay: allowedDelay}
}

// Update advances the watermark to rowtime. It never moves backwards.
func (wm *Watermark) Update(rowtime time.Time) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if !wm.seen || rowtime.After(wm.maxRowtime) {
		wm.maxRowtime = rowtime
		wm.seen = true
	}
}

// Threshold returns max rowtime minus the allowed delay. ok is false
// before the first row.
func (wm *Watermark) Threshold() (threshold time.Time, ok bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	if !wm.seen {
		return time.Time{}, false
	}
	return wm.maxRowtime.Add(-wm.allowedDelay), true
}

// IsTooLate reports whether rowtime is older than the threshold
func (wm *Watermark) IsTooLate(rowtime time.Time) bool {
	threshold, ok := wm.Threshold()
	return ok && rowtime.Before(threshold)
}

// MaxRowtime returns the largest rowtime seen
func (wm *Watermark) MaxRowtime() (time.Time, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.maxRowtime, wm.seen
}

// AllowedDelay returns the configured lateness tolerance
func (wm *Watermark) AllowedDelay() time.Duration {
	return wm.allowedDelay
}
