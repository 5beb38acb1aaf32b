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

// Package timex holds epoch-aligned time arithmetic shared by the window
// engine and the datetime functions.
package timex

import (
	"time"
)

// Floor aligns t down to a multiple of d since the Unix epoch. The result
// is in UTC. Times before the epoch floor towards negative infinity.
func Floor(t time.Time, d time.Duration) time.Time {
	if d <= 0 {
		return t.UTC()
	}
	n := t.UnixNano()
	m := n % int64(d)
	if m < 0 {
		m += int64(d)
	}
	return time.Unix(0, n-m).UTC()
}

// Ceil aligns t up to a multiple of d since the Unix epoch
func Ceil(t time.Time, d time.Duration) time.Time {
	f := Floor(t, d)
	if d <= 0 || f.Equal(t) {
		return f
	}
	return f.Add(d)
}
