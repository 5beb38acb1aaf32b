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
	"fmt"
	"time"
)

// TimeSlot is the half-open interval [Start, End)
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

func NewTimeSlot(start time.Time, length time.Duration) TimeSlot {
	return TimeSlot{Start: start, End: start.Add(length)}
}

// Contains checks if given time is within slot range
func (ts TimeSlot) Contains(t time.Time) bool {
	return !t.Before(ts.Start) && t.Before(ts.End)
}

// Length returns End - Start
func (ts TimeSlot) Length() time.Duration {
	return ts.End.Sub(ts.Start)
}

func (ts TimeSlot) String() string {
	return fmt.Sprintf("[%s, %s)", ts.Start.Format(TimestampLayout), ts.End.Format(TimestampLayout))
}
