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

package functions

import (
	"fmt"
	"time"

	"github.com/rulego/pumpsql/types"
	"github.com/rulego/pumpsql/utils/timex"
	"github.com/spf13/cast"
)

// DurationFunction DURATION_MILLIS/DURATION_SECS/DURATION_MINS(n)
type DurationFunction struct {
	*BaseFunction
	unit time.Duration
}

func NewDurationFunction(name string, unit time.Duration) *DurationFunction {
	return &DurationFunction{
		BaseFunction: NewBaseFunction(name, TypeDateTime, fmt.Sprintf("n * %s as a duration", unit), 1, 1),
		unit:         unit,
	}
}

func (f *DurationFunction) Execute(args []interface{}) (interface{}, error) {
	n, err := cast.ToInt64E(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return time.Duration(n) * f.unit, nil
}

// FloorTimeFunction FLOOR_TIME(ts, duration) 将时间向下对齐到 duration 的整数倍
type FloorTimeFunction struct {
	*BaseFunction
}

func NewFloorTimeFunction() *FloorTimeFunction {
	return &FloorTimeFunction{
		BaseFunction: NewBaseFunction("floor_time", TypeDateTime, "align a timestamp down to a multiple of a duration", 2, 2),
	}
}

func (f *FloorTimeFunction) Execute(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	ts, err := toTime(args[0])
	if err != nil {
		return nil, fmt.Errorf("floor_time: %w", err)
	}
	d, err := toDuration(args[1])
	if err != nil {
		return nil, fmt.Errorf("floor_time: %w", err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("floor_time: duration must be positive, got %s", d)
	}
	return timex.Floor(ts, d), nil
}

// UnixMillisFunction UNIX_MILLIS(ts) 返回毫秒时间戳
type UnixMillisFunction struct {
	*BaseFunction
}

func NewUnixMillisFunction() *UnixMillisFunction {
	return &UnixMillisFunction{
		BaseFunction: NewBaseFunction("unix_millis", TypeDateTime, "milliseconds since the Unix epoch", 1, 1),
	}
}

func (f *UnixMillisFunction) Execute(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	ts, err := toTime(args[0])
	if err != nil {
		return nil, fmt.Errorf("unix_millis: %w", err)
	}
	return ts.UnixMilli(), nil
}

// toTime 接受 time.Time 或 TIMESTAMP 文本
func toTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return types.Text(t).AsTimestamp()
	}
	return cast.ToTimeE(v)
}

// toDuration 接受 time.Duration，数值按秒解释
func toDuration(v interface{}) (time.Duration, error) {
	if d, ok := v.(time.Duration); ok {
		return d, nil
	}
	if s, ok := v.(string); ok {
		return time.ParseDuration(s)
	}
	secs, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
