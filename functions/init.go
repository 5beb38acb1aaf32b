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

import "time"

func init() {
	registerBuiltinFunctions()
}

// registerBuiltinFunctions 注册内置函数
func registerBuiltinFunctions() {
	builtins := []Function{
		// 时间日期函数
		NewDurationFunction("duration_millis", time.Millisecond),
		NewDurationFunction("duration_secs", time.Second),
		NewDurationFunction("duration_mins", time.Minute),
		NewFloorTimeFunction(),
		NewUnixMillisFunction(),

		// 条件函数
		NewCoalesceFunction(),
		NewNullIfFunction(),

		// 字符串函数
		NewSubstringFunction(),
		NewConcatWsFunction(),

		// 数学函数
		NewPowerFunction(),
		NewModFunction(),
		NewSqrtFunction(),
	}
	for _, fn := range builtins {
		_ = Register(fn)
	}
}
