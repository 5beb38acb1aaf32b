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

/*
Package functions provides the scalar SQL functions callable from pump
expressions.

Functions are registered in a global registry and bound into every
expression compiled by the condition package. Names are case-insensitive;
the DDL parser lower-cases function calls, so FLOOR_TIME(ts,
DURATION_SECS(10)) resolves to floor_time.

# Built-in Functions

	datetime:    duration_millis, duration_secs, duration_mins, floor_time, unix_millis
	conditional: coalesce, nullif
	string:      substring, concat_ws
	math:        power, mod, sqrt

The expression engine's own builtins (upper, lower, trim, abs, round,
len and others) remain available.

# Custom Functions

	err := functions.RegisterCustomFunction("fahrenheit", "Celsius to Fahrenheit", 1, 1,
		func(args []interface{}) (interface{}, error) {
			c, err := cast.ToFloat64E(args[0])
			if err != nil {
				return nil, err
			}
			return c*1.8 + 32, nil
		})

A custom function must be registered before the pipeline using it is
applied.
*/
package functions
