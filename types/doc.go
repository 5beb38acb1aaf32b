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
Package types provides the value model and configuration of the pipeline
runtime.

# Values and Rows

Value is a tagged SQL value: NULL, INTEGER, FLOAT, TEXT, BOOLEAN or
TIMESTAMP. Rows hold one value per stream column plus an optional event
time (rowtime). Rows without a rowtime column are stamped with their
arrival time.

	row, err := types.NewRow(types.ColumnValues{
		"ts":     types.Timestamp(ts),
		"ticker": types.Text("ORCL"),
		"amount": types.Int(100),
	}, "ts")

Row.MemSize estimates the bytes a row occupies in a queue. Queue and
memory accounting are built on it.

A Tuple wraps a row together with the stream it came from and exposes the
expression environment used by selection and projection. Columns are
reachable bare (amount) and qualified by stream (trade.amount).

A TimeSlot is the half-open interval [Start, End) of a window pane.

# Configuration

Config gathers every tunable of the runtime:

	[worker]
	n_generic_worker_threads = 2
	n_source_worker_threads  = 2
	idle_sleep_msec          = 1

	[memory]
	upper_limit_bytes          = 10_000_000
	moderate_to_severe_percent = 60
	severe_to_critical_percent = 95
	critical_to_severe_percent = 80
	severe_to_moderate_percent = 40

	[scheduler]
	strategy = "flow_efficient"

	[queue]
	max_rows = 100_000

DefaultConfig returns the defaults above. ConfigFromTOML overlays a TOML
document and ConfigFromEnv overlays PUMPSQL_* environment variables such
as PUMPSQL_MEMORY_UPPER_LIMIT_BYTES. Validate rejects inconsistent
thresholds with an errs.ErrConfig error.
*/
package types
