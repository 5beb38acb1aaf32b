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
Package window implements event-time group aggregation windows for pumps.

A window is a sequence of panes. Each pane covers the half-open interval
[open_at, close_at) and keeps one aggregate per group key. Rows are folded
into every pane their rowtime belongs to as soon as they arrive, so a
window never buffers rows.

# Window Types

• Fixed Windows - Non-overlapping panes of LENGTH, aligned to the Unix epoch
• Sliding Windows - Panes of LENGTH opened every PERIOD

	fixed := pipeline.NewFixedWindow(10*time.Second, time.Second)
	sliding := pipeline.NewSlidingWindow(10*time.Second, 5*time.Second, time.Second)

# Watermark

The watermark is the largest rowtime seen so far. With an allowed delay d
the threshold is watermark - d:

• A row whose rowtime is before the threshold is too late and dropped
• A pane whose close_at is at or before the threshold is closed and emitted

Before the first row nothing is late.

# Dispatch

	w, err := window.NewAggrWindow(sliding, pipeline.GroupAggregateParameter{
		Function:     aggregator.Avg,
		Aggregated:   "amount",
		AggrLabel:    "avg_amount",
		GroupBy:      "ticker",
		GroupByLabel: "ticker",
	})
	out, flow, err := w.Dispatch(tuple)

Dispatch returns the outputs of every pane the row completes, ordered by
open time and then by first appearance of the group in the pane, together
with the change of bytes held by the window.

# Purge

Purge discards every pane without emitting. The memory state machine
calls it when memory usage becomes critical.
*/
package window
