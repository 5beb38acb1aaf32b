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
Package aggregator provides the per-pane aggregation of windowed pumps.

A GroupAggregator keeps one accumulator per group key. Groups are
reported in first-seen order so window output is deterministic.

	ga, _ := aggregator.NewGroupAggregator(aggregator.Avg)
	_ = ga.Add(types.Text("ORCL"), types.Int(100))
	_ = ga.Add(types.Text("ORCL"), types.Int(300))
	for _, r := range ga.Results() {
		fmt.Println(r.Group, r.Value) // ORCL 200
	}

# Built-in Functions

	COUNT  number of non-NULL values, INTEGER
	SUM    INTEGER while every input is an integer, FLOAT otherwise
	AVG    FLOAT
	MIN    smallest value of comparable kinds
	MAX    largest value of comparable kinds

NULL inputs are skipped. SUM, AVG, MIN and MAX over a group that only saw
NULLs yield NULL; COUNT yields 0.

# Custom Aggregators

Register adds an accumulator under a new name. ParseAggregateType and the
DDL parser accept registered names:

	aggregator.Register("product", func() aggregator.AggregatorFunction {
		return &ProductAggregator{}
	})
*/
package aggregator
