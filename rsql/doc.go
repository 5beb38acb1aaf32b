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
Package rsql parses the pipeline DDL into a pipeline.PipelineGraph.

A script is a sequence of CREATE statements separated by semicolons.
Objects must be created before they are referenced:

	CREATE SOURCE STREAM source_trade (
		ts TIMESTAMP NOT NULL ROWTIME,
		ticker TEXT NOT NULL,
		amount INTEGER NOT NULL
	);
	CREATE SINK STREAM sink_avg (
		ts TIMESTAMP NOT NULL ROWTIME,
		ticker TEXT NOT NULL,
		avg_amount FLOAT
	);
	CREATE PUMP pu_avg AS
		INSERT INTO sink_avg (ts, ticker, avg_amount)
		SELECT STREAM window_start, source_trade.ticker, AVG(source_trade.amount)
		FROM source_trade
		GROUP BY source_trade.ticker
		FIXED WINDOW DURATION_SECS(10), DURATION_SECS(0);
	CREATE SOURCE READER tcp_trade FOR source_trade
		TYPE NET_SERVER OPTIONS (PROTOCOL 'TCP', PORT '9876');
	CREATE SINK WRITER q_avg FOR sink_avg
		TYPE IN_MEMORY_QUEUE OPTIONS (NAME 'q_avg');

# Expressions

WHERE conditions, select items and GROUP BY keys are SQL expressions
translated to the expression engine used by the condition package:
= becomes ==, <> becomes !=, AND/OR/NOT become &&, || and not, IS [NOT]
NULL compares against nil and string literals become double-quoted.
Function names are lower-cased, so UPPER(ticker) calls upper.

# Windows

A pump with FIXED WINDOW length, delay or SLIDING WINDOW length, period,
delay must carry a GROUP BY key and exactly one aggregate (COUNT, SUM,
AVG, MIN or MAX). Its select items may reference window_start and
window_end. Durations are written DURATION_MILLIS(n), DURATION_SECS(n),
DURATION_MINS(n) or as a Go duration string such as '10s'.

Syntax errors are *ParseError values carrying line and column and match
errs.ErrSQLSyntax. Semantic errors such as unknown streams match
errs.ErrSQLSemantic.
*/
package rsql
