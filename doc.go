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
Package pumpsql 是一个进程内的流式SQL执行引擎。

管道由流(stream)、泵(pump)、源读取器(source reader)和汇写入器(sink writer)组成。
泵是持续运行的查询：从上游流读取行，经过WHERE过滤、时间窗口聚合和投影后写入下游流。
引擎将管道编译为任务图，由固定数量的工作线程驱动执行，并根据队列占用的内存在
Moderate、Severe、Critical三种状态之间切换，在Critical状态下清空窗口状态以释放内存。

# 核心特性

• 任务图 - 每个(消费者, 流)对应一个独立队列，行在多个下游之间共享
• 时间窗口 - 固定窗口与滑动窗口，基于水位线的迟到数据策略
• 增量聚合 - COUNT, SUM, AVG, MIN, MAX 按分组增量计算
• 内存状态机 - 带滞回的三级内存压力状态，进入Critical时清理窗口
• 外部连接 - TCP客户端/服务端JSON行源、TCP/HTTP汇、进程内内存队列

# 入门示例

	cfg := types.DefaultConfig()
	p, err := pumpsql.Open(cfg)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	g := pipeline.NewPipelineGraph()
	_ = g.AddStream(pipeline.StreamModel{
		Name: "source_trade",
		Columns: []pipeline.ColumnDefinition{
			{Name: "ts", Type: pipeline.SQLTypeTimestamp},
			{Name: "ticker", Type: pipeline.SQLTypeText},
			{Name: "amount", Type: pipeline.SQLTypeInteger},
		},
		RowtimeColumn: "ts",
	})
	// ... AddStream("sink_avg"), AddPump("pu_avg"), AddSourceReader, AddSinkWriter

	if err := p.Apply(g); err != nil {
		panic(err)
	}

	foreign.GetInMemoryQueue("trade").Push([]byte(`{"ts":"2020-01-01 00:00:00","ticker":"ORCL","amount":100}`))

# SQL管道定义

除了直接构造PipelineGraph，也可以用DDL描述整个管道，由ApplySQL解析并应用：

	err := p.ApplySQL(`
		CREATE SOURCE STREAM trade (ts TIMESTAMP NOT NULL ROWTIME, ticker TEXT NOT NULL, amount INTEGER NOT NULL);
		CREATE SINK STREAM avg_amount (ts TIMESTAMP NOT NULL ROWTIME, ticker TEXT NOT NULL, avg_amount FLOAT);
		CREATE PUMP avg_pump AS INSERT INTO avg_amount (ts, ticker, avg_amount)
			SELECT STREAM window_start, trade.ticker, AVG(trade.amount)
			FROM trade GROUP BY trade.ticker
			FIXED WINDOW DURATION_SECS(10), DURATION_SECS(0);
		CREATE SOURCE READER trade_reader FOR trade TYPE IN_MEMORY_QUEUE OPTIONS (NAME 'trade');
		CREATE SINK WRITER avg_writer FOR avg_amount TYPE IN_MEMORY_QUEUE OPTIONS (NAME 'avg');
	`)

语法错误返回 *rsql.ParseError(errors.Is(err, errs.ErrSQLSyntax) 为真)，携带行号与列号。

# 窗口语义

水位线记录已见到的最大rowtime，阈值为 最大rowtime - allowed_delay。
rowtime早于阈值的行被丢弃并计入too_late指标；close_at不晚于阈值的窗格被关闭并输出。
同一次分发产生的输出按窗格开始时间排序，同一窗格内按分组首次出现的顺序排序。

# 配置

配置可通过TOML文件(types.ConfigFromTOML)或环境变量(types.ConfigFromEnv，前缀PUMPSQL)覆盖默认值，
例如 PUMPSQL_MEMORY_UPPER_LIMIT_BYTES=50000000。
*/
package pumpsql
