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

package pumpsql

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rulego/pumpsql/logger"
)

// Option 表示对PumpSQL默认行为的修改配置。
// 通过函数式选项模式，用户可以灵活地配置日志和指标输出。
type Option func(*Pumpsql)

// WithLogger 设置自定义日志记录器。
// 允许用户提供自己的日志实现，支持不同的日志后端和格式。
//
// 参数:
//   - log: 实现了logger.Logger接口的日志记录器
//
// 示例:
//
//	customLogger := logger.NewLogger(logger.DEBUG, os.Stderr)
//	p, err := pumpsql.Open(types.DefaultConfig(), pumpsql.WithLogger(customLogger))
func WithLogger(log logger.Logger) Option {
	return func(p *Pumpsql) {
		logger.SetDefault(log)
	}
}

// WithLogLevel 设置日志级别。
//
// 参数:
//   - level: 日志级别，可选值：DEBUG, INFO, WARN, ERROR, OFF
func WithLogLevel(level logger.Level) Option {
	return func(p *Pumpsql) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithLogOutput 设置日志输出目标。
//
// 参数:
//   - output: 日志输出目标，如os.Stdout、os.Stderr或文件
//   - level: 日志级别
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(p *Pumpsql) {
		logger.SetDefault(logger.NewLogger(level, output))
	}
}

// WithDiscardLog 禁用所有日志输出。
func WithDiscardLog() Option {
	return func(p *Pumpsql) {
		logger.SetDefault(logger.NewDiscardLogger())
	}
}

// WithRegisterer 将引擎指标注册到指定的Prometheus注册器。
// 未设置时引擎使用私有注册表，可通过Gatherer获取。
//
// 示例:
//
//	p, err := pumpsql.Open(cfg, pumpsql.WithRegisterer(prometheus.DefaultRegisterer))
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Pumpsql) {
		p.registerer = reg
	}
}
