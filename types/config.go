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
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/rulego/pumpsql/errs"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// PUMPSQL_MEMORY_UPPER_LIMIT_BYTES=20000000
const EnvPrefix = "PUMPSQL"

// Config 运行时配置
type Config struct {
	Worker       WorkerConfig       `toml:"worker" envconfig:"WORKER"`
	Memory       MemoryConfig       `toml:"memory" envconfig:"MEMORY"`
	Scheduler    SchedulerConfig    `toml:"scheduler" envconfig:"SCHEDULER"`
	Queue        QueueConfig        `toml:"queue" envconfig:"QUEUE"`
	SourceReader SourceReaderConfig `toml:"source_reader" envconfig:"SOURCE_READER"`
	SinkWriter   SinkWriterConfig   `toml:"sink_writer" envconfig:"SINK_WRITER"`
	Log          LogConfig          `toml:"log" envconfig:"LOG"`
}

// WorkerConfig 工作线程配置
type WorkerConfig struct {
	NGenericWorkerThreads uint16 `toml:"n_generic_worker_threads" envconfig:"N_GENERIC_WORKER_THREADS"`
	NSourceWorkerThreads  uint16 `toml:"n_source_worker_threads" envconfig:"N_SOURCE_WORKER_THREADS"`
	// Sleep of a worker whose last cycle found nothing to do
	IdleSleepMsec uint32 `toml:"idle_sleep_msec" envconfig:"IDLE_SLEEP_MSEC"`
}

// MemoryConfig 内存状态机配置
type MemoryConfig struct {
	UpperLimitBytes         uint64 `toml:"upper_limit_bytes" envconfig:"UPPER_LIMIT_BYTES"`
	ModerateToSeverePercent uint8  `toml:"moderate_to_severe_percent" envconfig:"MODERATE_TO_SEVERE_PERCENT"`
	SevereToCriticalPercent uint8  `toml:"severe_to_critical_percent" envconfig:"SEVERE_TO_CRITICAL_PERCENT"`
	CriticalToSeverePercent uint8  `toml:"critical_to_severe_percent" envconfig:"CRITICAL_TO_SEVERE_PERCENT"`
	SevereToModeratePercent uint8  `toml:"severe_to_moderate_percent" envconfig:"SEVERE_TO_MODERATE_PERCENT"`

	MemoryStateTransitionIntervalMsec           uint32 `toml:"memory_state_transition_interval_msec" envconfig:"MEMORY_STATE_TRANSITION_INTERVAL_MSEC"`
	PerformanceMetricsSummaryReportIntervalMsec uint32 `toml:"performance_metrics_summary_report_interval_msec" envconfig:"PERFORMANCE_METRICS_SUMMARY_REPORT_INTERVAL_MSEC"`
}

// SchedulerConfig 调度策略配置
type SchedulerConfig struct {
	// round_robin or flow_efficient. Severe and Critical memory states
	// always switch to the memory reducing strategy.
	Strategy string `toml:"strategy" envconfig:"STRATEGY"`
}

// QueueConfig bounds each row queue and window queue. Zero means unbounded.
type QueueConfig struct {
	MaxRows  int   `toml:"max_rows" envconfig:"MAX_ROWS"`
	MaxBytes int64 `toml:"max_bytes" envconfig:"MAX_BYTES"`
}

// SourceReaderConfig 源读取器配置
type SourceReaderConfig struct {
	NetConnectTimeoutMsec uint32 `toml:"net_connect_timeout_msec" envconfig:"NET_CONNECT_TIMEOUT_MSEC"`
	NetReadTimeoutMsec    uint32 `toml:"net_read_timeout_msec" envconfig:"NET_READ_TIMEOUT_MSEC"`
}

// SinkWriterConfig 汇写入器配置
type SinkWriterConfig struct {
	NetConnectTimeoutMsec uint32 `toml:"net_connect_timeout_msec" envconfig:"NET_CONNECT_TIMEOUT_MSEC"`
	NetWriteTimeoutMsec   uint32 `toml:"net_write_timeout_msec" envconfig:"NET_WRITE_TIMEOUT_MSEC"`
	HTTPRetryCount        int    `toml:"http_retry_count" envconfig:"HTTP_RETRY_COUNT"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `toml:"level" envconfig:"LEVEL"`
	Development bool   `toml:"development" envconfig:"DEVELOPMENT"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Worker: WorkerConfig{
			NGenericWorkerThreads: 2,
			NSourceWorkerThreads:  2,
			IdleSleepMsec:         1,
		},
		Memory: MemoryConfig{
			UpperLimitBytes:         10_000_000,
			ModerateToSeverePercent: 60,
			SevereToCriticalPercent: 95,
			CriticalToSeverePercent: 80,
			SevereToModeratePercent: 40,

			MemoryStateTransitionIntervalMsec:           10,
			PerformanceMetricsSummaryReportIntervalMsec: 10,
		},
		Scheduler: SchedulerConfig{
			Strategy: "flow_efficient",
		},
		Queue: QueueConfig{
			MaxRows:  100_000,
			MaxBytes: 0,
		},
		SourceReader: SourceReaderConfig{
			NetConnectTimeoutMsec: 1_000,
			NetReadTimeoutMsec:    100,
		},
		SinkWriter: SinkWriterConfig{
			NetConnectTimeoutMsec: 1_000,
			NetWriteTimeoutMsec:   100,
			HTTPRetryCount:        2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigFromTOML applies a TOML document on top of DefaultConfig.
// Unknown keys are rejected.
//
// Example:
//
//	cfg, err := types.ConfigFromTOML(`
//	[memory]
//	upper_limit_bytes = 20_000_000
//	`)
func ConfigFromTOML(overwrite string) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(strings.NewReader(overwrite))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errs.Wrapf(errs.ErrorTypeConfig, err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromEnv applies PUMPSQL_* environment variables on top of base
func ConfigFromEnv(base Config) (Config, error) {
	cfg := base
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errs.Wrapf(errs.ErrorTypeConfig, err, "failed to read environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and the hysteresis ordering of memory thresholds
func (c Config) Validate() error {
	if c.Worker.NGenericWorkerThreads < 1 {
		return errs.Newf(errs.ErrorTypeConfig, "worker.n_generic_worker_threads must be >= 1")
	}
	if c.Worker.NSourceWorkerThreads < 1 {
		return errs.Newf(errs.ErrorTypeConfig, "worker.n_source_worker_threads must be >= 1")
	}
	m := c.Memory
	if m.UpperLimitBytes == 0 {
		return errs.Newf(errs.ErrorTypeConfig, "memory.upper_limit_bytes must be > 0")
	}
	if !(m.SevereToModeratePercent < m.ModerateToSeverePercent &&
		m.ModerateToSeverePercent <= m.CriticalToSeverePercent &&
		m.CriticalToSeverePercent < m.SevereToCriticalPercent &&
		m.SevereToCriticalPercent <= 100) {
		return errs.Newf(errs.ErrorTypeConfig,
			"memory thresholds must satisfy severe_to_moderate(%d) < moderate_to_severe(%d) <= critical_to_severe(%d) < severe_to_critical(%d) <= 100",
			m.SevereToModeratePercent, m.ModerateToSeverePercent, m.CriticalToSeverePercent, m.SevereToCriticalPercent)
	}
	if m.MemoryStateTransitionIntervalMsec == 0 || m.PerformanceMetricsSummaryReportIntervalMsec == 0 {
		return errs.Newf(errs.ErrorTypeConfig, "memory intervals must be > 0")
	}
	switch c.Scheduler.Strategy {
	case "round_robin", "flow_efficient":
	default:
		return errs.Newf(errs.ErrorTypeConfig, "unknown scheduler.strategy %q", c.Scheduler.Strategy)
	}
	if c.Queue.MaxRows < 0 || c.Queue.MaxBytes < 0 {
		return errs.Newf(errs.ErrorTypeConfig, "queue bounds must not be negative")
	}
	if c.SourceReader.NetConnectTimeoutMsec == 0 || c.SourceReader.NetReadTimeoutMsec == 0 ||
		c.SinkWriter.NetConnectTimeoutMsec == 0 || c.SinkWriter.NetWriteTimeoutMsec == 0 {
		return errs.Newf(errs.ErrorTypeConfig, "net timeouts must be > 0")
	}
	if c.SinkWriter.HTTPRetryCount < 0 {
		return errs.Newf(errs.ErrorTypeConfig, "sink_writer.http_retry_count must not be negative")
	}
	return nil
}

func msec(v uint32) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (c WorkerConfig) IdleSleep() time.Duration { return msec(c.IdleSleepMsec) }

func (c MemoryConfig) TransitionInterval() time.Duration {
	return msec(c.MemoryStateTransitionIntervalMsec)
}

func (c MemoryConfig) ReportInterval() time.Duration {
	return msec(c.PerformanceMetricsSummaryReportIntervalMsec)
}

func (c SourceReaderConfig) ConnectTimeout() time.Duration { return msec(c.NetConnectTimeoutMsec) }
func (c SourceReaderConfig) ReadTimeout() time.Duration    { return msec(c.NetReadTimeoutMsec) }
func (c SinkWriterConfig) ConnectTimeout() time.Duration   { return msec(c.NetConnectTimeoutMsec) }
func (c SinkWriterConfig) WriteTimeout() time.Duration     { return msec(c.NetWriteTimeoutMsec) }
