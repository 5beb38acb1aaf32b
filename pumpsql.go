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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rulego/pumpsql/event"
	"github.com/rulego/pumpsql/foreign"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/metrics"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/queue"
	"github.com/rulego/pumpsql/rsql"
	"github.com/rulego/pumpsql/task"
	"github.com/rulego/pumpsql/types"
	"github.com/rulego/pumpsql/worker"
)

// stopTimeout bounds how long Close waits for workers
const stopTimeout = 5 * time.Second

// Pumpsql is a running streaming SQL engine. It executes the pipeline given
// to Apply until Close is called.
//
// 使用示例:
//
//	p, err := pumpsql.Open(types.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//	err = p.Apply(graph)
type Pumpsql struct {
	cfg        types.Config
	registerer prometheus.Registerer
	registry   *prometheus.Registry

	events    *event.EventQueue
	scheduler *worker.Scheduler
	repos     *task.Repositories
	exporter  *metrics.Exporter
	pool      *worker.Pool

	applyMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// Open 校验配置并启动工作线程池。
// 启动后引擎处于空闲状态，直到通过Apply提交管道。
//
// 参数:
//   - cfg: 引擎配置，通常由types.DefaultConfig、types.ConfigFromTOML或types.ConfigFromEnv得到
//   - options: 可变长度的配置选项
//
// 返回值:
//   - *Pumpsql: 运行中的引擎
//   - error: 配置非法时返回ErrConfig类错误
func Open(cfg types.Config, options ...Option) (*Pumpsql, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Log.Level != "" {
		l, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
		if err != nil {
			return nil, err
		}
		logger.SetDefault(l)
	}

	p := &Pumpsql{cfg: cfg}
	for _, option := range options {
		option(p)
	}
	if p.registerer == nil {
		p.registry = prometheus.NewRegistry()
		p.registerer = p.registry
	}

	p.events = event.NewEventQueue()
	p.scheduler = worker.NewScheduler()
	p.exporter = metrics.NewExporter(p.registerer)
	p.repos = &task.Repositories{
		Queues:        queue.NewRepositories(queue.Bounds{MaxRows: cfg.Queue.MaxRows, MaxBytes: cfg.Queue.MaxBytes}),
		SourceReaders: foreign.NewSourceReaderRepository(cfg.SourceReader),
		SinkWriters:   foreign.NewSinkWriterRepository(cfg.SinkWriter),
	}
	pool, err := worker.NewPool(cfg, p.scheduler, p.repos, p.events, p.exporter)
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p, nil
}

// Apply 用新的管道替换当前运行的管道。
// 所有任务在切换前完成编译，语义错误会直接返回且不影响当前管道。
// 新管道中仍被引用的源读取器和汇写入器保持连接，其余的被关闭；
// 所有行队列和窗口队列被重置为空。
//
// 参数:
//   - pg: 管道定义
//
// 返回值:
//   - error: 语义错误或外部连接错误
func (p *Pumpsql) Apply(pg *pipeline.PipelineGraph) error {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()
	if p.closed {
		return errors.New("pumpsql: engine is closed")
	}

	d, err := task.NewPipelineDerivatives(pg)
	if err != nil {
		return err
	}
	if err := p.register(pg); err != nil {
		p.retain(p.scheduler.Current())
		return err
	}

	p.scheduler.Update(d, func() {
		p.repos.Queues.Reset(d.TaskGraph)
		p.retain(d)
		p.events.Publish(event.UpdatePipeline{Derivatives: d})
	})
	logger.Info("pipeline %s applied: %d tasks, %d row queues, %d window queues",
		d.Generation, d.Tasks.Len(), len(d.TaskGraph.RowQueueIDs()), len(d.TaskGraph.WindowQueueIDs()))
	return nil
}

// ApplySQL 解析管道DDL脚本并调用Apply。
// 脚本语法见rsql包文档。
//
// 示例:
//
//	err := engine.ApplySQL(`
//		CREATE SOURCE STREAM trade (ts TIMESTAMP NOT NULL ROWTIME, amount INTEGER);
//		CREATE SINK STREAM big (ts TIMESTAMP NOT NULL ROWTIME, amount INTEGER);
//		CREATE PUMP pu AS INSERT INTO big SELECT STREAM ts, amount FROM trade WHERE amount > 100;
//		CREATE SOURCE READER r FOR trade TYPE NET_SERVER OPTIONS (PROTOCOL 'TCP', PORT '9876');
//		CREATE SINK WRITER w FOR big TYPE IN_MEMORY_QUEUE OPTIONS (NAME 'big');
//	`)
func (p *Pumpsql) ApplySQL(sql string) error {
	pg, err := rsql.ParsePipeline(sql)
	if err != nil {
		return err
	}
	return p.Apply(pg)
}

func (p *Pumpsql) register(pg *pipeline.PipelineGraph) error {
	for _, m := range pg.SourceReaders() {
		if err := p.repos.SourceReaders.Register(m); err != nil {
			return err
		}
	}
	for _, m := range pg.SinkWriters() {
		if err := p.repos.SinkWriters.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// retain closes the readers and writers d does not declare
func (p *Pumpsql) retain(d *task.PipelineDerivatives) {
	readers := make(map[string]struct{})
	writers := make(map[string]struct{})
	if d != nil {
		for _, m := range d.Pipeline.SourceReaders() {
			readers[m.Name] = struct{}{}
		}
		for _, m := range d.Pipeline.SinkWriters() {
			writers[m.Name] = struct{}{}
		}
	}
	p.repos.SourceReaders.Retain(readers)
	p.repos.SinkWriters.Retain(writers)
}

// Gatherer returns the private metrics registry, or nil when WithRegisterer
// was used
func (p *Pumpsql) Gatherer() prometheus.Gatherer {
	if p.registry == nil {
		return nil
	}
	return p.registry
}

// Config returns the configuration the engine was opened with
func (p *Pumpsql) Config() types.Config {
	return p.cfg
}

// Close 停止所有工作线程并关闭外部连接。
// 可以安全地重复调用。
func (p *Pumpsql) Close() error {
	p.closeOnce.Do(func() {
		p.applyMu.Lock()
		p.closed = true
		p.applyMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		p.closeErr = errors.Join(
			p.pool.Stop(ctx),
			p.repos.SourceReaders.Close(),
			p.repos.SinkWriters.Close(),
		)
		logger.Info("pumpsql closed")
	})
	return p.closeErr
}
