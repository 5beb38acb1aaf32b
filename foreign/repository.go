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

package foreign

import (
	"errors"
	"sync"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
)

type guardedReader struct {
	mu     sync.Mutex
	reader SourceReader
}

// SourceReaderRepository owns the running source readers. Readers outlive
// pipeline updates as long as the new pipeline still declares them.
type SourceReaderRepository struct {
	mu      sync.RWMutex
	cfg     types.SourceReaderConfig
	readers map[string]*guardedReader
}

func NewSourceReaderRepository(cfg types.SourceReaderConfig) *SourceReaderRepository {
	return &SourceReaderRepository{cfg: cfg, readers: make(map[string]*guardedReader)}
}

// Register starts the reader of model unless it is already running
func (r *SourceReaderRepository) Register(model *pipeline.SourceReaderModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.readers[model.Name]; ok {
		return nil
	}
	reader, err := NewSourceReader(model, r.cfg)
	if err != nil {
		return err
	}
	r.readers[model.Name] = &guardedReader{reader: reader}
	return nil
}

// NextRow reads the next raw row from the reader called name
func (r *SourceReaderRepository) NextRow(name string) ([]byte, error) {
	r.mu.RLock()
	g, ok := r.readers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.Newf(errs.ErrorTypeSQLSemantic, "source reader %s is not registered", name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reader.NextRow()
}

// Retain closes every reader whose name is not in keep
func (r *SourceReaderRepository) Retain(keep map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, g := range r.readers {
		if _, ok := keep[name]; ok {
			continue
		}
		if err := g.reader.Close(); err != nil {
			logger.Warn("failed to close source reader %s: %v", name, err)
		}
		delete(r.readers, name)
	}
}

// Close closes every reader
func (r *SourceReaderRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []error
	for name, g := range r.readers {
		if err := g.reader.Close(); err != nil {
			all = append(all, err)
		}
		delete(r.readers, name)
	}
	return errors.Join(all...)
}

type guardedWriter struct {
	mu     sync.Mutex
	writer SinkWriter
}

// SinkWriterRepository owns the running sink writers
type SinkWriterRepository struct {
	mu      sync.RWMutex
	cfg     types.SinkWriterConfig
	writers map[string]*guardedWriter
}

func NewSinkWriterRepository(cfg types.SinkWriterConfig) *SinkWriterRepository {
	return &SinkWriterRepository{cfg: cfg, writers: make(map[string]*guardedWriter)}
}

// Register starts the writer of model unless it is already running
func (r *SinkWriterRepository) Register(model *pipeline.SinkWriterModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.writers[model.Name]; ok {
		return nil
	}
	writer, err := NewSinkWriter(model, r.cfg)
	if err != nil {
		return err
	}
	r.writers[model.Name] = &guardedWriter{writer: writer}
	return nil
}

// SendRow encodes row and sends it through the writer called name
func (r *SinkWriterRepository) SendRow(name string, row *types.Row) error {
	r.mu.RLock()
	g, ok := r.writers[name]
	r.mu.RUnlock()
	if !ok {
		return errs.Newf(errs.ErrorTypeSQLSemantic, "sink writer %s is not registered", name)
	}
	data, err := RowToJSON(row)
	if err != nil {
		return errs.Wrapf(errs.ErrorTypeForeignFormat, err, "encode row for %s", name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writer.SendRow(data)
}

// Retain closes every writer whose name is not in keep
func (r *SinkWriterRepository) Retain(keep map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, g := range r.writers {
		if _, ok := keep[name]; ok {
			continue
		}
		if err := g.writer.Close(); err != nil {
			logger.Warn("failed to close sink writer %s: %v", name, err)
		}
		delete(r.writers, name)
	}
}

// Close closes every writer
func (r *SinkWriterRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []error
	for name, g := range r.writers {
		if err := g.writer.Close(); err != nil {
			all = append(all, err)
		}
		delete(r.writers, name)
	}
	return errors.Join(all...)
}
