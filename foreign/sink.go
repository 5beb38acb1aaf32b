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
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
)

// SinkWriter pushes encoded rows to a foreign sink
type SinkWriter interface {
	SendRow(row []byte) error
	Close() error
}

// NewSinkWriter starts a writer for model
func NewSinkWriter(model *pipeline.SinkWriterModel, cfg types.SinkWriterConfig) (SinkWriter, error) {
	switch model.Type {
	case pipeline.SinkWriterNetClient:
		return newNetClientSinkWriter(model.Options, cfg)
	case pipeline.SinkWriterHTTPClient:
		return newHTTPClientSinkWriter(model.Options, cfg)
	case pipeline.SinkWriterInMemoryQueue:
		return newInMemoryQueueSinkWriter(model.Options)
	default:
		return nil, errs.Newf(errs.ErrorTypeInvalidOption, "sink writer %s: unsupported type %q", model.Name, model.Type)
	}
}

// NetClientSinkWriter writes newline-delimited JSON rows to a remote server
type NetClientSinkWriter struct {
	conn         net.Conn
	writeTimeout time.Duration
}

func newNetClientSinkWriter(opts pipeline.Options, cfg types.SinkWriterConfig) (*NetClientSinkWriter, error) {
	addr, err := remoteAddr(opts)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("tcp", addr, cfg.ConnectTimeout())
	if err != nil {
		return nil, classifyNetError(err, "connect to %s", addr)
	}
	logger.Info("NET_CLIENT sink writer connected to %s", addr)
	return &NetClientSinkWriter{conn: conn, writeTimeout: cfg.WriteTimeout()}, nil
}

func (w *NetClientSinkWriter) SendRow(row []byte) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return errs.Wrapf(errs.ErrorTypeForeignIO, err, "set write deadline")
	}
	line := make([]byte, 0, len(row)+1)
	line = append(append(line, row...), '\n')
	if _, err := w.conn.Write(line); err != nil {
		return classifyNetError(err, "write to %s", w.conn.RemoteAddr())
	}
	return nil
}

func (w *NetClientSinkWriter) Close() error {
	return w.conn.Close()
}

// HTTPClientSinkWriter sends every row as one JSON request body
type HTTPClientSinkWriter struct {
	client *resty.Client
	url    string
	method string
}

func newHTTPClientSinkWriter(opts pipeline.Options, cfg types.SinkWriterConfig) (*HTTPClientSinkWriter, error) {
	url, err := opts.Get(OptionURL)
	if err != nil {
		return nil, err
	}
	timeout, err := opts.GetDuration(OptionTimeout, cfg.ConnectTimeout())
	if err != nil {
		return nil, err
	}
	method := opts.GetOr(OptionMethod, resty.MethodPost)
	switch method {
	case resty.MethodPost, resty.MethodPut, resty.MethodPatch:
	default:
		return nil, errs.Newf(errs.ErrorTypeInvalidOption, "unsupported HTTP method %q", method)
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.HTTPRetryCount).
		SetRetryWaitTime(50 * time.Millisecond).
		SetRetryMaxWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")
	return &HTTPClientSinkWriter{client: client, url: url, method: method}, nil
}

func (w *HTTPClientSinkWriter) SendRow(row []byte) error {
	resp, err := w.client.R().SetBody(row).Execute(w.method, w.url)
	if err != nil {
		return classifyNetError(err, "%s %s", w.method, w.url)
	}
	if resp.IsError() {
		return errs.Newf(errs.ErrorTypeForeignIO, "%s %s: %s", w.method, w.url, resp.Status())
	}
	return nil
}

func (w *HTTPClientSinkWriter) Close() error {
	w.client.GetClient().CloseIdleConnections()
	return nil
}
