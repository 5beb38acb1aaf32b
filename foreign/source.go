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
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
	"golang.org/x/time/rate"
)

// Common reader and writer options
const (
	OptionRemoteHost    = "REMOTE_HOST"
	OptionRemotePort    = "REMOTE_PORT"
	OptionPort          = "PORT"
	OptionProtocol      = "PROTOCOL"
	OptionName          = "NAME"
	OptionURL           = "URL"
	OptionMethod        = "METHOD"
	OptionTimeout       = "TIMEOUT"
	OptionMaxRowsPerSec = "MAX_ROWS_PER_SEC"
)

// SourceReader pulls JSON rows from a foreign source
type SourceReader interface {
	// NextRow returns the next raw row. It returns an error of type
	// errs.ErrorTypeForeignTimeout when nothing arrived within the read
	// timeout.
	NextRow() ([]byte, error)
	Close() error
}

// NewSourceReader starts a reader for model
func NewSourceReader(model *pipeline.SourceReaderModel, cfg types.SourceReaderConfig) (SourceReader, error) {
	var (
		reader SourceReader
		err    error
	)
	switch model.Type {
	case pipeline.SourceReaderNetClient:
		reader, err = newNetClientSourceReader(model.Options, cfg)
	case pipeline.SourceReaderNetServer:
		reader, err = newNetServerSourceReader(model.Options, cfg)
	case pipeline.SourceReaderInMemoryQueue:
		reader, err = newInMemoryQueueSourceReader(model.Options, cfg)
	default:
		return nil, errs.Newf(errs.ErrorTypeInvalidOption, "source reader %s: unsupported type %q", model.Name, model.Type)
	}
	if err != nil {
		return nil, err
	}
	perSec, err := model.Options.GetFloat(OptionMaxRowsPerSec, 0)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if perSec > 0 {
		reader = newRateLimitedReader(reader, perSec, cfg.ReadTimeout())
	}
	return reader, nil
}

// rateLimitedReader paces a reader to at most perSec rows per second
type rateLimitedReader struct {
	SourceReader
	limiter *rate.Limiter
	timeout time.Duration
}

func newRateLimitedReader(reader SourceReader, perSec float64, timeout time.Duration) *rateLimitedReader {
	burst := int(perSec)
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedReader{
		SourceReader: reader,
		limiter:      rate.NewLimiter(rate.Limit(perSec), burst),
		timeout:      timeout,
	}
}

func (r *rateLimitedReader) NextRow() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeForeignTimeout, err, "rate limited")
	}
	return r.SourceReader.NextRow()
}

// classifyNetError maps net errors to the foreign error types
func classifyNetError(err error, format string, args ...interface{}) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return errs.Wrapf(errs.ErrorTypeForeignTimeout, err, format, args...)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrapf(errs.ErrorTypeForeignTimeout, err, format, args...)
	}
	return errs.Wrapf(errs.ErrorTypeForeignIO, err, format, args...)
}

func remoteAddr(opts pipeline.Options) (string, error) {
	if proto := opts.GetOr(OptionProtocol, "TCP"); proto != "TCP" {
		return "", errs.Newf(errs.ErrorTypeInvalidOption, "unsupported protocol %q", proto)
	}
	host, err := opts.Get(OptionRemoteHost)
	if err != nil {
		return "", err
	}
	port, err := opts.GetInt(OptionRemotePort)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
