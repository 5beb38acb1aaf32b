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
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/rulego/pumpsql/logger"
	"github.com/rulego/pumpsql/pipeline"
	"github.com/rulego/pumpsql/types"
)

const maxLineBytes = 1 << 20

// NetClientSourceReader connects to a remote server and reads
// newline-delimited JSON rows
type NetClientSourceReader struct {
	conn        net.Conn
	reader      *bufio.Reader
	readTimeout time.Duration
	pending     []byte
}

func newNetClientSourceReader(opts pipeline.Options, cfg types.SourceReaderConfig) (*NetClientSourceReader, error) {
	addr, err := remoteAddr(opts)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialTimeout("tcp", addr, cfg.ConnectTimeout())
	if err != nil {
		return nil, classifyNetError(err, "connect to %s", addr)
	}
	logger.Info("NET_CLIENT source reader connected to %s", addr)
	return &NetClientSourceReader{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		readTimeout: cfg.ReadTimeout(),
	}, nil
}

func (r *NetClientSourceReader) NextRow() ([]byte, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.readTimeout)); err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeForeignIO, err, "set read deadline")
	}
	for {
		line, err := r.reader.ReadBytes('\n')
		r.pending = append(r.pending, line...)
		if len(r.pending) > maxLineBytes {
			r.pending = nil
			return nil, errs.Newf(errs.ErrorTypeForeignFormat, "line exceeds %d bytes", maxLineBytes)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errs.Wrapf(errs.ErrorTypeForeignIO, err, "remote closed %s", r.conn.RemoteAddr())
			}
			return nil, classifyNetError(err, "read from %s", r.conn.RemoteAddr())
		}
		out := bytes.TrimSpace(r.pending)
		r.pending = nil
		if len(out) > 0 {
			return out, nil
		}
	}
}

func (r *NetClientSourceReader) Close() error {
	return r.conn.Close()
}

// NetServerSourceReader listens for clients and reads newline-delimited
// JSON rows from every accepted connection
type NetServerSourceReader struct {
	listener    net.Listener
	lines       chan []byte
	readTimeout time.Duration

	mu        sync.Mutex
	conns     map[net.Conn]struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newNetServerSourceReader(opts pipeline.Options, cfg types.SourceReaderConfig) (*NetServerSourceReader, error) {
	if proto := opts.GetOr(OptionProtocol, "TCP"); proto != "TCP" {
		return nil, errs.Newf(errs.ErrorTypeInvalidOption, "unsupported protocol %q", proto)
	}
	port, err := opts.GetInt(OptionPort)
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(opts.GetOr("HOST", ""), strconv.Itoa(port))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrorTypeForeignIO, err, "listen on %s", addr)
	}
	r := &NetServerSourceReader{
		listener:    l,
		lines:       make(chan []byte, 1024),
		readTimeout: cfg.ReadTimeout(),
		conns:       make(map[net.Conn]struct{}),
		done:        make(chan struct{}),
	}
	r.wg.Add(1)
	go r.acceptLoop()
	logger.Info("NET_SERVER source reader listening on %s", l.Addr())
	return r, nil
}

// Addr returns the listening address
func (r *NetServerSourceReader) Addr() net.Addr {
	return r.listener.Addr()
}

func (r *NetServerSourceReader) acceptLoop() {
	defer r.wg.Done()
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-r.done:
			default:
				logger.Warn("NET_SERVER accept failed: %v", err)
			}
			return
		}
		r.mu.Lock()
		r.conns[conn] = struct{}{}
		r.mu.Unlock()
		r.wg.Add(1)
		go r.serve(conn)
	}
}

func (r *NetServerSourceReader) serve(conn net.Conn) {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		delete(r.conns, conn)
		r.mu.Unlock()
		conn.Close()
	}()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		row := make([]byte, len(line))
		copy(row, line)
		select {
		case r.lines <- row:
		case <-r.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("NET_SERVER connection %s closed: %v", conn.RemoteAddr(), err)
	}
}

func (r *NetServerSourceReader) NextRow() ([]byte, error) {
	timer := time.NewTimer(r.readTimeout)
	defer timer.Stop()
	select {
	case line := <-r.lines:
		return line, nil
	case <-timer.C:
		return nil, errs.Newf(errs.ErrorTypeForeignTimeout, "no row within %s", r.readTimeout)
	case <-r.done:
		return nil, errs.Newf(errs.ErrorTypeForeignIO, "reader closed")
	}
}

func (r *NetServerSourceReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.listener.Close()
		r.mu.Lock()
		for conn := range r.conns {
			conn.Close()
		}
		r.mu.Unlock()
		r.wg.Wait()
	})
	return err
}
