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

package rsql

import (
	"time"

	"github.com/rulego/pumpsql/pipeline"
)

// Statement 是一条管道 DDL 语句
type Statement interface {
	// Name 返回语句创建的对象名称
	Name() string
	statementNode()
}

// CreateStream `CREATE [SOURCE | SINK] STREAM name (col TYPE [NOT NULL] [ROWTIME], ...)`
type CreateStream struct {
	Stream pipeline.StreamModel
}

// CreatePump `CREATE PUMP name AS INSERT INTO dest [(cols)] SELECT STREAM ...`
type CreatePump struct {
	PumpName      string
	Dest          string
	InsertColumns []string
	Select        []SelectItem
	From          []string
	Where         *Expr
	GroupBy       *Expr
	Window        *pipeline.WindowParameter
}

// SelectItem 是 SELECT 列表中的一项。Aggregate 非空时 Expr 为聚合参数
type SelectItem struct {
	Expr      *Expr
	Alias     string
	Aggregate string
}

// CreateSourceReader `CREATE SOURCE READER name FOR stream TYPE t [OPTIONS (...)]`
type CreateSourceReader struct {
	Reader pipeline.SourceReaderModel
}

// CreateSinkWriter `CREATE SINK WRITER name FOR stream TYPE t [OPTIONS (...)]`
type CreateSinkWriter struct {
	Writer pipeline.SinkWriterModel
}

func (s *CreateStream) Name() string       { return s.Stream.Name }
func (s *CreatePump) Name() string         { return s.PumpName }
func (s *CreateSourceReader) Name() string { return s.Reader.Name }
func (s *CreateSinkWriter) Name() string   { return s.Writer.Name }

func (*CreateStream) statementNode()       {}
func (*CreatePump) statementNode()         {}
func (*CreateSourceReader) statementNode() {}
func (*CreateSinkWriter) statementNode()   {}

// Expr 是 SQL 表达式，保存原始文本与转换后的表达式引擎语法
type Expr struct {
	// SQL 原始文本
	SQL string
	// Lang 可直接交给 condition 包编译
	Lang string
	// Ident 表达式为单个（可带限定名的）列引用时的列名
	Ident string
}

// durationUnits DURATION_xxx(n) 函数的时间单位
var durationUnits = map[string]time.Duration{
	"DURATION_MILLIS": time.Millisecond,
	"DURATION_SECS":   time.Second,
	"DURATION_MINS":   time.Minute,
}
