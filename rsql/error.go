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
	"fmt"
	"strings"

	"github.com/rulego/pumpsql/errs"
)

// ParseError 语法错误，包含出错位置与期望的词法单元
type ParseError struct {
	Message  string
	Position int
	Line     int
	Column   int
	Token    string
	Expected []string
	Context  string
}

// Error 实现 error 接口
func (e *ParseError) Error() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[%s] %s", errs.ErrorTypeSQLSyntax, e.Message))
	if e.Line > 0 && e.Column > 0 {
		builder.WriteString(fmt.Sprintf(" at line %d, column %d", e.Line, e.Column))
	}
	if e.Token != "" {
		builder.WriteString(fmt.Sprintf(" (found '%s')", e.Token))
	}
	if len(e.Expected) > 0 {
		builder.WriteString(fmt.Sprintf(", expected: %s", strings.Join(e.Expected, ", ")))
	}
	if e.Context != "" {
		builder.WriteString(fmt.Sprintf("\nContext: %s", e.Context))
	}
	return builder.String()
}

// Unwrap 使 errors.Is(err, errs.ErrSQLSyntax) 成立
func (e *ParseError) Unwrap() error {
	return errs.ErrSQLSyntax
}

func newParseError(input string, tok Token, message string, expected ...string) *ParseError {
	line, column := lineColumn(input, tok.Pos)
	found := tok.Value
	if tok.Type == TokenEOF {
		found = "EOF"
	}
	return &ParseError{
		Message:  message,
		Position: tok.Pos,
		Line:     line,
		Column:   column,
		Token:    found,
		Expected: expected,
		Context:  errorContext(input, tok.Pos, 20),
	}
}

// lineColumn 将字节偏移转换为从 1 开始的行列号
func lineColumn(input string, position int) (int, int) {
	if position > len(input) {
		position = len(input)
	}
	prefix := input[:position]
	line := strings.Count(prefix, "\n") + 1
	column := position - strings.LastIndex(prefix, "\n")
	return line, column
}

// errorContext 截取出错位置附近的输入，并用 ^ 标出位置
func errorContext(input string, position int, width int) string {
	if position > len(input) {
		position = len(input)
	}
	start := max(position-width, 0)
	end := min(position+width, len(input))
	snippet := strings.ReplaceAll(input[start:end], "\n", " ")
	return snippet + "\n         " + strings.Repeat(" ", position-start) + "^"
}
