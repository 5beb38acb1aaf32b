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

package functions

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// SubstringFunction SUBSTRING(s, start[, length])，start 从 1 开始，按字符计数
type SubstringFunction struct {
	*BaseFunction
}

func NewSubstringFunction() *SubstringFunction {
	return &SubstringFunction{
		BaseFunction: NewBaseFunction("substring", TypeString, "characters of s from start (1-based)", 2, 3),
	}
}

func (f *SubstringFunction) Execute(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, fmt.Errorf("substring: %w", err)
	}
	start, err := cast.ToIntE(args[1])
	if err != nil {
		return nil, fmt.Errorf("substring: %w", err)
	}
	runes := []rune(s)
	from := max(start-1, 0)
	if from >= len(runes) {
		return "", nil
	}
	to := len(runes)
	if len(args) == 3 {
		n, err := cast.ToIntE(args[2])
		if err != nil {
			return nil, fmt.Errorf("substring: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("substring: negative length %d", n)
		}
		// SQL 语义：长度从 start 计起，start 小于 1 时窗口左移
		to = min(start-1+n, len(runes))
		if to <= from {
			return "", nil
		}
	}
	return string(runes[from:to]), nil
}

// ConcatWsFunction CONCAT_WS(sep, a, b, ...) 跳过 NULL 参数
type ConcatWsFunction struct {
	*BaseFunction
}

func NewConcatWsFunction() *ConcatWsFunction {
	return &ConcatWsFunction{
		BaseFunction: NewBaseFunction("concat_ws", TypeString, "join non-NULL arguments with a separator", 2, -1),
	}
}

func (f *ConcatWsFunction) Execute(args []interface{}) (interface{}, error) {
	sep, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, fmt.Errorf("concat_ws: %w", err)
	}
	parts := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		if arg == nil {
			continue
		}
		s, err := cast.ToStringE(arg)
		if err != nil {
			return nil, fmt.Errorf("concat_ws: %w", err)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep), nil
}
