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
	"github.com/expr-lang/expr"
)

// ExprOptions 将当前注册的函数导出为表达式引擎选项。
// 表达式在编译时绑定函数，之后注册的函数只对新编译的表达式可见。
func ExprOptions() []expr.Option {
	list := List()
	options := make([]expr.Option, 0, len(list))
	for _, fn := range list {
		options = append(options, expr.Function(fn.GetName(), func(params ...interface{}) (interface{}, error) {
			if err := fn.Validate(params); err != nil {
				return nil, err
			}
			return fn.Execute(params)
		}))
	}
	return options
}
