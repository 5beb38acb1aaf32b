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
)

// BaseFunction 基础函数实现，提供名称、类型与参数个数校验
type BaseFunction struct {
	name        string
	fnType      FunctionType
	description string
	minArgs     int
	maxArgs     int // -1 表示无限制
}

// NewBaseFunction 创建基础函数
func NewBaseFunction(name string, fnType FunctionType, description string, minArgs, maxArgs int) *BaseFunction {
	return &BaseFunction{
		name:        name,
		fnType:      fnType,
		description: description,
		minArgs:     minArgs,
		maxArgs:     maxArgs,
	}
}

func (bf *BaseFunction) GetName() string {
	return bf.name
}

func (bf *BaseFunction) GetType() FunctionType {
	return bf.fnType
}

func (bf *BaseFunction) GetDescription() string {
	return bf.description
}

// Validate 默认只校验参数个数
func (bf *BaseFunction) Validate(args []interface{}) error {
	return bf.ValidateArgCount(args)
}

// ValidateArgCount 验证参数数量
func (bf *BaseFunction) ValidateArgCount(args []interface{}) error {
	argCount := len(args)
	if argCount < bf.minArgs {
		return fmt.Errorf("function %s requires at least %d arguments, got %d", bf.name, bf.minArgs, argCount)
	}
	if bf.maxArgs != -1 && argCount > bf.maxArgs {
		return fmt.Errorf("function %s accepts at most %d arguments, got %d", bf.name, bf.maxArgs, argCount)
	}
	return nil
}

// CustomFunction 由普通 Go 函数构造的自定义函数
type CustomFunction struct {
	*BaseFunction
	fn func(args []interface{}) (interface{}, error)
}

// NewCustomFunction 创建自定义函数
func NewCustomFunction(name, description string, minArgs, maxArgs int, fn func(args []interface{}) (interface{}, error)) *CustomFunction {
	return &CustomFunction{
		BaseFunction: NewBaseFunction(name, TypeCustom, description, minArgs, maxArgs),
		fn:           fn,
	}
}

func (f *CustomFunction) Execute(args []interface{}) (interface{}, error) {
	return f.fn(args)
}

// RegisterCustomFunction 注册自定义函数的便捷方法
//
// 示例:
//
//	functions.RegisterCustomFunction("fahrenheit", "摄氏转华氏", 1, 1,
//		func(args []interface{}) (interface{}, error) {
//			c, err := cast.ToFloat64E(args[0])
//			if err != nil {
//				return nil, err
//			}
//			return c*1.8 + 32, nil
//		})
func RegisterCustomFunction(name, description string, minArgs, maxArgs int, fn func(args []interface{}) (interface{}, error)) error {
	return Register(NewCustomFunction(name, description, minArgs, maxArgs, fn))
}
