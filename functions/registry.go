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
	"sort"
	"strings"
	"sync"
)

// FunctionType 函数类型
type FunctionType string

const (
	// 数学函数
	TypeMath FunctionType = "math"
	// 字符串函数
	TypeString FunctionType = "string"
	// 时间日期函数
	TypeDateTime FunctionType = "datetime"
	// 条件函数
	TypeConditional FunctionType = "conditional"
	// 用户自定义函数
	TypeCustom FunctionType = "custom"
)

// Function 标量函数接口，在投影、WHERE 条件和 GROUP BY 表达式中调用
type Function interface {
	// GetName 获取函数名称（小写）
	GetName() string
	// GetType 获取函数类型
	GetType() FunctionType
	// GetDescription 获取函数描述
	GetDescription() string
	// Validate 验证参数
	Validate(args []interface{}) error
	// Execute 执行函数
	Execute(args []interface{}) (interface{}, error)
}

// FunctionRegistry 函数注册器
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// 全局函数注册器实例
var globalRegistry = NewFunctionRegistry()

// NewFunctionRegistry 创建新的函数注册器
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register 注册函数，名称不区分大小写且不可重复
func (r *FunctionRegistry) Register(fn Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToLower(fn.GetName())
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("function %s already registered", name)
	}
	r.functions[name] = fn
	return nil
}

// Unregister 注销函数
func (r *FunctionRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	name = strings.ToLower(name)
	if _, exists := r.functions[name]; !exists {
		return false
	}
	delete(r.functions, name)
	return true
}

// Get 获取函数
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, exists := r.functions[strings.ToLower(name)]
	return fn, exists
}

// List 按名称排序返回所有函数
func (r *FunctionRegistry) List() []Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Function, 0, len(r.functions))
	for _, fn := range r.functions {
		list = append(list, fn)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GetName() < list[j].GetName() })
	return list
}

// Register 注册到全局注册器
func Register(fn Function) error {
	return globalRegistry.Register(fn)
}

// Unregister 从全局注册器注销
func Unregister(name string) bool {
	return globalRegistry.Unregister(name)
}

// Get 从全局注册器获取函数
func Get(name string) (Function, bool) {
	return globalRegistry.Get(name)
}

// List 列出全局注册器中的函数
func List() []Function {
	return globalRegistry.List()
}

// Execute 按名称执行全局注册的函数
func Execute(name string, args []interface{}) (interface{}, error) {
	fn, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("function %s not found", name)
	}
	if err := fn.Validate(args); err != nil {
		return nil, err
	}
	return fn.Execute(args)
}
