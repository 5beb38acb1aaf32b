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
	"math"

	"github.com/spf13/cast"
)

// PowerFunction POWER(x, y)
type PowerFunction struct {
	*BaseFunction
}

func NewPowerFunction() *PowerFunction {
	return &PowerFunction{
		BaseFunction: NewBaseFunction("power", TypeMath, "x raised to the power y", 2, 2),
	}
}

func (f *PowerFunction) Execute(args []interface{}) (interface{}, error) {
	x, y, err := twoFloats("power", args)
	if err != nil || args[0] == nil || args[1] == nil {
		return nil, err
	}
	return math.Pow(x, y), nil
}

// ModFunction MOD(a, b) 整数取余
type ModFunction struct {
	*BaseFunction
}

func NewModFunction() *ModFunction {
	return &ModFunction{
		BaseFunction: NewBaseFunction("mod", TypeMath, "integer remainder of a / b", 2, 2),
	}
}

func (f *ModFunction) Execute(args []interface{}) (interface{}, error) {
	if args[0] == nil || args[1] == nil {
		return nil, nil
	}
	a, err := cast.ToInt64E(args[0])
	if err != nil {
		return nil, fmt.Errorf("mod: %w", err)
	}
	b, err := cast.ToInt64E(args[1])
	if err != nil {
		return nil, fmt.Errorf("mod: %w", err)
	}
	if b == 0 {
		return nil, fmt.Errorf("mod: division by zero")
	}
	return a % b, nil
}

// SqrtFunction SQRT(x)
type SqrtFunction struct {
	*BaseFunction
}

func NewSqrtFunction() *SqrtFunction {
	return &SqrtFunction{
		BaseFunction: NewBaseFunction("sqrt", TypeMath, "square root", 1, 1),
	}
}

func (f *SqrtFunction) Validate(args []interface{}) error {
	if err := f.ValidateArgCount(args); err != nil {
		return err
	}
	if args[0] == nil {
		return nil
	}
	x, err := cast.ToFloat64E(args[0])
	if err != nil {
		return fmt.Errorf("sqrt: %w", err)
	}
	if x < 0 {
		return fmt.Errorf("sqrt: negative argument %v", x)
	}
	return nil
}

func (f *SqrtFunction) Execute(args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	x, err := cast.ToFloat64E(args[0])
	if err != nil {
		return nil, fmt.Errorf("sqrt: %w", err)
	}
	return math.Sqrt(x), nil
}

func twoFloats(name string, args []interface{}) (float64, float64, error) {
	if args[0] == nil || args[1] == nil {
		return 0, 0, nil
	}
	x, err := cast.ToFloat64E(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", name, err)
	}
	y, err := cast.ToFloat64E(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", name, err)
	}
	return x, y, nil
}
