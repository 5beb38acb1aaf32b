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

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/spf13/cast"
)

// ValueKind identifies the SQL type carried by a Value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindTimestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOLEAN"
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindText:
		return "TEXT"
	case KindTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// TimestampLayout is the textual layout of TIMESTAMP values
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// Value is an immutable SQL value
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

func Null() Value                 { return Value{} }
func Bool(b bool) Value           { return Value{kind: KindBool, b: b} }
func Int(i int64) Value           { return Value{kind: KindInt, i: i} }
func Float(f float64) Value       { return Value{kind: KindFloat, f: f} }
func Text(s string) Value         { return Value{kind: KindText, s: s} }
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// Interface returns the native Go representation used by expressions
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindTimestamp:
		return v.t
	default:
		return nil
	}
}

// FromInterface converts a native value into a Value
func FromInterface(x interface{}) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		i, err := cast.ToInt64E(val)
		if err != nil {
			return Null(), err
		}
		return Int(i), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return Null(), err
		}
		return Float(f), nil
	case string:
		return Text(val), nil
	case time.Time:
		return Timestamp(val), nil
	case time.Duration:
		return Int(int64(val)), nil
	default:
		return Null(), fmt.Errorf("unsupported value type %T", x)
	}
}

// AsFloat64 converts numeric values to float64
func (v Value) AsFloat64() (float64, error) {
	switch v.kind {
	case KindInt:
		return float64(v.i), nil
	case KindFloat:
		return v.f, nil
	case KindNull:
		return 0, errs.Newf(errs.ErrorTypeSQLSemantic, "NULL is not a number")
	default:
		f, err := cast.ToFloat64E(v.Interface())
		if err != nil {
			return 0, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "%s is not a number", v.kind)
		}
		return f, nil
	}
}

// AsInt64 converts the value to int64
func (v Value) AsInt64() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindNull:
		return 0, errs.Newf(errs.ErrorTypeSQLSemantic, "NULL is not an integer")
	default:
		i, err := cast.ToInt64E(v.Interface())
		if err != nil {
			return 0, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "%s is not an integer", v.kind)
		}
		return i, nil
	}
}

// AsString converts the value to text
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindText:
		return v.s, nil
	case KindTimestamp:
		return v.t.Format(TimestampLayout), nil
	case KindNull:
		return "", errs.Newf(errs.ErrorTypeSQLSemantic, "NULL is not text")
	default:
		return cast.ToStringE(v.Interface())
	}
}

// AsBool converts the value to a boolean
func (v Value) AsBool() (bool, error) {
	if v.kind == KindBool {
		return v.b, nil
	}
	b, err := cast.ToBoolE(v.Interface())
	if err != nil {
		return false, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "%s is not a boolean", v.kind)
	}
	return b, nil
}

// AsTimestamp converts the value to a timestamp. Text is parsed with
// TimestampLayout first and then with the layouts cast understands.
func (v Value) AsTimestamp() (time.Time, error) {
	switch v.kind {
	case KindTimestamp:
		return v.t, nil
	case KindText:
		if t, err := time.ParseInLocation(TimestampLayout, v.s, time.UTC); err == nil {
			return t, nil
		}
		t, err := cast.ToTimeInDefaultLocationE(v.s, time.UTC)
		if err != nil {
			return time.Time{}, errs.Wrapf(errs.ErrorTypeSQLSemantic, err, "invalid timestamp %q", v.s)
		}
		return t, nil
	case KindInt:
		return time.Unix(0, v.i).UTC(), nil
	default:
		return time.Time{}, errs.Newf(errs.ErrorTypeSQLSemantic, "%s is not a timestamp", v.kind)
	}
}

// Convert coerces the value to the given kind. NULL converts to NULL.
func (v Value) Convert(kind ValueKind) (Value, error) {
	if v.kind == kind || v.kind == KindNull {
		return v, nil
	}
	switch kind {
	case KindBool:
		b, err := v.AsBool()
		return Bool(b), err
	case KindInt:
		i, err := v.AsInt64()
		return Int(i), err
	case KindFloat:
		f, err := v.AsFloat64()
		return Float(f), err
	case KindText:
		s, err := v.AsString()
		return Text(s), err
	case KindTimestamp:
		t, err := v.AsTimestamp()
		return Timestamp(t), err
	default:
		return Null(), errs.Newf(errs.ErrorTypeSQLSemantic, "cannot convert %s to %s", v.kind, kind)
	}
}

// Equal reports SQL equality. Int and Float compare numerically.
func (v Value) Equal(o Value) bool {
	c, err := Compare(v, o)
	return err == nil && c == 0
}

// Compare orders two non-null values of compatible kinds
func Compare(a, b Value) (int, error) {
	if a.kind == KindNull || b.kind == KindNull {
		if a.kind == b.kind {
			return 0, nil
		}
		return 0, errs.Newf(errs.ErrorTypeSQLSemantic, "cannot compare %s with %s", a.kind, b.kind)
	}
	if a.kind == KindInt && b.kind == KindInt {
		return cmpOrdered(a.i, b.i), nil
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return cmpOrdered(af, bf), nil
	}
	if a.kind != b.kind {
		return 0, errs.Newf(errs.ErrorTypeSQLSemantic, "cannot compare %s with %s", a.kind, b.kind)
	}
	switch a.kind {
	case KindText:
		return cmpOrdered(a.s, b.s), nil
	case KindTimestamp:
		return a.t.Compare(b.t), nil
	case KindBool:
		switch {
		case a.b == b.b:
			return 0, nil
		case !a.b:
			return -1, nil
		default:
			return 1, nil
		}
	}
	return 0, errs.Newf(errs.ErrorTypeSQLSemantic, "cannot compare %s", a.kind)
}

func isNumeric(k ValueKind) bool {
	return k == KindInt || k == KindFloat
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Key returns a string usable as a map key for grouping
func (v Value) Key() string {
	switch v.kind {
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	case KindInt:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		return "f:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return "s:" + v.s
	case KindTimestamp:
		return "t:" + strconv.FormatInt(v.t.UnixNano(), 10)
	default:
		return "n:"
	}
}

// MemSize estimates the bytes retained by the value
func (v Value) MemSize() int {
	const base = 16
	switch v.kind {
	case KindText:
		return base + len(v.s)
	case KindTimestamp:
		return base + 24
	default:
		return base
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindTimestamp:
		return v.t.Format(TimestampLayout)
	default:
		return cast.ToString(v.Interface())
	}
}
