package aggregator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rulego/pumpsql/types"
)

type AggregateType string

const (
	Count AggregateType = "count"
	Sum   AggregateType = "sum"
	Avg   AggregateType = "avg"
	Min   AggregateType = "min"
	Max   AggregateType = "max"
)

// ParseAggregateType parses an aggregate function name, case-insensitive
func ParseAggregateType(name string) (AggregateType, error) {
	t := AggregateType(strings.ToLower(strings.TrimSpace(name)))
	switch t {
	case Count, Sum, Avg, Min, Max:
		return t, nil
	}
	registryMutex.RLock()
	_, ok := aggregatorRegistry[string(t)]
	registryMutex.RUnlock()
	if ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown aggregate function %q", name)
}

// AggregatorFunction accumulates values of one group in one pane.
// NULL inputs are ignored by every builtin.
type AggregatorFunction interface {
	New() AggregatorFunction
	Add(value types.Value) error
	Result() types.Value
}

// Checker reports whether Add would reject a value, without changing state
type Checker interface {
	Check(value types.Value) error
}

// CheckValue reports whether fn would reject v. Aggregators that are not
// Checkers are tried on a fresh instance.
func CheckValue(fn AggregatorFunction, v types.Value) error {
	if c, ok := fn.(Checker); ok {
		return c.Check(v)
	}
	return fn.New().Add(v)
}

type CountAggregator struct {
	count int64
}

func (c *CountAggregator) New() AggregatorFunction {
	return &CountAggregator{}
}

func (c *CountAggregator) Add(v types.Value) error {
	if !v.IsNull() {
		c.count++
	}
	return nil
}

func (c *CountAggregator) Check(types.Value) error {
	return nil
}

func (c *CountAggregator) Result() types.Value {
	return types.Int(c.count)
}

// SumAggregator keeps an integer sum until the first float arrives
type SumAggregator struct {
	isum    int64
	fsum    float64
	isFloat bool
	seen    bool
}

func (s *SumAggregator) New() AggregatorFunction {
	return &SumAggregator{}
}

func (s *SumAggregator) Add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	s.seen = true
	if v.Kind() == types.KindInt && !s.isFloat {
		i, _ := v.AsInt64()
		s.isum += i
		return nil
	}
	f, err := v.AsFloat64()
	if err != nil {
		return err
	}
	if !s.isFloat {
		s.isFloat = true
		s.fsum = float64(s.isum)
	}
	s.fsum += f
	return nil
}

func (s *SumAggregator) Check(v types.Value) error {
	if v.IsNull() || v.Kind() == types.KindInt {
		return nil
	}
	_, err := v.AsFloat64()
	return err
}

func (s *SumAggregator) Result() types.Value {
	switch {
	case !s.seen:
		return types.Null()
	case s.isFloat:
		return types.Float(s.fsum)
	default:
		return types.Int(s.isum)
	}
}

// AvgAggregator keeps a streaming mean
type AvgAggregator struct {
	avg   float64
	count uint64
}

func (a *AvgAggregator) New() AggregatorFunction {
	return &AvgAggregator{}
}

func (a *AvgAggregator) Add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	x, err := v.AsFloat64()
	if err != nil {
		return err
	}
	a.avg = NextAvg(a.avg, a.count, x)
	a.count++
	return nil
}

func (a *AvgAggregator) Check(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	_, err := v.AsFloat64()
	return err
}

func (a *AvgAggregator) Result() types.Value {
	if a.count == 0 {
		return types.Null()
	}
	return types.Float(a.avg)
}

// NextAvg folds x into the mean avg of n values
func NextAvg(avg float64, n uint64, x float64) float64 {
	return avg + (x-avg)/float64(n+1)
}

type extremeAggregator struct {
	value types.Value
	keep  func(cmp int) bool
}

func (e *extremeAggregator) Add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	if e.value.IsNull() {
		e.value = v
		return nil
	}
	c, err := types.Compare(v, e.value)
	if err != nil {
		return err
	}
	if e.keep(c) {
		e.value = v
	}
	return nil
}

func (e *extremeAggregator) Check(v types.Value) error {
	if v.IsNull() || e.value.IsNull() {
		return nil
	}
	_, err := types.Compare(v, e.value)
	return err
}

func (e *extremeAggregator) Result() types.Value {
	return e.value
}

type MinAggregator struct {
	extremeAggregator
}

func NewMinAggregator() *MinAggregator {
	return &MinAggregator{extremeAggregator{keep: func(c int) bool { return c < 0 }}}
}

func (m *MinAggregator) New() AggregatorFunction {
	return NewMinAggregator()
}

type MaxAggregator struct {
	extremeAggregator
}

func NewMaxAggregator() *MaxAggregator {
	return &MaxAggregator{extremeAggregator{keep: func(c int) bool { return c > 0 }}}
}

func (m *MaxAggregator) New() AggregatorFunction {
	return NewMaxAggregator()
}

var (
	aggregatorRegistry = make(map[string]func() AggregatorFunction)
	registryMutex      sync.RWMutex
)

// Register 添加自定义聚合器到全局注册表
func Register(name string, constructor func() AggregatorFunction) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	aggregatorRegistry[strings.ToLower(name)] = constructor
}

// CreateBuiltinAggregator returns a fresh accumulator for aggType
func CreateBuiltinAggregator(aggType AggregateType) (AggregatorFunction, error) {
	registryMutex.RLock()
	constructor, exists := aggregatorRegistry[string(aggType)]
	registryMutex.RUnlock()
	if exists {
		return constructor(), nil
	}

	switch aggType {
	case Count:
		return &CountAggregator{}, nil
	case Sum:
		return &SumAggregator{}, nil
	case Avg:
		return &AvgAggregator{}, nil
	case Min:
		return NewMinAggregator(), nil
	case Max:
		return NewMaxAggregator(), nil
	default:
		return nil, fmt.Errorf("unsupported aggregate function %q", aggType)
	}
}
