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

package pipeline

import (
	"time"

	"github.com/rulego/pumpsql/errs"
	"github.com/spf13/cast"
)

// Options are the OPTIONS(...) of a source reader or sink writer
type Options map[string]string

// Get returns a required option
func (o Options) Get(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", errs.Newf(errs.ErrorTypeInvalidOption, "option %s is required", key)
	}
	return v, nil
}

// GetOr returns the option or def when absent
func (o Options) GetOr(key, def string) string {
	if v, ok := o[key]; ok {
		return v
	}
	return def
}

// GetInt parses a required integer option
func (o Options) GetInt(key string) (int, error) {
	v, err := o.Get(key)
	if err != nil {
		return 0, err
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, errs.Wrapf(errs.ErrorTypeInvalidOption, err, "option %s", key)
	}
	return i, nil
}

// GetFloat parses an optional float option, returning def when absent
func (o Options) GetFloat(key string, def float64) (float64, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errs.Wrapf(errs.ErrorTypeInvalidOption, err, "option %s", key)
	}
	return f, nil
}

// GetDuration parses an optional duration option such as "500ms"
func (o Options) GetDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return 0, errs.Wrapf(errs.ErrorTypeInvalidOption, err, "option %s", key)
	}
	return d, nil
}
