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

package queue

// ring 环形缓冲区，容量不足时按倍数扩容。非线程安全，由调用方加锁。
type ring[T any] struct {
	data  []T
	head  int // 队首的索引
	count int // 队列中元素的个数
}

func newRing[T any](initial int) *ring[T] {
	if initial < 1 {
		initial = 16
	}
	return &ring[T]{data: make([]T, initial)}
}

func (r *ring[T]) len() int {
	return r.count
}

// push 向队尾添加一个元素
func (r *ring[T]) push(x T) {
	if r.count == len(r.data) {
		r.grow()
	}
	r.data[(r.head+r.count)%len(r.data)] = x
	r.count++
}

// pop 从队首删除一个元素，并返回它
func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	x := r.data[r.head]
	r.data[r.head] = zero
	r.head = (r.head + 1) % len(r.data)
	r.count--
	return x, true
}

func (r *ring[T]) grow() {
	data := make([]T, len(r.data)*2)
	for i := 0; i < r.count; i++ {
		data[i] = r.data[(r.head+i)%len(r.data)]
	}
	r.data = data
	r.head = 0
}

// reset 清空队列，保留一个初始容量
func (r *ring[T]) reset() {
	r.data = make([]T, 16)
	r.head = 0
	r.count = 0
}
