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

package event

import (
	"sync"
	"testing"
	"time"

	"github.com/rulego/pumpsql/memory"
	"github.com/rulego/pumpsql/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueBroadcast(t *testing.T) {
	q := NewEventQueue()
	a := q.Subscribe(ReportMetricsSummaryTag)
	b := q.Subscribe(ReportMetricsSummaryTag, TransitMemoryStateTag)

	q.Publish(ReportMetricsSummary{Summary: metrics.Summary{QueueTotalBytes: 10}})
	q.Publish(TransitMemoryState{Transition: memory.Transition{From: memory.Moderate, To: memory.Severe}})
	q.Publish(IncrementalUpdateMetrics{Update: metrics.PurgeUpdate{}})

	assert.Equal(t, 1, a.Len())
	ev, ok := a.Poll()
	require.True(t, ok)
	assert.Equal(t, uint64(10), ev.(ReportMetricsSummary).Summary.QueueTotalBytes)
	_, ok = a.Poll()
	assert.False(t, ok)

	evs := b.Drain()
	require.Len(t, evs, 2)
	assert.Equal(t, ReportMetricsSummaryTag, evs[0].Tag())
	assert.Equal(t, TransitMemoryStateTag, evs[1].Tag())
	assert.Zero(t, b.Len())
}

func TestEventQueueLateSubscriberAndUnsubscribe(t *testing.T) {
	q := NewEventQueue()
	q.Publish(UpdatePipeline{})
	p := q.Subscribe(UpdatePipelineTag)
	assert.Zero(t, p.Len())

	q.Publish(UpdatePipeline{})
	assert.Equal(t, 1, p.Len())

	q.Unsubscribe(p)
	q.Publish(UpdatePipeline{})
	assert.Equal(t, 1, p.Len())
}

func TestEventQueueNotify(t *testing.T) {
	q := NewEventQueue()
	p := q.Subscribe(IncrementalUpdateMetricsTag)
	q.Publish(IncrementalUpdateMetrics{Update: metrics.PurgeUpdate{}})
	q.Publish(IncrementalUpdateMetrics{Update: metrics.PurgeUpdate{}})

	select {
	case <-p.Notify():
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}
	assert.Len(t, p.Drain(), 2)
}

func TestEventQueuePublishNeverBlocks(t *testing.T) {
	q := NewEventQueue()
	p := q.Subscribe(IncrementalUpdateMetricsTag)

	const publishers, each = 8, 1000
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				q.Publish(IncrementalUpdateMetrics{Update: metrics.PurgeUpdate{}})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, publishers*each, p.Len())
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "UpdatePipeline", UpdatePipelineTag.String())
	assert.Equal(t, "TransitMemoryState", TransitMemoryStateTag.String())
	assert.Equal(t, "Unknown", Tag(99).String())
}
