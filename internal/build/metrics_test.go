package build

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/conneroisu/unidom/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestBuildMetrics_RecordBuild(t *testing.T) {
	metrics := NewBuildMetrics()
	components := registry.NewComponentRegistry(registry.CollisionLastWins)
	_, _ = components.Register(&registry.ComponentEntry{Name: "counter"})
	finished := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	metrics.RecordBuild(&BuildResult{
		Artifacts: &Artifacts{Components: components},
		Duration:  100 * time.Millisecond,
		Finished:  finished,
	})
	metrics.RecordBuild(&BuildResult{
		Duration: 300 * time.Millisecond,
		Finished: finished.Add(time.Second),
		Error:    fmt.Errorf("boom"),
	})

	snapshot := metrics.GetSnapshot()
	assert.Equal(t, int64(2), snapshot.TotalBuilds)
	assert.Equal(t, int64(1), snapshot.SuccessfulBuilds)
	assert.Equal(t, int64(1), snapshot.FailedBuilds)
	assert.Equal(t, 1, snapshot.Components)
	assert.Equal(t, 400*time.Millisecond, snapshot.TotalDuration)
	assert.Equal(t, 200*time.Millisecond, snapshot.AverageDuration)
	assert.Equal(t, finished.Add(time.Second), snapshot.LastBuild)
	assert.InDelta(t, 50.0, metrics.GetSuccessRate(), 0.001)
}

func TestBuildMetrics_Reset(t *testing.T) {
	metrics := NewBuildMetrics()
	assert.Equal(t, 0.0, metrics.GetSuccessRate())

	metrics.RecordBuild(&BuildResult{Duration: time.Second, Finished: time.Now()})
	metrics.Reset()

	snapshot := metrics.GetSnapshot()
	assert.Zero(t, snapshot.TotalBuilds)
	assert.Zero(t, snapshot.TotalDuration)
	assert.True(t, snapshot.LastBuild.IsZero())
}

func TestBuildMetrics_Concurrent(t *testing.T) {
	metrics := NewBuildMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.RecordBuild(&BuildResult{Duration: time.Millisecond, Finished: time.Now()})
			_ = metrics.GetSnapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), metrics.GetSnapshot().TotalBuilds)
}
