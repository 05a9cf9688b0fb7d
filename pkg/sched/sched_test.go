package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAfter_Fires(t *testing.T) {
	var fired atomic.Bool
	task := After(10*time.Millisecond, func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
	assert.True(t, task.Fired())
}

func TestCancel_BeforeFire(t *testing.T) {
	var fired atomic.Bool
	task := After(50*time.Millisecond, func() { fired.Store(true) })

	task.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.False(t, task.Fired())
}

func TestCancel_AfterFire_IsNoop(t *testing.T) {
	var fired atomic.Bool
	task := After(5*time.Millisecond, func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, time.Millisecond)
	task.Cancel()
	assert.True(t, task.Fired())
}

func TestCancel_Twice(t *testing.T) {
	task := After(time.Hour, func() {})
	task.Cancel()
	task.Cancel()
	assert.False(t, task.Fired())
}

func TestAfter_CountsOnce(t *testing.T) {
	var count atomic.Int32
	After(5*time.Millisecond, func() { count.Add(1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}
