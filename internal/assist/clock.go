// internal/assist/clock.go
package assist

import (
	"sync"
	"time"
)

// Clock 抽象定时器调度，便于测试中使用虚拟时钟
type Clock interface {
	// AfterFunc 在等待d之后执行f，返回可取消的定时器句柄
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer 可取消的定时器句柄
type Timer interface {
	// Stop 取消定时器，若定时器尚未触发则返回true
	Stop() bool
}

// realClock 基于time.AfterFunc的真实时钟
type realClock struct{}

// NewRealClock 创建真实时钟
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock 测试用虚拟时钟，通过Advance手动推进时间
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualClock 创建虚拟时钟
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc 注册一个在虚拟时间d之后触发的定时器
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, deadline: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance 推进虚拟时间并同步触发到期的定时器
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if t.stopped {
			continue
		}
		if !t.deadline.After(c.now) {
			t.fired = true
			due = append(due, t)
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}
