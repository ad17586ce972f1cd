package work

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"

	"github.com/yola1107/lumina-ludo/library/log"
)

const (
	defaultWheelTick     = 50 * time.Millisecond // 思考延迟通常在百毫秒级
	defaultWheelSize     = 128
	defaultWheelStopWait = 3 * time.Second
)

type WheelSchedulerOption func(*wheelScheduler)

func WithTick(d time.Duration) WheelSchedulerOption {
	return func(s *wheelScheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

func WithContext(ctx context.Context) WheelSchedulerOption {
	return func(s *wheelScheduler) { s.ctx = ctx }
}

func WithExecutor(exec IExecutor) WheelSchedulerOption {
	return func(s *wheelScheduler) { s.exec = exec }
}

func WithStopTimeout(d time.Duration) WheelSchedulerOption {
	return func(s *wheelScheduler) {
		if d > 0 {
			s.stopWait = d
		}
	}
}

// wheelTask 周期任务每次触发都会换一个 timer
type wheelTask struct {
	mu        sync.Mutex
	timer     *timingwheel.Timer
	cancelled bool
}

// arm 已取消时立即停掉新 timer
func (t *wheelTask) arm(timer *timingwheel.Timer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		timer.Stop()
		return
	}
	t.timer = timer
}

func (t *wheelTask) cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *wheelTask) alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.cancelled
}

// wheelScheduler 时间轮调度器. 到期回调交给 exec, 未设置时起协程
type wheelScheduler struct {
	tw       *timingwheel.TimingWheel
	tick     time.Duration
	exec     IExecutor
	stopWait time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	tasks  sync.Map // map[int64]*wheelTask
	nextID atomic.Int64

	mu     sync.Mutex // 保护 closed 与 wg.Add
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

func NewWheelScheduler(opts ...WheelSchedulerOption) Scheduler {
	s := &wheelScheduler{
		tick:     defaultWheelTick,
		ctx:      context.Background(),
		stopWait: defaultWheelStopWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(s.ctx)
	s.tw = timingwheel.NewTimingWheel(s.tick, defaultWheelSize)
	s.tw.Start()
	go func() {
		<-s.ctx.Done()
		s.tw.Stop()
	}()
	return s
}

func (s *wheelScheduler) Len() int {
	n := 0
	s.tasks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *wheelScheduler) Once(delay time.Duration, f func()) int64 {
	return s.schedule(delay, false, f)
}

func (s *wheelScheduler) Forever(interval time.Duration, f func()) int64 {
	return s.schedule(interval, true, f)
}

func (s *wheelScheduler) Cancel(taskID int64) {
	if v, ok := s.tasks.LoadAndDelete(taskID); ok {
		v.(*wheelTask).cancel()
	}
}

func (s *wheelScheduler) CancelAll() {
	s.tasks.Range(func(key, _ any) bool {
		s.Cancel(key.(int64))
		return true
	})
}

// Stop 拒绝新任务, 取消已注册任务, 最多等待 stopWait 让执行中的回调结束
func (s *wheelScheduler) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		s.CancelAll()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			log.Info("[wheelScheduler] stopped")
		case <-time.After(s.stopWait):
			log.Warnf("[wheelScheduler] stop timed out after %v", s.stopWait)
		}
	})
}

func (s *wheelScheduler) schedule(delay time.Duration, repeat bool, f func()) int64 {
	if s.ctx.Err() != nil {
		log.Warn("[wheelScheduler] stopped, task rejected")
		return -1
	}
	if delay <= 0 {
		delay = s.tick
	}

	id := s.nextID.Add(1)
	task := &wheelTask{}
	s.tasks.Store(id, task)

	var fire func()
	fire = func() {
		if !task.alive() {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.wg.Add(1)
		s.mu.Unlock()

		// 周期任务先排下一次, 回调耗时不影响节拍
		if repeat {
			task.arm(s.tw.AfterFunc(delay, fire))
		} else {
			s.tasks.Delete(id)
		}
		ExecuteAsync(s.exec, func() {
			defer s.wg.Done()
			if task.alive() {
				f()
			}
		})
	}
	task.arm(s.tw.AfterFunc(delay, fire))
	return id
}
