package work

import (
	"context"
	"time"
)

/*
	任务池+时间轮定时器
*/

const defaultPendingNum = 100 // 默认100条任务池缓冲空间

type IWorkStore interface {
	ITaskLoop
	Scheduler
}

type workStore struct {
	loop  ITaskLoop
	timer Scheduler
}

// NewWorkStore 协程池与时间轮共享生命周期, 定时任务投递到协程池执行
func NewWorkStore(ctx context.Context, tick time.Duration, pendingNum ...int) IWorkStore {
	size := defaultPendingNum
	if len(pendingNum) > 0 && pendingNum[0] > 0 {
		size = pendingNum[0]
	}
	l := NewAntsLoop(size)
	t := NewWheelScheduler(WithContext(ctx), WithExecutor(l), WithTick(tick))
	return &workStore{
		loop:  l,
		timer: t,
	}
}

/*
	任务池
*/

func (w *workStore) Start() error {
	return w.loop.Start()
}

func (w *workStore) Stop() {
	w.timer.Stop()
	w.loop.Stop()
}

func (w *workStore) Status() LoopStatus {
	return w.loop.Status()
}

func (w *workStore) Post(job func()) {
	w.loop.Post(job)
}

func (w *workStore) PostCtx(ctx context.Context, job func()) {
	w.loop.PostCtx(ctx, job)
}

func (w *workStore) PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error) {
	return w.loop.PostAndWaitCtx(ctx, job)
}

/*
	定时器相关
*/

func (w *workStore) Len() int {
	return w.timer.Len()
}

func (w *workStore) Once(duration time.Duration, f func()) int64 {
	return w.timer.Once(duration, f)
}

func (w *workStore) Forever(interval time.Duration, f func()) int64 {
	return w.timer.Forever(interval, f)
}

func (w *workStore) Cancel(taskID int64) {
	w.timer.Cancel(taskID)
}

func (w *workStore) CancelAll() {
	w.timer.CancelAll()
}
