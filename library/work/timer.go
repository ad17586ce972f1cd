package work

import (
	"runtime/debug"
	"time"

	"github.com/yola1107/lumina-ludo/library/log"
)

// Scheduler 定时任务调度器
type Scheduler interface {
	Len() int                                       // 当前注册任务数量
	Once(delay time.Duration, f func()) int64       // 一次性任务, 关闭后返回 -1
	Forever(interval time.Duration, f func()) int64 // 周期任务
	Cancel(taskID int64)
	CancelAll()
	Stop()
}

// IExecutor 到期任务的执行方, 一般是协程池
type IExecutor interface {
	Post(job func())
}

func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}

func ExecuteAsync(executor IExecutor, f func()) {
	run := func() {
		defer RecoverFromError(nil)
		f()
	}
	if executor != nil {
		executor.Post(run)
	} else {
		go run()
	}
}
