package xgo

import (
	"runtime/debug"

	"github.com/yola1107/lumina-ludo/library/log"
)

// RecoverFromError 捕获 panic 并记录堆栈, cb 可选
func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}
