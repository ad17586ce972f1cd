package table

import (
	"context"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/samber/lo"

	"github.com/yola1107/lumina-ludo/library/log"
	"github.com/yola1107/lumina-ludo/library/xgo"
)

// Sink 事件接收方
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// push 补齐序号与时间后放入待发队列, 在锁内调用
func (t *Table) push(ev Event) {
	t.seq++
	ev.Seq = t.seq
	ev.MatchID = t.ID
	ev.Turn = t.turn
	ev.At = time.Now()
	t.outbox = append(t.outbox, ev)
}

// flush 在锁外投递待发事件, 任何失败只记日志.
// emitMu 保证并发 flush 时事件仍按 seq 递增送达; Sink 内不可回调本桌
func (t *Table) flush(ctx context.Context) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	events := t.outbox
	t.outbox = nil
	t.mu.Unlock()

	sink := t.repo.GetSink()
	if sink == nil {
		return
	}
	for _, ev := range events {
		if err := safeEmit(ctx, sink, ev); err != nil {
			log.Warnf("[sink] match=%s kind=%s emit failed: %v", t.ID, ev.Kind, err)
		}
	}
}

/*
	Sink 实现
*/

// LogSink 写进程日志
type LogSink struct{}

func (LogSink) Emit(_ context.Context, ev Event) error {
	log.Infow("match event",
		"match", ev.MatchID,
		"seq", ev.Seq,
		"kind", string(ev.Kind),
		"turn", ev.Turn,
		"color", ev.Color.String(),
		"dice", ev.Dice,
		"token", ev.TokenID,
	)
	return nil
}

// MultiSink 依次投递, 单个失败不影响其余
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, ev Event) error {
	var firstErr error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := safeEmit(ctx, s, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func safeEmit(ctx context.Context, s Sink, ev Event) (err error) {
	defer xgo.RecoverFromError(func(e any) {
		log.Errorf("[sink] %T panic: %v", s, e)
	})
	return s.Emit(ctx, ev)
}

// Recorder 内存记录, 便于测试和回放
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(_ context.Context, ev Event) error {
	var cp Event
	if err := copier.CopyWithOption(&cp, &ev, copier.Option{DeepCopy: true}); err != nil {
		return err
	}
	cp.At = ev.At
	r.mu.Lock()
	r.events = append(r.events, cp)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Kinds() []EventKind {
	return lo.Map(r.Events(), func(ev Event, _ int) EventKind { return ev.Kind })
}

// Filter 指定类型的事件
func (r *Recorder) Filter(kind EventKind) []Event {
	return lo.Filter(r.Events(), func(ev Event, _ int) bool { return ev.Kind == kind })
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
