package work

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/yola1107/lumina-ludo/library/log"
)

type asyncResult struct {
	data []byte
	err  error
}

// LoopStatus 协程池状态
type LoopStatus struct {
	Capacity int // 池最大容量
	Running  int // 运行中协程数
	Free     int // 空闲协程数
}

// ITaskLoop 协程池管理接口
type ITaskLoop interface {
	Start() error
	Stop()
	Status() LoopStatus
	Post(job func())
	PostCtx(ctx context.Context, job func())
	PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error)
}

type Option func(*antsLoop)

// WithFallback 自定义任务提交失败处理策略
func WithFallback(fallback func(ctx context.Context, fn func())) Option {
	return func(l *antsLoop) {
		l.fallback = fallback
	}
}

// WithPoolOptions 自定义ants池选项
func WithPoolOptions(opts ...ants.Option) Option {
	return func(l *antsLoop) {
		l.poolOptions = append(l.poolOptions, opts...)
	}
}

type antsLoop struct {
	mu          sync.RWMutex
	pool        *ants.Pool
	size        int
	fallback    func(context.Context, func())
	poolOptions []ants.Option
}

// NewAntsLoop 创建协程池实例
func NewAntsLoop(size int, opts ...Option) ITaskLoop {
	l := &antsLoop{
		size: size,
		fallback: func(ctx context.Context, fn func()) {
			go safeRun(ctx, fn)
		},
		poolOptions: []ants.Option{
			ants.WithExpiryDuration(60 * time.Second), // 每60s清理一次闲置 worker
			ants.WithNonblocking(true),                // 池满时立即走 fallback, 提交方不阻塞
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *antsLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		log.Warnf("antsLoop already started.")
		return nil
	}

	pool, err := ants.NewPool(l.size, l.poolOptions...)
	if err != nil {
		return fmt.Errorf("pool init failed: %w", err)
	}

	l.pool = pool
	log.Infof("antsLoop start... [size:%d]", l.size)
	return nil
}

func (l *antsLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pool != nil {
		p := l.pool
		l.pool = nil
		p.Release()
		log.Infof("antsLoop stopping [running:%d]", p.Running())
	}
}

func (l *antsLoop) Status() LoopStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.pool == nil {
		return LoopStatus{}
	}
	capacity, running := l.pool.Cap(), l.pool.Running()
	return LoopStatus{
		Capacity: capacity,
		Running:  running,
		Free:     max(capacity-running, 0),
	}
}

func (l *antsLoop) Post(job func()) {
	l.PostCtx(context.Background(), job)
}

func (l *antsLoop) PostCtx(ctx context.Context, job func()) {
	if ctx.Err() == nil {
		l.submit(ctx, job)
	}
}

// PostAndWaitCtx 提交任务并等待结果; ctx 结束时立即返回, 不等待任务本身退出
func (l *antsLoop) PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error) {
	ch := make(chan *asyncResult, 1)

	l.submit(ctx, func() {
		defer RecoverFromError(func(e any) {
			select {
			case ch <- &asyncResult{nil, fmt.Errorf("panic: %v", e)}:
			default:
			}
		})
		data, err := job()
		select {
		case ch <- &asyncResult{data, err}:
		case <-ctx.Done():
		}
	})

	select {
	case res := <-ch:
		return res.data, res.err
	case <-ctx.Done():
		select {
		case res := <-ch:
			return res.data, res.err
		default:
			return nil, fmt.Errorf("canceled: %w", ctx.Err())
		}
	}
}

func (l *antsLoop) submit(ctx context.Context, fn func()) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.pool == nil || l.pool.IsClosed() {
		l.triggerFallback(ctx, fn, "loop not started or loop is closed.")
		return
	}

	if err := l.pool.Submit(func() { safeRun(ctx, fn) }); err != nil {
		l.triggerFallback(ctx, fn, err.Error())
	}
}

func (l *antsLoop) triggerFallback(ctx context.Context, fn func(), reason string) {
	log.Warnf("antsLoop fallback. reason=%s", reason)
	l.fallback(ctx, fn)
}

func safeRun(ctx context.Context, fn func()) {
	defer RecoverFromError(nil)
	if ctx.Err() == nil {
		fn()
	}
}
