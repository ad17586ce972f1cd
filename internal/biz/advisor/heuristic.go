package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/yola1107/lumina-ludo/library/log"
)

const defaultAdviceTimeout = 3 * time.Second

// AdviceRepo 远程选子服务, 返回 {"tokenId":n,"commentary":"..."}
type AdviceRepo interface {
	Advise(ctx context.Context, req *Request) ([]byte, error)
}

// Executor 远程调用所在的协程池
type Executor interface {
	PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error)
}

type advice struct {
	TokenID    *int32 `json:"tokenId"`
	Commentary string `json:"commentary"`
}

type HeuristicOption func(*Heuristic)

func WithTimeout(d time.Duration) HeuristicOption {
	return func(h *Heuristic) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func WithExecutor(exec Executor) HeuristicOption {
	return func(h *Heuristic) { h.exec = exec }
}

// Heuristic 先问远程顾问, 失败/超时/越界一律退回本地启发式, 从不返回错误
type Heuristic struct {
	repo    AdviceRepo
	exec    Executor
	timeout time.Duration
	local   Local
}

// NewHeuristic repo 为 nil 时只使用本地启发式
func NewHeuristic(repo AdviceRepo, opts ...HeuristicOption) *Heuristic {
	h := &Heuristic{repo: repo, timeout: defaultAdviceTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heuristic) ChooseToken(ctx context.Context, req *Request) Choice {
	if h.repo == nil || len(req.Legal) == 0 {
		return h.local.ChooseToken(ctx, req)
	}

	cctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	raw, err := h.call(cctx, req)
	if err != nil {
		return h.fallback(ctx, req, err)
	}

	var adv advice
	if err = json.Unmarshal(raw, &adv); err != nil {
		return h.fallback(ctx, req, fmt.Errorf("malformed advice: %w", err))
	}
	if adv.TokenID == nil {
		return h.fallback(ctx, req, errors.New("advice without tokenId"))
	}
	if !lo.Contains(req.Legal, *adv.TokenID) {
		return h.fallback(ctx, req, fmt.Errorf("advice id=%d not in %v", *adv.TokenID, req.Legal))
	}
	return Choice{TokenID: *adv.TokenID, Commentary: adv.Commentary}
}

// call 远程调用必须在 ctx 结束时返回, 即使 repo 自身不理会 ctx
func (h *Heuristic) call(ctx context.Context, req *Request) ([]byte, error) {
	job := func() ([]byte, error) { return h.repo.Advise(ctx, req) }
	if h.exec != nil {
		return h.exec.PostAndWaitCtx(ctx, job)
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if e := recover(); e != nil {
				ch <- result{err: fmt.Errorf("panic: %v", e)}
			}
		}()
		data, err := job()
		ch <- result{data, err}
	}()
	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Heuristic) fallback(ctx context.Context, req *Request, reason error) Choice {
	log.Warnf("[advisor] match=%s %s fallback to local heuristic: %v", req.MatchID, req.Color, reason)
	c := h.local.ChooseToken(ctx, req)
	c.Commentary = FallbackCommentary
	c.Fallback = true
	return c
}
