package advisor

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Human 等待外部提交的棋子ID. 没有超时, 只响应 ctx 取消
type Human struct {
	mu      sync.Mutex
	legal   []int32
	waiting bool
	ch      chan int32
	prompt  func(req *Request)
}

type HumanOption func(*Human)

// WithPrompt 进入等待时回调, 用于提示输入
func WithPrompt(fn func(req *Request)) HumanOption {
	return func(h *Human) { h.prompt = fn }
}

func NewHuman(opts ...HumanOption) *Human {
	h := &Human{ch: make(chan int32, 1)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Human) ChooseToken(ctx context.Context, req *Request) Choice {
	h.mu.Lock()
	h.legal = slices.Clone(req.Legal)
	h.waiting = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.waiting = false
		h.legal = nil
		select {
		case <-h.ch:
		default:
		}
		h.mu.Unlock()
	}()

	if h.prompt != nil {
		h.prompt(req)
	}

	select {
	case id := <-h.ch:
		return Choice{TokenID: id}
	case <-ctx.Done():
		return Choice{TokenID: -1}
	}
}

// Submit 提交选择. 不在合法集合内的ID被拒绝, 调用方需重新提交
func (h *Human) Submit(tokenID int32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.waiting {
		return ErrNotAwaiting
	}
	if !slices.Contains(h.legal, tokenID) {
		return fmt.Errorf("%w: id=%d legal=%v", ErrInvalidSelection, tokenID, h.legal)
	}
	select {
	case h.ch <- tokenID:
		return nil
	default:
		return ErrAlreadySubmitted
	}
}

// Pending 当前等待中的合法集合
func (h *Human) Pending() ([]int32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.legal), h.waiting
}
