package advisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yola1107/lumina-ludo/internal/model"
	"github.com/yola1107/lumina-ludo/library/work"
)

type repoFunc func(ctx context.Context, req *Request) ([]byte, error)

func (f repoFunc) Advise(ctx context.Context, req *Request) ([]byte, error) { return f(ctx, req) }

// 红方 0 在 30, 1 在 40, 其余在基地; 掷 2 时合法集合为 {0,1}, 本地策略选 1
func twoLegalRequest(t *testing.T) *Request {
	t.Helper()
	b, err := model.NewBoard(model.Colors...)
	require.NoError(t, err)
	require.NoError(t, b.Restore(model.Snapshot{Tokens: []model.TokenView{
		{ID: 0, Color: model.Red, Pos: 30},
		{ID: 1, Color: model.Red, Pos: 40},
	}}))
	legal := b.LegalMoves(model.Red, 2)
	require.Equal(t, []int32{0, 1}, legal)
	return &Request{MatchID: "m1", Color: model.Red, Dice: 2, Legal: legal, Snapshot: b.Snapshot()}
}

func TestLocal(t *testing.T) {
	req := twoLegalRequest(t)
	c := Local{}.ChooseToken(context.Background(), req)
	assert.Equal(t, Choice{TokenID: 1}, c)
}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		repo     repoFunc
		want     Choice
		timeout  time.Duration
		maxSpent time.Duration
	}{
		{
			name: "remote choice accepted",
			repo: func(context.Context, *Request) ([]byte, error) {
				return []byte(`{"tokenId":0,"commentary":"Slow and steady."}`), nil
			},
			want: Choice{TokenID: 0, Commentary: "Slow and steady."},
		},
		{
			// Scenario E
			name: "out of set id falls back",
			repo: func(context.Context, *Request) ([]byte, error) {
				return []byte(`{"tokenId":3,"commentary":"trust me"}`), nil
			},
			want: Choice{TokenID: 1, Commentary: FallbackCommentary, Fallback: true},
		},
		{
			name: "remote error falls back",
			repo: func(context.Context, *Request) ([]byte, error) {
				return nil, errors.New("503")
			},
			want: Choice{TokenID: 1, Commentary: FallbackCommentary, Fallback: true},
		},
		{
			name: "malformed falls back",
			repo: func(context.Context, *Request) ([]byte, error) {
				return []byte(`I would move token zero`), nil
			},
			want: Choice{TokenID: 1, Commentary: FallbackCommentary, Fallback: true},
		},
		{
			name: "missing id falls back",
			repo: func(context.Context, *Request) ([]byte, error) {
				return []byte(`{"commentary":"hmm"}`), nil
			},
			want: Choice{TokenID: 1, Commentary: FallbackCommentary, Fallback: true},
		},
		{
			name: "panic falls back",
			repo: func(context.Context, *Request) ([]byte, error) {
				panic("boom")
			},
			want: Choice{TokenID: 1, Commentary: FallbackCommentary, Fallback: true},
		},
		{
			name: "slow remote ignoring ctx is bounded",
			repo: func(context.Context, *Request) ([]byte, error) {
				time.Sleep(time.Second)
				return []byte(`{"tokenId":0}`), nil
			},
			timeout:  20 * time.Millisecond,
			maxSpent: 500 * time.Millisecond,
			want:     Choice{TokenID: 1, Commentary: FallbackCommentary, Fallback: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeuristic(tt.repo, WithTimeout(tt.timeout))
			start := time.Now()
			got := h.ChooseToken(context.Background(), twoLegalRequest(t))
			assert.Equal(t, tt.want, got)
			if tt.maxSpent > 0 {
				assert.Less(t, time.Since(start), tt.maxSpent)
			}
		})
	}
}

func TestHeuristicWithoutRepo(t *testing.T) {
	h := NewHeuristic(nil)
	assert.Equal(t, Choice{TokenID: 1}, h.ChooseToken(context.Background(), twoLegalRequest(t)))
}

type countingExec struct{ n atomic.Int32 }

func (e *countingExec) PostAndWaitCtx(ctx context.Context, job func() ([]byte, error)) ([]byte, error) {
	e.n.Add(1)
	return job()
}

func TestHeuristicUsesExecutor(t *testing.T) {
	exec := &countingExec{}
	h := NewHeuristic(repoFunc(func(context.Context, *Request) ([]byte, error) {
		return []byte(`{"tokenId":1}`), nil
	}), WithExecutor(exec))
	assert.Equal(t, int32(1), h.ChooseToken(context.Background(), twoLegalRequest(t)).TokenID)
	assert.Equal(t, int32(1), exec.n.Load())
}

func TestHuman(t *testing.T) {
	prompted := make(chan []int32, 1)
	h := NewHuman(WithPrompt(func(req *Request) { prompted <- req.Legal }))

	assert.ErrorIs(t, h.Submit(0), ErrNotAwaiting)

	req := twoLegalRequest(t)
	done := make(chan Choice, 1)
	go func() { done <- h.ChooseToken(context.Background(), req) }()

	assert.Equal(t, []int32{0, 1}, <-prompted)
	legal, waiting := h.Pending()
	assert.True(t, waiting)
	assert.Equal(t, []int32{0, 1}, legal)

	assert.ErrorIs(t, h.Submit(3), ErrInvalidSelection)
	select {
	case <-done:
		t.Fatal("rejected selection must not resolve the choice")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, h.Submit(0))
	select {
	case c := <-done:
		assert.Equal(t, Choice{TokenID: 0}, c)
	case <-time.After(time.Second):
		t.Fatal("choice not resolved")
	}
	_, waiting = h.Pending()
	assert.False(t, waiting)
}

func TestHumanCancel(t *testing.T) {
	h := NewHuman()
	req := twoLegalRequest(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Choice, 1)
	go func() { done <- h.ChooseToken(ctx, req) }()

	assert.Eventually(t, func() bool {
		_, waiting := h.Pending()
		return waiting
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case c := <-done:
		assert.Equal(t, int32(-1), c.TokenID)
	case <-time.After(time.Second):
		t.Fatal("cancel did not release human advisor")
	}
}

func TestHeuristicTimeoutWithBusyExecutor(t *testing.T) {
	loop := work.NewAntsLoop(1)
	require.NoError(t, loop.Start())
	defer loop.Stop()

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	loop.Post(func() {
		close(started)
		<-release
	})
	<-started

	h := NewHeuristic(repoFunc(func(ctx context.Context, _ *Request) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithTimeout(50*time.Millisecond), WithExecutor(loop))

	start := time.Now()
	c := h.ChooseToken(context.Background(), twoLegalRequest(t))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.True(t, c.Fallback)
	assert.Equal(t, int32(1), c.TokenID)
}
