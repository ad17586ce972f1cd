package advisor

import (
	"context"
	"errors"

	"github.com/yola1107/lumina-ludo/internal/model"
)

// FallbackCommentary 远程顾问不可用时的台词
const FallbackCommentary = "Let's go! 🎲"

var (
	ErrInvalidSelection = errors.New("selection not in legal set")
	ErrNotAwaiting      = errors.New("advisor is not awaiting a selection")
	ErrAlreadySubmitted = errors.New("selection already submitted")
)

// Request 选子请求. Snapshot 为只读副本
type Request struct {
	MatchID  string         `json:"matchId"`
	Color    model.Color    `json:"color"`
	Name     string         `json:"name"`
	Dice     int32          `json:"dice"`
	Legal    []int32        `json:"legal"`
	Snapshot model.Snapshot `json:"snapshot"`
}

// Choice 选子结果. Fallback 表示顾问内部已降级到本地策略
type Choice struct {
	TokenID    int32
	Commentary string
	Fallback   bool
}

// Advisor 为当前玩家在合法棋子中选出一枚
type Advisor interface {
	ChooseToken(ctx context.Context, req *Request) Choice
}

// Local 本地启发式, 同时作为远程顾问的兜底
type Local struct{}

func (Local) ChooseToken(_ context.Context, req *Request) Choice {
	return Choice{TokenID: model.BestMove(req.Snapshot, req.Color, req.Dice, req.Legal)}
}
