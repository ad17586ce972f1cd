package table

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yola1107/lumina-ludo/internal/biz/advisor"
	"github.com/yola1107/lumina-ludo/internal/model"
)

var (
	ErrMatchOver            = errors.New("match is over")
	ErrNotAwaitingRoll      = errors.New("not awaiting roll")
	ErrNotAwaitingSelection = errors.New("not awaiting selection")
	ErrInvalidSelection     = advisor.ErrInvalidSelection
	ErrNotHumanTurn         = errors.New("active player is not human")
	ErrInvariant            = errors.New("invariant violation")
	ErrInvalidSeats         = errors.New("invalid seats")
)

/*

	StageID 回合阶段
*/

type StageID int32

const (
	StAwaitingRoll      StageID = iota // 等待掷骰
	StRolledNoMoves                    // 无棋可走
	StAwaitingSelection                // 等待选子
	StApplying                         // 落子结算
	StExtraTurn                        // 奖励回合
	StNextTurn                         // 轮转下家
	StMatchOver                        // 对局结束(终态)
)

// StageNames maps each stage to its string name.
var StageNames = map[StageID]string{
	StAwaitingRoll:      "AWAITING_ROLL",
	StRolledNoMoves:     "ROLLED_NO_MOVES",
	StAwaitingSelection: "AWAITING_SELECTION",
	StApplying:          "APPLYING",
	StExtraTurn:         "EXTRA_TURN",
	StNextTurn:          "NEXT_TURN",
	StMatchOver:         "MATCH_OVER",
}

// String returns the string representation of the StageID.
func (s StageID) String() string {
	if name, ok := StageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StageID(%d)", s)
}

/*
Stage 阶段状态封装
*/

type Stage struct {
	mu      sync.RWMutex
	State   StageID
	Prev    StageID
	StartAt time.Time
}

func (s *Stage) GetState() StageID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State
}

func (s *Stage) Snap() (StageID, StageID, time.Time) {
	s.mu.RLock()
	prev, state, at := s.Prev, s.State, s.StartAt
	s.mu.RUnlock()
	return prev, state, at
}

func (s *Stage) Desc() string {
	prev, state, _ := s.Snap()
	return fmt.Sprintf("[%v->%v]", prev, state)
}

func (s *Stage) Set(state StageID) {
	s.mu.Lock() // 写锁
	defer s.mu.Unlock()
	s.Prev = s.State
	s.State = state
	s.StartAt = time.Now()
}

/*

	EventKind 对外通知类型
*/

type EventKind string

const (
	EvTurnStart       EventKind = "turn_start"
	EvRollResult      EventKind = "roll_result"
	EvNoLegalMove     EventKind = "no_legal_move"
	EvTokenMoved      EventKind = "token_moved"
	EvCapture         EventKind = "capture"
	EvExtraTurn       EventKind = "extra_turn"
	EvTurnAdvanced    EventKind = "turn_advanced"
	EvMatchWon        EventKind = "match_won"
	EvAdvisorComment  EventKind = "advisor_comment"
	EvAdvisorFallback EventKind = "advisor_fallback"
)

// 兜底原因
const (
	ReasonOutOfSet = "out_of_set"       // 顾问返回的ID不在合法集合内, 引擎替换
	ReasonDegraded = "advisor_degraded" // 顾问内部已降级为本地策略
)

// Event 观察用通知, 投递失败不影响对局
type Event struct {
	Seq        int64           `json:"seq"`
	MatchID    string          `json:"matchId"`
	Kind       EventKind       `json:"kind"`
	Turn       int32           `json:"turn"`
	Color      model.Color     `json:"color"`
	Player     string          `json:"player,omitempty"`
	Dice       int32           `json:"dice,omitempty"`
	Legal      []int32         `json:"legal,omitempty"`
	TokenID    int32           `json:"tokenId"`
	From       int32           `json:"from"`
	To         int32           `json:"to"`
	Victims    []model.Capture `json:"victims,omitempty"`
	Next       model.Color     `json:"next"`
	Requested  int32           `json:"requested,omitempty"` // 顾问原始选择
	Commentary string          `json:"commentary,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	At         time.Time       `json:"at"`
}

// Result 一局的结果
type Result struct {
	MatchID  string
	RoomCode string
	Winner   string
	Color    model.Color
	Turns    int32
	Err      error
}
