package model

import "fmt"

// TokenState 棋子所处区域
type TokenState int32

const (
	TokenInBase TokenState = iota
	TokenOnRing
	TokenInHome
	TokenFinished
)

var tokenStateNames = map[TokenState]string{
	TokenInBase:   "base",
	TokenOnRing:   "ring",
	TokenInHome:   "home",
	TokenFinished: "finished",
}

func (s TokenState) String() string {
	return tokenStateNames[s]
}

// Token 一枚棋子. pos 是唯一的位置来源
type Token struct {
	id    int32
	color Color
	pos   int32
}

func NewToken(id int32, color Color) *Token {
	return &Token{id: id, color: color, pos: BasePos}
}

func (t *Token) Desc() string {
	return fmt.Sprintf("[%s#%d pos:%d %v]", t.color, t.id, t.pos, t.State())
}

func (t *Token) ID() int32        { return t.id }
func (t *Token) Color() Color     { return t.color }
func (t *Token) Pos() int32       { return t.pos }
func (t *Token) IsFinished() bool { return t.pos == FinishedPos }
func (t *Token) InBase() bool     { return t.pos == BasePos }

func (t *Token) State() TokenState {
	return stateOf(t.pos)
}

// Cell 公共环上的绝对格
func (t *Token) Cell() (int32, bool) {
	return AbsCell(t.color, t.pos)
}

// setPos 已完成的棋子不再移动
func (t *Token) setPos(pos int32) error {
	if t.pos == FinishedPos {
		return fmt.Errorf("%w: %s", ErrTokenFinished, t.Desc())
	}
	if !ValidPos(pos) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}
	t.pos = pos
	return nil
}

func stateOf(pos int32) TokenState {
	switch {
	case pos == FinishedPos:
		return TokenFinished
	case pos >= HomeStart && pos <= HomeEnd:
		return TokenInHome
	case pos >= EntryPos && pos < TotalCells:
		return TokenOnRing
	default:
		return TokenInBase
	}
}

// calcNextPos 计算移动后的位置, 返回是否可移动、错误码、目标位置
func calcNextPos(pos, dice int32) (bool, int32, int32) {
	if dice < 1 || dice > MaxDice {
		return false, ErrCodeInvalidDice, pos
	}
	switch {
	case pos == FinishedPos:
		return false, ErrCodeFinished, pos
	case pos == BasePos:
		if dice == MaxDice {
			return true, MoveOK, EntryPos
		}
		return false, ErrCodeNeedSix, pos
	case pos >= EntryPos && pos <= HomeEnd:
		dest := pos + dice
		if dest == FinishStep {
			return true, MoveOK, FinishedPos
		}
		if dest > FinishStep {
			return false, ErrCodeOvershoot, pos
		}
		return true, MoveOK, dest
	default:
		return false, ErrCodeInvalidPos, pos
	}
}
