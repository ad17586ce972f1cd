package model

import (
	"fmt"
	"slices"
)

const _MaxSteps = 10 // 保存的最大步数 (避免内存膨胀过大)

// Board 一局对局的全部棋子. 只由回合引擎的落子步骤修改
type Board struct {
	colors []Color
	tokens map[Color][]*Token
	steps  []*Step
}

// NewBoard 按座位顺序创建棋盘, 所有棋子都在基地
func NewBoard(colors ...Color) (*Board, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: empty board", ErrInvalidColor)
	}
	b := &Board{
		colors: make([]Color, 0, len(colors)),
		tokens: make(map[Color][]*Token, len(colors)),
	}
	for _, c := range colors {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidColor, c)
		}
		if _, dup := b.tokens[c]; dup {
			return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidColor, c)
		}
		b.colors = append(b.colors, c)
		for id := int32(0); id < TokensPerColor; id++ {
			b.tokens[c] = append(b.tokens[c], NewToken(id, c))
		}
	}
	return b, nil
}

func (b *Board) Colors() []Color {
	return slices.Clone(b.colors)
}

func (b *Board) HasColor(c Color) bool {
	_, ok := b.tokens[c]
	return ok
}

// Tokens 指定颜色的棋子, 按ID升序
func (b *Board) Tokens(c Color) []*Token {
	return b.tokens[c]
}

// Token ID越界返回nil
func (b *Board) Token(c Color, id int32) *Token {
	ts := b.tokens[c]
	if id < 0 || int(id) >= len(ts) {
		return nil
	}
	return ts[id]
}

func (b *Board) FinishedCount(c Color) int {
	n := 0
	for _, t := range b.tokens[c] {
		if t.IsFinished() {
			n++
		}
	}
	return n
}

// AllFinished 四枚棋子全部完成即获胜
func (b *Board) AllFinished(c Color) bool {
	ts := b.tokens[c]
	return len(ts) == TokensPerColor && b.FinishedCount(c) == len(ts)
}

// Steps 最近的落子记录
func (b *Board) Steps() []*Step {
	return b.steps
}

// CanMove 判断指定颜色棋子是否可以移动指定步数，返回能否移动及错误码
func (b *Board) CanMove(c Color, id, dice int32) (bool, int32) {
	if !b.HasColor(c) {
		return false, ErrCodeInvalidColor
	}
	t := b.Token(c, id)
	if t == nil {
		return false, ErrCodeInvalidToken
	}
	if ok, code, _ := calcNextPos(t.pos, dice); !ok {
		return false, code
	}
	return true, MoveOK
}

// Move 执行一次落子并结算击杀
func (b *Board) Move(c Color, id, dice int32) (*Step, error) {
	if ok, code := b.CanMove(c, id, dice); !ok {
		return nil, fmt.Errorf("move %s#%d by %d: %w", c, id, dice, CodeError(code))
	}
	t := b.Token(c, id)
	_, _, to := calcNextPos(t.pos, dice)

	from := t.pos
	if err := t.setPos(to); err != nil {
		return nil, err
	}
	step := &Step{ID: id, Color: c, Dice: dice, From: from, To: to}

	cell, onRing := t.Cell()
	if onRing && !IsSafe(cell) {
		for _, victim := range b.occupants(cell, c) {
			kFrom := victim.pos
			if err := victim.setPos(BasePos); err != nil {
				return nil, err
			}
			step.Captures = append(step.Captures, Capture{ID: victim.id, Color: victim.color, From: kFrom, Cell: cell})
		}
	}

	b.steps = append(b.steps, step)
	if len(b.steps) > _MaxSteps {
		copy(b.steps, b.steps[len(b.steps)-_MaxSteps:])
		b.steps = b.steps[:_MaxSteps]
	}
	return step, nil
}

// occupants 绝对格上除 exclude 以外颜色的棋子, 按座位顺序
func (b *Board) occupants(cell int32, exclude Color) []*Token {
	var out []*Token
	for _, c := range b.colors {
		if c == exclude {
			continue
		}
		for _, t := range b.tokens[c] {
			if at, ok := t.Cell(); ok && at == cell {
				out = append(out, t)
			}
		}
	}
	return out
}

// Snapshot 当前所有棋子位置的只读视图
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{Colors: b.Colors()}
	for _, c := range b.colors {
		for _, t := range b.tokens[c] {
			s.Tokens = append(s.Tokens, TokenView{ID: t.id, Color: t.color, Pos: t.pos})
		}
	}
	return s
}

// Restore 按快照摆放棋子(残局/测试), 不记录落子
func (b *Board) Restore(s Snapshot) error {
	for _, v := range s.Tokens {
		t := b.Token(v.Color, v.ID)
		if t == nil {
			return fmt.Errorf("%w: %s#%d", ErrInvalidToken, v.Color, v.ID)
		}
		if !ValidPos(v.Pos) {
			return fmt.Errorf("%w: %s#%d pos=%d", ErrInvalidPosition, v.Color, v.ID, v.Pos)
		}
	}
	for _, v := range s.Tokens {
		b.Token(v.Color, v.ID).pos = v.Pos
	}
	b.steps = nil
	return nil
}

// Clone 深拷贝棋盘
func (b *Board) Clone() *Board {
	c, _ := NewBoard(b.colors...)
	_ = c.Restore(b.Snapshot())
	for _, s := range b.steps {
		c.steps = append(c.steps, s.Clone())
	}
	return c
}

// LegalMoves 当前棋盘上指定颜色、指定点数的合法棋子ID(升序)
func (b *Board) LegalMoves(c Color, dice int32) []int32 {
	return LegalMoves(b.Snapshot(), c, dice)
}
