package model

import "github.com/samber/lo"

// LegalMoves 计算合法棋子ID(升序). 纯函数, 相同输入总是相同输出
//   - 已完成的棋子不可走
//   - 基地棋子只有掷出 6 才可走
//   - 其余棋子目标位置不能超过 57, 恰好 57 即完成
func LegalMoves(s Snapshot, c Color, dice int32) []int32 {
	legal := lo.Filter(s.Of(c), func(v TokenView, _ int) bool {
		ok, _, _ := calcNextPos(v.Pos, dice)
		return ok
	})
	return lo.Map(legal, func(v TokenView, _ int) int32 { return v.ID })
}

// Destination 合法时返回目标位置
func Destination(pos, dice int32) (int32, bool) {
	ok, _, to := calcNextPos(pos, dice)
	return to, ok
}

// WouldCapture 模拟落子, 返回会被送回基地的棋子
func WouldCapture(s Snapshot, c Color, id, dice int32) []TokenView {
	me, ok := s.Find(c, id)
	if !ok {
		return nil
	}
	to, ok := Destination(me.Pos, dice)
	if !ok {
		return nil
	}
	cell, onRing := AbsCell(c, to)
	if !onRing || IsSafe(cell) {
		return nil
	}
	return lo.Filter(s.Tokens, func(v TokenView, _ int) bool {
		if v.Color == c {
			return false
		}
		at, ok := v.Cell()
		return ok && at == cell
	})
}
