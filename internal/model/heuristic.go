package model

import "github.com/samber/lo"

// 本地启发式优先级
const (
	rankAdvance int = iota + 1 // 走得最远的棋子
	rankLeaveBase              // 掷 6 出基地
	rankFinish                 // 到达终点
	rankCapture                // 击杀
)

type candidate struct {
	id   int32
	rank int
	pos  int32
}

// BestMove 本地启发式选子: 击杀 > 到达终点 > 出基地 > 最远; 同级取最小ID.
// legal 为空返回 -1
func BestMove(s Snapshot, c Color, dice int32, legal []int32) int32 {
	cands := lo.FilterMap(legal, func(id int32, _ int) (candidate, bool) {
		v, ok := s.Find(c, id)
		if !ok {
			return candidate{}, false
		}
		to, ok := Destination(v.Pos, dice)
		if !ok {
			return candidate{}, false
		}
		cand := candidate{id: id, rank: rankAdvance, pos: v.Pos}
		switch {
		case len(WouldCapture(s, c, id, dice)) > 0:
			cand.rank = rankCapture
		case to == FinishedPos:
			cand.rank = rankFinish
		case v.Pos == BasePos:
			cand.rank = rankLeaveBase
		}
		return cand, true
	})
	if len(cands) == 0 {
		return -1
	}
	best := lo.MaxBy(cands, func(a, b candidate) bool {
		if a.rank != b.rank {
			return a.rank > b.rank
		}
		if a.rank == rankAdvance && a.pos != b.pos {
			return a.pos > b.pos
		}
		return a.id < b.id
	})
	return best.id
}
