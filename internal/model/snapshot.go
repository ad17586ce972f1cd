package model

import (
	"github.com/jinzhu/copier"
	"github.com/samber/lo"
)

// TokenView 棋子的只读视图
type TokenView struct {
	ID    int32 `json:"id"`
	Color Color `json:"color"`
	Pos   int32 `json:"pos"`
}

func (v TokenView) Cell() (int32, bool) {
	return AbsCell(v.Color, v.Pos)
}

// Snapshot 全部棋子位置, 按座位顺序和棋子ID排列
type Snapshot struct {
	Colors []Color     `json:"colors"`
	Tokens []TokenView `json:"tokens"`
}

// Of 指定颜色的棋子
func (s Snapshot) Of(c Color) []TokenView {
	return lo.Filter(s.Tokens, func(v TokenView, _ int) bool { return v.Color == c })
}

func (s Snapshot) Find(c Color, id int32) (TokenView, bool) {
	return lo.Find(s.Tokens, func(v TokenView) bool { return v.Color == c && v.ID == id })
}

// Clone 深拷贝, 交给外部协作者时使用
func (s Snapshot) Clone() Snapshot {
	var cp Snapshot
	if err := copier.CopyWithOption(&cp, &s, copier.Option{DeepCopy: true}); err != nil {
		cp = Snapshot{
			Colors: append([]Color(nil), s.Colors...),
			Tokens: append([]TokenView(nil), s.Tokens...),
		}
	}
	return cp
}
