package model

import (
	"fmt"
	"slices"
)

// Color 棋子颜色, 同时也是座位顺序
type Color int32

const (
	Red Color = iota
	Green
	Yellow
	Blue
)

var colorNames = map[Color]string{
	Red:    "RED",
	Green:  "GREEN",
	Yellow: "YELLOW",
	Blue:   "BLUE",
}

// Colors 按入座顺序排列的全部颜色
var Colors = []Color{Red, Green, Yellow, Blue}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Color(%d)", int32(c))
}

func (c Color) Valid() bool {
	return c >= Red && c <= Blue
}

const (
	TotalCells     int32 = 52  // 公共环形路径长度
	HomeStretchLen int32 = 5   // 每种颜色私有的 Home 路径长度
	TokensPerColor       = 4   // 每种颜色的棋子数
	MaxDice        int32 = 6   // 骰子最大点数
	BasePos        int32 = -1  // 基地
	EntryPos       int32 = 0   // 出基地后的第一格(相对位置)
	HomeStart      int32 = 52  // Home 路径起点(相对位置)
	HomeEnd        int32 = 56  // Home 路径终点(相对位置)
	FinishStep     int32 = 57  // 恰好走到此处即完成
	FinishedPos    int32 = 100 // 已完成
)

var (
	startOffsets = [...]int32{Red: 0, Green: 13, Yellow: 26, Blue: 39}
	safeCells    = map[int32]struct{}{ // 八个安全点（不可被击杀）
		0: {}, 8: {}, 13: {}, 21: {}, 26: {}, 34: {}, 39: {}, 47: {},
	}
)

// StartOffset 颜色在公共环上的起点
func StartOffset(c Color) int32 {
	if !c.Valid() {
		return 0
	}
	return startOffsets[c]
}

// SafeCells 返回升序的安全点列表(副本)
func SafeCells() []int32 {
	cells := make([]int32, 0, len(safeCells))
	for cell := range safeCells {
		cells = append(cells, cell)
	}
	slices.Sort(cells)
	return cells
}

func IsSafe(cell int32) bool {
	_, ok := safeCells[cell]
	return ok
}

// AbsCell 相对位置换算为公共环上的绝对格. 基地、Home 路径、已完成返回 false
func AbsCell(c Color, rel int32) (int32, bool) {
	if !c.Valid() || rel < 0 || rel >= TotalCells {
		return 0, false
	}
	return (rel + startOffsets[c]) % TotalCells, true
}

// ValidPos 位置必须落在 {-1} ∪ [0,56] ∪ {100}
func ValidPos(pos int32) bool {
	return pos == BasePos || pos == FinishedPos || (pos >= EntryPos && pos <= HomeEnd)
}
