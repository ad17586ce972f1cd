package table

import (
	"github.com/yola1107/lumina-ludo/internal/model"
	"github.com/yola1107/lumina-ludo/library/xgo"
)

// Dice 骰子随机源, 返回 [1,6]
type Dice interface {
	Roll() int32
}

type randDice struct{}

func NewRandDice() Dice { return randDice{} }

func (randDice) Roll() int32 {
	return xgo.RandIntInclusive[int32](1, model.MaxDice)
}
