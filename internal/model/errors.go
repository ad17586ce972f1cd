package model

import (
	"errors"
	"fmt"
)

const (
	MoveOK             int32 = iota // 移动合法
	ErrCodeInvalidToken             // 棋子不存在
	ErrCodeInvalidColor             // 颜色不在棋盘上
	ErrCodeInvalidDice              // 骰子点数不在 [1,6]
	ErrCodeFinished                 // 棋子已完成
	ErrCodeNeedSix                  // 基地棋子只能掷 6 出发
	ErrCodeOvershoot                // 超出终点
	ErrCodeInvalidPos               // 位置越界
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidDice     = errors.New("invalid dice value")
	ErrTokenFinished   = errors.New("token already finished")
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidPosition = errors.New("invalid position")
)

var codeErrors = map[int32]error{
	ErrCodeInvalidToken: ErrInvalidToken,
	ErrCodeInvalidColor: ErrInvalidColor,
	ErrCodeInvalidDice:  ErrInvalidDice,
	ErrCodeFinished:     ErrTokenFinished,
	ErrCodeInvalidPos:   ErrInvalidPosition,
}

// CodeError 把移动错误码转成 error, MoveOK 返回 nil
func CodeError(code int32) error {
	if code == MoveOK {
		return nil
	}
	if err, ok := codeErrors[code]; ok {
		return err
	}
	return fmt.Errorf("%w: code=%d", ErrIllegalMove, code)
}
